package optimizer

import "github.com/despensa/planner-service/internal/money"

// DefaultWeeklyLimit is the weekly spending cap assumed when the household
// preferences configure none.
const DefaultWeeklyLimit = 150.0

// BudgetCheck compares an order total against the weekly limit.
type BudgetCheck struct {
	Total       float64 `json:"total"`
	WeeklyLimit float64 `json:"weekly_limit"`
	OverBudget  bool    `json:"over_budget"`
	OverBy      float64 `json:"over_by"`
}

// CheckBudget evaluates the total against the weekly limit, defaulting the
// limit when unset.
func CheckBudget(total, weeklyLimit float64) BudgetCheck {
	if weeklyLimit <= 0 {
		weeklyLimit = DefaultWeeklyLimit
	}
	overBy := total - weeklyLimit
	if overBy < 0 {
		overBy = 0
	}
	return BudgetCheck{
		Total:       money.Round2(total),
		WeeklyLimit: weeklyLimit,
		OverBudget:  total > weeklyLimit,
		OverBy:      money.Round2(overBy),
	}
}
