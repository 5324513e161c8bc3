package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBudget(t *testing.T) {
	check := CheckBudget(120.0, 150.0)
	assert.False(t, check.OverBudget)
	assert.Equal(t, 0.0, check.OverBy)
	assert.Equal(t, 150.0, check.WeeklyLimit)

	check = CheckBudget(163.456, 150.0)
	assert.True(t, check.OverBudget)
	assert.Equal(t, 13.46, check.OverBy)
	assert.Equal(t, 163.46, check.Total)
}

func TestCheckBudgetExactlyAtLimit(t *testing.T) {
	check := CheckBudget(150.0, 150.0)
	assert.False(t, check.OverBudget)
	assert.Equal(t, 0.0, check.OverBy)
}

func TestCheckBudgetDefaultLimit(t *testing.T) {
	check := CheckBudget(151.0, 0)
	assert.Equal(t, DefaultWeeklyLimit, check.WeeklyLimit)
	assert.True(t, check.OverBudget)
	assert.Equal(t, 1.0, check.OverBy)
}
