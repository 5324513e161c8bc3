package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/despensa/planner-service/internal/importer"
	"github.com/despensa/planner-service/internal/money"
	"github.com/despensa/planner-service/internal/pricecache"
)

var (
	cacheUpdatePrice float64
	cacheUpdatePromo float64
	cacheSearchLimit int
	cacheMarket      string
	cacheImportSheet string
)

// cacheCmd groups the price cache subcommands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and update the supermarket price cache",
}

var cacheUpdateCmd = &cobra.Command{
	Use:   "update <market> <product>",
	Short: "Record an observed price",
	Example: `  planner cache update continente "leite meio gordo" --price 1.29
  planner cache update pingodoce "azeite virgem" --price 4.99 --promo 4.49`,
	Args: cobra.ExactArgs(2),
	RunE: runCacheUpdate,
}

var cacheSearchCmd = &cobra.Command{
	Use:     "search <query>",
	Short:   "Search cached products by name",
	Example: `  planner cache search azeite --market continente --limit 10`,
	Args:    cobra.ExactArgs(1),
	RunE:    runCacheSearch,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-market cache counts and freshness",
	RunE:  runCacheStats,
}

var cacheExpiredCmd = &cobra.Command{
	Use:   "expired",
	Short: "List cache entries past their TTL",
	RunE:  runCacheExpired,
}

var cacheGetCmd = &cobra.Command{
	Use:     "get <market> <product>",
	Short:   "Show the cached entry for an exact product key",
	Example: `  planner cache get continente "leite meio gordo"`,
	Args:    cobra.ExactArgs(2),
	RunE:    runCacheGet,
}

var cacheParsePriceCmd = &cobra.Command{
	Use:     "parse-price <text>",
	Short:   "Parse a Portuguese price string",
	Example: `  planner cache parse-price "1.299,00 €"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runCacheParsePrice,
}

var cacheImportCmd = &cobra.Command{
	Use:     "import <market> <file.xlsx>",
	Short:   "Import a price list spreadsheet into the cache",
	Example: `  planner cache import continente precos.xlsx --sheet Folha1`,
	Args:    cobra.ExactArgs(2),
	RunE:    runCacheImport,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheUpdateCmd, cacheGetCmd, cacheSearchCmd, cacheStatsCmd,
		cacheExpiredCmd, cacheImportCmd, cacheParsePriceCmd)

	cacheUpdateCmd.Flags().Float64Var(&cacheUpdatePrice, "price", 0, "Observed price in EUR")
	cacheUpdateCmd.Flags().Float64Var(&cacheUpdatePromo, "promo", 0, "Promotional effective price in EUR")
	cacheUpdateCmd.MarkFlagRequired("price")

	cacheSearchCmd.Flags().IntVar(&cacheSearchLimit, "limit", 0, "Maximum number of results")
	cacheSearchCmd.Flags().StringVar(&cacheMarket, "market", "", "Restrict to one market")
	cacheExpiredCmd.Flags().StringVar(&cacheMarket, "market", "", "Restrict to one market")
	cacheImportCmd.Flags().StringVar(&cacheImportSheet, "sheet", "", "Sheet to read (default: first sheet)")
}

func withCache(cmd *cobra.Command, fn func(cache *pricecache.Cache) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	cache, closeCache, err := openCache(cmd.Context(), store)
	if err != nil {
		return err
	}
	defer closeCache()
	return fn(cache)
}

func runCacheUpdate(cmd *cobra.Command, args []string) error {
	market, product := args[0], args[1]

	return withCache(cmd, func(cache *pricecache.Cache) error {
		entry := pricecache.Entry{Name: product, Price: cacheUpdatePrice}
		if cacheUpdatePromo > 0 {
			entry.PromoEffectivePrice = &cacheUpdatePromo
		}
		if err := cache.Update(cmd.Context(), market, product, entry); err != nil {
			return err
		}
		fmt.Printf("recorded %s @ %.2f EUR in %s\n", product, entry.EffectivePrice(), market)
		return nil
	})
}

func runCacheGet(cmd *cobra.Command, args []string) error {
	market, product := args[0], args[1]

	return withCache(cmd, func(cache *pricecache.Cache) error {
		entry, found, valid := cache.Get(market, product)
		if !found {
			return fmt.Errorf("no cached entry for %q in %s", product, market)
		}
		return outputJSON(map[string]any{
			"market": market,
			"key":    pricecache.NormalizeKey(product),
			"entry":  entry,
			"valid":  valid,
		})
	})
}

func runCacheParsePrice(cmd *cobra.Command, args []string) error {
	value, ok := money.ParseEUR(args[0])
	if !ok {
		return fmt.Errorf("no parsable amount in %q", args[0])
	}
	fmt.Printf("%.2f\n", value)
	return nil
}

func runCacheSearch(cmd *cobra.Command, args []string) error {
	return withCache(cmd, func(cache *pricecache.Cache) error {
		results := cache.Search(args[0], cacheMarket, cacheSearchLimit)
		if len(results) == 0 {
			fmt.Println("no matches")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MARKET\tPRODUCT\tPRICE\tPROMO\tSCORE")
		for _, r := range results {
			promo := "-"
			if r.Entry.PromoEffectivePrice != nil {
				promo = fmt.Sprintf("%.2f", *r.Entry.PromoEffectivePrice)
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%.2f\n", r.Market, r.Key, r.Entry.Price, promo, r.Score)
		}
		return w.Flush()
	})
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	return withCache(cmd, func(cache *pricecache.Cache) error {
		stats := cache.Stats()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MARKET\tTOTAL\tVALID\tEXPIRED")
		for market, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", market, s.Total, s.Valid, s.Expired)
		}
		return w.Flush()
	})
}

func runCacheImport(cmd *cobra.Command, args []string) error {
	market, path := args[0], args[1]

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	return withCache(cmd, func(cache *pricecache.Cache) error {
		result, err := importer.ImportXLSX(cmd.Context(), cache, market, content, cacheImportSheet)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d entries into %s\n", result.Total, market)
		for _, e := range result.Errors {
			fmt.Printf("row %d skipped: %s\n", e.Row, e.Message)
		}
		return nil
	})
}

func runCacheExpired(cmd *cobra.Command, args []string) error {
	return withCache(cmd, func(cache *pricecache.Cache) error {
		expired := cache.Expired(cacheMarket)
		if len(expired) == 0 {
			fmt.Println("no expired entries")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MARKET\tPRODUCT\tCACHED AT")
		for _, e := range expired {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Market, e.Product, e.CachedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	})
}
