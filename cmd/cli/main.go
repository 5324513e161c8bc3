package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/despensa/planner-service/config"
	"github.com/despensa/planner-service/internal/database"
	"github.com/despensa/planner-service/internal/pricecache"
	"github.com/despensa/planner-service/internal/storage"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Planner CLI - household grocery price comparison tool",
	Long: `A CLI tool for comparing grocery prices across online supermarkets,
maintaining the household consumption model, and generating weekly, bulk and
physical-store shopping lists.`,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	logger = initLogger()
	return nil
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	// Always use console format for the CLI
	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: cfg != nil && cfg.Logging.NoColor}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

// openStore opens the document store at the configured data directory.
func openStore() (*storage.LocalStore, error) {
	basePath := "./data"
	if cfg != nil && cfg.Storage.BasePath != "" {
		basePath = cfg.Storage.BasePath
	}
	return storage.NewLocalStore(basePath)
}

// openCache opens the price cache over Postgres when a database URL is
// configured, over the local document store otherwise. The returned cleanup
// must be called before exit.
func openCache(ctx context.Context, docStore storage.DocumentStore) (*pricecache.Cache, func(), error) {
	ttl := pricecache.DefaultTTL
	if cfg != nil && cfg.Cache.TTL > 0 {
		ttl = cfg.Cache.TTL
	}

	if cfg == nil || cfg.Database.URL == "" {
		cache, err := pricecache.New(ctx, pricecache.NewLocalStore(docStore), ttl)
		return cache, func() {}, err
	}

	pool, err := database.Connect(ctx, cfg.Database.URL, database.PoolConfig{
		MaxConns:    cfg.Database.MaxConnections,
		MinConns:    cfg.Database.MinConnections,
		MaxLifetime: cfg.Database.MaxConnLifetime,
		MaxIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := pricecache.NewPostgresStore(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	cache, err := pricecache.New(ctx, store, ttl)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return cache, pool.Close, nil
}

func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
