package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/benpsk/go-items/internal/config"
	"github.com/benpsk/go-items/internal/postgres"
	"github.com/benpsk/go-items/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	defaultMigrationsDir = "db/migrations"
	defaultSeedersDir    = "db/seeders"
)

var rootCmd = &cobra.Command{
	Use:           "cli",
	Short:         "Database maintenance for the items service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("env: %w", err)
		}
		return nil
	},
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	rootCmd.AddCommand(newMigrateCmd(), newSeedCmd(), newFreshCmd(), newDumpCmd())
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%s: %v", commandName(os.Args), err)
	}
}

func commandName(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return "cli"
}

// loadPostgres loads config and refuses non-Postgres URLs; the sqlite backend
// creates its schema on open and has nothing to migrate.
func loadPostgres() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	driver, err := storage.Driver(cfg.Database.URL)
	if err != nil {
		return config.Config{}, err
	}
	if driver != storage.DriverPostgres {
		return config.Config{}, fmt.Errorf("DATABASE_URL must point at postgres (got %s)", driver)
	}
	return cfg, nil
}

func connect(ctx context.Context) (config.Config, *pgxpool.Pool, error) {
	cfg, err := loadPostgres()
	if err != nil {
		return config.Config{}, nil, err
	}
	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("database: %w", err)
	}
	return cfg, pool, nil
}

func shouldUseEmbedded(path, defaultPath string) (bool, error) {
	if path == "" {
		return true, nil
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, fmt.Errorf("path %q is not a directory", path)
		}
		return false, nil
	case errors.Is(err, os.ErrNotExist):
		if path == defaultPath {
			return true, nil
		}
		return false, fmt.Errorf("path %q not found", path)
	default:
		return false, fmt.Errorf("stat path %q: %w", path, err)
	}
}
