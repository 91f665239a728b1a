package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	dbembed "github.com/benpsk/go-items/db"
	"github.com/benpsk/go-items/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := runMigrations(ctx, pool, dir)
			if err != nil {
				return err
			}
			logApplied("migrate", "migrations", applied)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "path", defaultMigrationsDir, "directory containing .sql migrations (overrides embedded bundle)")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Apply pending seeders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := runSeeders(ctx, pool, dir)
			if err != nil {
				return err
			}
			logApplied("seed", "seeders", applied)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "path", defaultSeedersDir, "directory containing .sql seeders (overrides embedded bundle)")
	return cmd
}

func newFreshCmd() *cobra.Command {
	var (
		migrationsDir string
		seedersDir    string
		seed          bool
	)
	cmd := &cobra.Command{
		Use:   "fresh",
		Short: "Drop every table and re-run migrations (development only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			cfg, err := loadPostgres()
			if err != nil {
				return err
			}
			if cfg.AppEnv != "development" {
				return fmt.Errorf("APP_ENV must be development (got %q)", cfg.AppEnv)
			}
			pool, err := postgres.Connect(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer pool.Close()

			if err := postgres.ResetSchema(ctx, pool); err != nil {
				return err
			}
			applied, err := runMigrations(ctx, pool, migrationsDir)
			if err != nil {
				return err
			}
			logApplied("fresh", "migrations", applied)

			if !seed {
				return nil
			}
			seeded, err := runSeeders(ctx, pool, seedersDir)
			if err != nil {
				return err
			}
			logApplied("fresh", "seeders", seeded)
			return nil
		},
	}
	cmd.Flags().StringVar(&migrationsDir, "path", defaultMigrationsDir, "directory containing .sql migrations (overrides embedded bundle)")
	cmd.Flags().BoolVar(&seed, "seed", false, "apply seed files after migrations")
	cmd.Flags().StringVar(&seedersDir, "seed-path", defaultSeedersDir, "directory containing .sql seeders (overrides embedded bundle)")
	return cmd
}

func newDumpCmd() *cobra.Command {
	var (
		out        string
		schemaOnly bool
		dataOnly   bool
		binary     string
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write a plain SQL dump with pg_dump",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPostgres()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("mkdir output dir: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			argsOut := []string{
				"--dbname", postgres.NormalizeURL(cfg.Database.URL),
				"--format=plain",
				"--no-owner",
				"--no-privileges",
				"--file", out,
			}
			if schemaOnly {
				argsOut = append(argsOut, "--schema-only")
			}
			if dataOnly {
				argsOut = append(argsOut, "--data-only")
			}

			pgDump := exec.CommandContext(ctx, binary, argsOut...)
			pgDump.Stdout = os.Stdout
			pgDump.Stderr = os.Stderr

			log.Printf("dump: running %s -> %s", binary, out)
			if err := pgDump.Run(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dump written: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", defaultDumpPath(), "output file path")
	cmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "dump schema only")
	cmd.Flags().BoolVar(&dataOnly, "data-only", false, "dump data only")
	cmd.Flags().StringVar(&binary, "pg-dump-bin", "pg_dump", "pg_dump binary path")
	cmd.MarkFlagsMutuallyExclusive("schema-only", "data-only")
	return cmd
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, dir string) ([]string, error) {
	useEmbedded, err := shouldUseEmbedded(dir, defaultMigrationsDir)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureTable(ctx, pool); err != nil {
		return nil, err
	}
	if !useEmbedded {
		return postgres.Apply(ctx, pool, dir)
	}
	migrationsFS, err := fs.Sub(dbembed.Migrations, "migrations")
	if err != nil {
		return nil, err
	}
	return postgres.ApplyFS(ctx, pool, migrationsFS)
}

func runSeeders(ctx context.Context, pool *pgxpool.Pool, dir string) ([]string, error) {
	useEmbedded, err := shouldUseEmbedded(dir, defaultSeedersDir)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSeedTable(ctx, pool); err != nil {
		return nil, err
	}
	if !useEmbedded {
		return postgres.Seed(ctx, pool, dir)
	}
	seedersFS, err := fs.Sub(dbembed.Seeders, "seeders")
	if err != nil {
		return nil, err
	}
	return postgres.SeedFS(ctx, pool, seedersFS)
}

func logApplied(prefix, kind string, applied []string) {
	if len(applied) == 0 {
		log.Printf("%s: no %s applied", prefix, kind)
		return
	}
	for _, name := range applied {
		log.Printf("%s: applied %s", prefix, name)
	}
}

func defaultDumpPath() string {
	return filepath.Join("tmp", "dump-"+time.Now().Format("20060102-150405")+".sql")
}
