package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	dbembed "github.com/benpsk/go-items/db"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ledger records which .sql files of one kind have been applied.
type ledger struct {
	table string
	kind  string
}

var (
	migrationLedger = ledger{table: "schema_migrations", kind: "migration"}
	seedLedger      = ledger{table: "schema_seeders", kind: "seed"}
)

func (l ledger) ensure(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		create table if not exists `+l.table+` (
			name text primary key,
			applied_at timestamptz not null default now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create %s: %w", l.table, err)
	}
	return nil
}

func (l ledger) applied(ctx context.Context, pool *pgxpool.Pool, name string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `select exists (select 1 from `+l.table+` where name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s %s: %w", l.kind, name, err)
	}
	return exists, nil
}

// run executes statement and records name in one transaction. An empty
// statement is only recorded.
func (l ledger) run(ctx context.Context, pool *pgxpool.Pool, name, statement string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s %s: %w", l.kind, name, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if statement != "" {
		if _, err := tx.Exec(ctx, statement); err != nil {
			return fmt.Errorf("exec %s %s: %w", l.kind, name, err)
		}
	}
	if _, err := tx.Exec(ctx, `insert into `+l.table+` (name) values ($1)`, name); err != nil {
		return fmt.Errorf("record %s %s: %w", l.kind, name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s %s: %w", l.kind, name, err)
	}
	return nil
}

// runAll applies the unapplied .sql files of fsys in lexical order. Each file
// should hold a single statement compatible with the extended protocol.
func (l ledger) runAll(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read %s files: %w", l.kind, err)
	}

	var applied []string
	for _, name := range listSQLFiles(entries) {
		done, err := l.applied(ctx, pool, name)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		contents, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", name, err)
		}
		if err := l.run(ctx, pool, name, strings.TrimSpace(string(contents))); err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}
	return applied, nil
}

// EnsureTable creates the bookkeeping table for applied migrations.
func EnsureTable(ctx context.Context, pool *pgxpool.Pool) error {
	return migrationLedger.ensure(ctx, pool)
}

// EnsureSeedTable creates the bookkeeping table for applied seeders.
func EnsureSeedTable(ctx context.Context, pool *pgxpool.Pool) error {
	return seedLedger.ensure(ctx, pool)
}

// Apply executes unapplied migrations found in dir.
func Apply(ctx context.Context, pool *pgxpool.Pool, dir string) ([]string, error) {
	fsys, err := dirFS(dir, "migrations")
	if err != nil {
		return nil, err
	}
	return migrationLedger.runAll(ctx, pool, fsys)
}

// ApplyFS executes unapplied migrations found in fsys.
func ApplyFS(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) ([]string, error) {
	return migrationLedger.runAll(ctx, pool, fsys)
}

// Seed executes unapplied seeders found in dir.
func Seed(ctx context.Context, pool *pgxpool.Pool, dir string) ([]string, error) {
	fsys, err := dirFS(dir, "seeders")
	if err != nil {
		return nil, err
	}
	return seedLedger.runAll(ctx, pool, fsys)
}

// SeedFS executes unapplied seeders found in fsys.
func SeedFS(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) ([]string, error) {
	return seedLedger.runAll(ctx, pool, fsys)
}

// Migrate brings the schema up to date from the embedded migrations. It is
// what the service runs at start-up.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	if err := EnsureTable(ctx, pool); err != nil {
		return nil, err
	}
	fsys, err := fs.Sub(dbembed.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	return ApplyFS(ctx, pool, fsys)
}

func dirFS(dir, kind string) (fs.FS, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s directory %q not found", kind, dir)
		}
		return nil, fmt.Errorf("stat %s dir: %w", kind, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s path %q is not a directory", kind, dir)
	}
	return os.DirFS(dir), nil
}

func listSQLFiles(entries []fs.DirEntry) []string {
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files
}
