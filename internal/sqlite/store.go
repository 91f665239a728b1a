// Package sqlite stores items in an embedded SQLite database. It backs
// sqlite:// connection strings, which local development and the handler
// tests use instead of Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/benpsk/go-items/internal/item"
)

const memoryDSN = ":memory:"

// schema mirrors db/migrations for the SQLite dialect.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_items_id ON items (id)`,
}

// Store implements item.Store on database/sql.
type Store struct {
	db  *sql.DB
	dsn string

	// beforeCommit runs inside the insert transaction right before commit.
	beforeCommit func(ctx context.Context, tx *sql.Tx) error
}

// Open opens (or creates) the database named by dsn and applies the schema.
// An in-memory database is limited to one connection so every call sees the
// same data.
func Open(ctx context.Context, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = memoryDSN
	}

	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}

	return &Store{db: db, dsn: dsn}, nil
}

// DSNFromURL converts a SQLAlchemy style URL to a driver DSN:
// "sqlite://" is an in-memory database, "sqlite:///items.db" a relative
// path and "sqlite:////var/lib/items.db" an absolute one.
// The scheme is matched case-insensitively and may be spelled "sqlite3".
func DSNFromURL(raw string) (string, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(raw), "://")
	if !ok {
		return "", fmt.Errorf("not a sqlite url: %q", raw)
	}
	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
	default:
		return "", fmt.Errorf("not a sqlite url: %q", raw)
	}
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" || rest == memoryDSN {
		return memoryDSN, nil
	}
	return rest, nil
}

func (s *Store) Create(ctx context.Context, name string) (item.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return item.Item{}, fmt.Errorf("begin create item: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var out item.Item
	err = tx.QueryRowContext(ctx, `
		INSERT INTO items (name)
		VALUES (?)
		RETURNING id, name
	`, name).Scan(&out.ID, &out.Name)
	if err != nil {
		return item.Item{}, fmt.Errorf("create item: %w", err)
	}

	if s.beforeCommit != nil {
		if err := s.beforeCommit(ctx, tx); err != nil {
			return item.Item{}, fmt.Errorf("commit create item: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return item.Item{}, fmt.Errorf("commit create item: %w", err)
	}
	return out, nil
}

func (s *Store) List(ctx context.Context) ([]item.Item, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, `SELECT id, name FROM items`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]item.Item, 0)
	for rows.Next() {
		var it item.Item
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return errors.New("store not open")
	}
	return s.db.Close()
}

func isMemory(dsn string) bool {
	return dsn == memoryDSN || strings.Contains(dsn, "mode=memory")
}

func withPragmas(dsn string) string {
	pragmas := "_pragma=busy_timeout(5000)"
	if !isMemory(dsn) {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + pragmas
	}
	return dsn + "?" + pragmas
}
