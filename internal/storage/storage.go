// Package storage picks the item backend named by the database connection
// string and owns it for the life of the process.
package storage

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/benpsk/go-items/internal/config"
	"github.com/benpsk/go-items/internal/item"
	"github.com/benpsk/go-items/internal/postgres"
	"github.com/benpsk/go-items/internal/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Backend is an opened persistence context. Close releases it.
type Backend struct {
	Driver string
	Items  item.Store

	ping  func(context.Context) error
	close func()
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Driver reports which backend serves rawURL.
func Driver(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	scheme, _, _ := strings.Cut(strings.ToLower(u.Scheme), "+")
	switch scheme {
	case "postgres", "postgresql":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "":
		return "", fmt.Errorf("database url %q has no scheme", rawURL)
	default:
		return "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}

// Open connects to the database in cfg. For Postgres the embedded migrations
// are applied first when cfg.AutoMigrate is set.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Backend, error) {
	driver, err := Driver(cfg.URL)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverSQLite:
		dsn, err := sqlite.DSNFromURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		store, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &Backend{
			Driver: driver,
			Items:  store,
			ping:   store.Ping,
			close: func() {
				if err := store.Close(); err != nil {
					log.Printf("storage: close sqlite: %v", err)
				}
			},
		}, nil
	default:
		pool, err := postgres.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			for _, name := range applied {
				log.Printf("storage: applied %s", name)
			}
		}
		return &Backend{
			Driver: driver,
			Items:  postgres.NewItemStore(pool),
			ping:   pool.Ping,
			close:  pool.Close,
		}, nil
	}
}
