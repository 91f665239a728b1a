package postgres

import (
	"context"
	"fmt"

	"github.com/benpsk/go-items/internal/item"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ItemStore struct {
	db DBTX

	// beforeCommit runs inside the insert transaction right before commit.
	beforeCommit func(ctx context.Context, tx pgx.Tx) error
}

func NewItemStore(db DBTX) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) Create(ctx context.Context, name string) (item.Item, error) {
	tx, err := DBFromContext(ctx, s.db).Begin(ctx)
	if err != nil {
		return item.Item{}, fmt.Errorf("begin create item: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var out item.Item
	err = tx.QueryRow(ctx, `
		insert into items (name)
		values ($1)
		returning id, name
	`, name).Scan(&out.ID, &out.Name)
	if err != nil {
		return item.Item{}, fmt.Errorf("create item: %w", err)
	}

	if s.beforeCommit != nil {
		if err := s.beforeCommit(ctx, tx); err != nil {
			return item.Item{}, fmt.Errorf("commit create item: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return item.Item{}, fmt.Errorf("commit create item: %w", err)
	}
	return out, nil
}

func (s *ItemStore) List(ctx context.Context) ([]item.Item, error) {
	db := DBFromContext(ctx, s.db)
	if pool, ok := db.(*pgxpool.Pool); ok {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire connection: %w", err)
		}
		defer conn.Release()
		db = conn
	}

	rows, err := db.Query(ctx, `select id, name from items`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[item.Item])
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	return items, nil
}
