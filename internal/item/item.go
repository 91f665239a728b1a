// Package item holds the Item record, its wire shapes and the gateway that
// persists it through a Store.
package item

import (
	"context"
)

// Item is a persisted row of the items table.
type Item struct {
	ID   int64
	Name string
}

// Store is implemented by each storage backend. Every call owns its own
// session against the database and releases it before returning.
type Store interface {
	Create(ctx context.Context, name string) (Item, error)
	List(ctx context.Context) ([]Item, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates in and inserts a single row. Store failures are returned
// as *PersistenceError.
func (s *Service) Create(ctx context.Context, in Create) (Item, error) {
	if err := in.Validate(); err != nil {
		return Item{}, err
	}
	created, err := s.store.Create(ctx, in.Name)
	if err != nil {
		return Item{}, &PersistenceError{Op: "insert", Err: err}
	}
	return created, nil
}

// List returns every row. Order is whatever the backend yields.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}
