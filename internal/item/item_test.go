package item

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	items     []Item
	createErr error
	listErr   error
	calls     int
}

func (f *fakeStore) Create(ctx context.Context, name string) (Item, error) {
	f.calls++
	if f.createErr != nil {
		return Item{}, f.createErr
	}
	it := Item{ID: int64(len(f.items) + 1), Name: name}
	f.items = append(f.items, it)
	return it, nil
}

func (f *fakeStore) List(ctx context.Context) ([]Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func TestServiceCreateKeepsNameAsSent(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := NewService(store)

	created, err := svc.Create(context.Background(), Create{Name: "  pen "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 || created.Name != "  pen " {
		t.Fatalf("unexpected item: %+v", created)
	}
}

func TestServiceCreateRejectsEmptyNameBeforeStore(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := NewService(store)

	_, err := svc.Create(context.Background(), Create{Name: ""})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired in chain, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("store called %d times, want 0", store.calls)
	}
}

func TestServiceWrapsStoreFailures(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	svc := NewService(&fakeStore{createErr: cause, listErr: cause})

	_, err := svc.Create(context.Background(), Create{Name: "pen"})
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected persistence error, got %T", err)
	}
	if pe.Op != "insert" || err.Error() != "connection refused" || !errors.Is(err, cause) {
		t.Fatalf("unexpected persistence error: op=%q msg=%q", pe.Op, err.Error())
	}

	_, err = svc.List(context.Background())
	if !errors.As(err, &pe) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped list failure, got %v", err)
	}
}

func TestServiceCreateAcceptsWhitespaceName(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	created, err := NewService(store).Create(context.Background(), Create{Name: "   "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "   " || store.calls != 1 {
		t.Fatalf("unexpected item %+v after %d store calls", created, store.calls)
	}
}

func TestServiceListNeverReturnsNil(t *testing.T) {
	t.Parallel()

	items, err := NewService(&fakeStore{}).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}
