package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benpsk/go-items/internal/item"
)

// setupTestStore creates an in-memory store closed at test end.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), memoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestStore_CreateAssignsIDs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "pen")
	require.NoError(t, err)
	assert.Equal(t, item.Item{ID: 1, Name: "pen"}, first)

	second, err := store.Create(ctx, "pen")
	require.NoError(t, err)
	assert.Equal(t, "pen", second.Name)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestStore_ListEmpty(t *testing.T) {
	store := setupTestStore(t)

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestStore_ListReturnsCreated(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"pen", "notebook", "stapler"} {
		_, err := store.Create(ctx, name)
		require.NoError(t, err)
	}

	items, err := store.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"pen", "notebook", "stapler"}, names)
}

func TestStore_RollsBackWhenCommitFails(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	boom := errors.New("commit interrupted")
	store.beforeCommit = func(ctx context.Context, tx *sql.Tx) error { return boom }

	_, err := store.Create(ctx, "ghost")
	require.ErrorIs(t, err, boom)

	store.beforeCommit = nil
	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_PersistsToFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	created, err := store.Create(ctx, "pen")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	items, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item.Item{created}, items)
}

func TestStore_Ping(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestDSNFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "sqlite://", want: ":memory:"},
		{url: "sqlite:///:memory:", want: ":memory:"},
		{url: "sqlite:///items.db", want: "items.db"},
		{url: "sqlite:////var/lib/items.db", want: "/var/lib/items.db"},
		{url: "SQLITE:///items.db", want: "items.db"},
		{url: "sqlite3:///items.db", want: "items.db"},
		{url: "SQLite3://", want: ":memory:"},
		{url: "postgres://localhost/items", wantErr: true},
		{url: "items.db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := DSNFromURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
