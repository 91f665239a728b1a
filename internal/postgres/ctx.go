package postgres

import "context"

type dbtxKey struct{}

// WithDBTX makes stores called with the returned context run on db instead
// of their own pool. Integration tests use it to wrap each test in a
// transaction that is rolled back afterwards.
func WithDBTX(ctx context.Context, db DBTX) context.Context {
	if db == nil {
		return ctx
	}
	return context.WithValue(ctx, dbtxKey{}, db)
}

func DBFromContext(ctx context.Context, fallback DBTX) DBTX {
	if ctx == nil {
		return fallback
	}
	if db, ok := ctx.Value(dbtxKey{}).(DBTX); ok {
		return db
	}
	return fallback
}
