package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benpsk/go-items/internal/config"
	"github.com/benpsk/go-items/internal/item"
	"github.com/benpsk/go-items/internal/sqlite"
	"github.com/go-chi/chi/v5"
)

func testConfig() config.Config {
	return config.Config{
		AppName: "Items",
		AppURL:  "http://127.0.0.1:8080",
		RateLimit: config.RateLimitConfig{
			WriteRequests: 1000,
			WriteWindow:   time.Minute,
		},
	}
}

// newTestRouter serves the full router over a fresh in-memory database.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	store, err := sqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return NewRouter(testConfig(), item.NewService(store), store)
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
