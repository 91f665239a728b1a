package server

import (
	"net/url"
	"strings"

	"github.com/benpsk/go-items/internal/config"
	"github.com/benpsk/go-items/internal/item"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(cfg config.Config, items *item.Service, db pinger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: appOrigins(cfg.AppURL),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	writeLimiter := newRateLimiter(cfg.RateLimit.WriteRequests, cfg.RateLimit.WriteWindow)
	h := newHandler(items, db, strings.TrimSpace(cfg.AppName))

	r.Get("/", h.indexPage)
	r.Get("/healthz", h.healthz)
	r.Get("/api/health", h.healthz)
	r.Get("/items", h.listItems)
	r.With(writeLimiter.limitByIP("items_create")).Post("/items", h.createItem)

	return r
}

func appOrigins(appURL string) []string {
	appURL = strings.TrimSpace(appURL)
	if appURL == "" {
		return nil
	}
	parsed, err := url.Parse(appURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil
	}
	return []string{parsed.Scheme + "://" + parsed.Host}
}
