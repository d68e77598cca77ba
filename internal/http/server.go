// Package http exposes the expense API: record CRUD, the category
// registry, and the aggregated report endpoint.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"kakeibo/internal/cache"
	"kakeibo/internal/core"
)

// ExpenseStore is the record surface the handlers need. Implemented by
// services.ExpenseService.
type ExpenseStore interface {
	Create(ctx context.Context, rec core.Record) (core.Record, error)
	List(ctx context.Context) ([]core.Record, error)
	Get(ctx context.Context, id int64) (core.Record, error)
	Update(ctx context.Context, rec core.Record) (core.Record, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryStore is the registry surface the handlers need. Implemented
// by registry.Registry.
type CategoryStore interface {
	List() []core.Category
	Append(name, icon string) (core.Category, error)
	Resolve(id string) (core.Category, bool)
}

// Pinger reports storage reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	expenses    ExpenseStore
	categories  CategoryStore
	pinger      Pinger
	rateLimiter *rateLimiter

	// Report responses are cached per query and purged on any write.
	reportCache *cache.LRUCache[reportResponse]

	shutdownOnce sync.Once
}

// Options tunes the server beyond its listen address.
type Options struct {
	ReportCacheSize int
	ReportCacheTTL  time.Duration

	// CacheManager, when set, takes over expiry sweeps for the report
	// cache.
	CacheManager *cache.Manager
}

// NewServer configures routes and returns a ready-to-run http.Server.
func NewServer(addr string, expenses ExpenseStore, categories CategoryStore, pinger Pinger, opts Options) *Server {
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = 128
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = 5 * time.Minute
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		expenses:    expenses,
		categories:  categories,
		pinger:      pinger,
		rateLimiter: newRateLimiter(),
		reportCache: cache.NewLRUCache[reportResponse](opts.ReportCacheSize, opts.ReportCacheTTL),
	}

	if opts.CacheManager != nil {
		opts.CacheManager.Register(s.reportCache)
	}

	r := chi.NewRouter()
	r.Use(s.withSecurityHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Get("/{id}", s.handleGetExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})
		r.Get("/reports", s.handleReport)
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
		})
	})

	s.Handler = r

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
