package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jbweber/homelab/ludoteca/internal/datastore"
	"github.com/jbweber/homelab/ludoteca/internal/logging"
	"github.com/jbweber/homelab/ludoteca/internal/metrics"
	"github.com/jbweber/homelab/ludoteca/internal/repository"
	"github.com/jbweber/homelab/ludoteca/internal/service/videojuegos"
)

const rootMessage = "Ludoteca web service is running!"

// Pinger reports whether the backing database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// API holds the service and infrastructure dependencies of the HTTP layer
type API struct {
	service *videojuegos.Service
	db      Pinger
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// Option configures an API
type Option func(*API)

// WithMetrics enables request metrics and the /metrics endpoint
func WithMetrics(rec *metrics.Recorder) Option {
	return func(a *API) { a.metrics = rec }
}

// WithLogger sets the base logger used for request logging
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) { a.logger = logger }
}

// NewAPI creates a new API instance with the videogame service built from the datastore
func NewAPI(ds *datastore.Datastore, opts ...Option) *API {
	a := &API{
		service: videojuegos.NewService(repository.NewVideojuegoRepository(ds.DB)),
		db:      ds,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics != nil {
		if err := a.metrics.RegisterRecordCount(a.countRecords); err != nil {
			a.logger.Warn("failed to register record count gauge", slog.Any("error", err))
		}
	}
	return a
}

// Service exposes the videogame service for callers outside the HTTP layer
func (a *API) Service() *videojuegos.Service {
	return a.service
}

func (a *API) countRecords() float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	n, err := a.service.Count(ctx)
	if err != nil {
		a.logger.Warn("failed to count videojuegos", slog.Any("error", err))
		return 0
	}
	return float64(n)
}

// Router builds the chi router with the middleware stack and all routes
func (a *API) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(a.logger))
	r.Use(middleware.Recoverer)
	if a.metrics != nil {
		r.Use(a.metrics.Middleware)
	}
	r.Use(corsHandler())

	a.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all API endpoints to the given chi router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/", a.rootHandler)
	r.Get("/health", a.healthHandler)
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	RegisterVideojuegosRoutes(r, a.service)
}

// RegisterVideojuegosRoutes mounts the videogame endpoints under /api/videojuegos
func RegisterVideojuegosRoutes(r chi.Router, svc VideojuegosService) {
	h := NewVideojuegos(svc)
	r.Route("/api/videojuegos", func(r chi.Router) {
		r.Get("/", h.ListHandler)
		r.Post("/", h.CreateHandler)
		r.Get("/buscar/{nombre}", h.SearchHandler)
		r.Get("/{id}", h.GetHandler)
		r.Put("/{id}", h.UpdateHandler)
		r.Delete("/{id}", h.DeleteHandler)
	})
}

func (a *API) rootHandler(w http.ResponseWriter, r *http.Request) {
	writeText(w, r, http.StatusOK, rootMessage)
}

// healthHandler answers 200 when the database responds to a ping, 503 otherwise
func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("health check failed", slog.Any("error", err))
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
