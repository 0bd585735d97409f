package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pkmn-analytics/battle-features/internal/features"
	"github.com/pkmn-analytics/battle-features/internal/logic"
	"github.com/pkmn-analytics/battle-features/internal/models"
)

// DefaultMaxBodySize limits JSONL request bodies to 64MB
const DefaultMaxBodySize = 64 << 20

// IngestQueue defines the interface for the battle ingestion worker pool
type IngestQueue interface {
	Enqueue(battle models.BattleRecord) bool
	QueueDepth() int
}

// ReadyCheck reports whether a backend is reachable
type ReadyCheck func(ctx context.Context) error

type Config struct {
	Service        logic.ExtractionService
	WorkerPool     IngestQueue
	Profiles       *features.ProfileSet
	MaxBodySize    int64
	AllowedOrigins []string
	// Checks are run by /ready, keyed by backend name
	Checks map[string]ReadyCheck
	Logger *zap.Logger
}

type Handler struct {
	service     logic.ExtractionService
	pool        IngestQueue
	profiles    *features.ProfileSet
	maxBodySize int64
	origins     []string
	checks      map[string]ReadyCheck
	logger      *zap.SugaredLogger
}

func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	profiles := cfg.Profiles
	if profiles == nil {
		profiles = features.DefaultProfiles()
	}
	return &Handler{
		service:     cfg.Service,
		pool:        cfg.WorkerPool,
		profiles:    profiles,
		maxBodySize: maxBody,
		origins:     cfg.AllowedOrigins,
		checks:      cfg.Checks,
		logger:      logger.Sugar(),
	}
}

// Routes builds the HTTP router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/features", func(r chi.Router) {
			r.With(middleware.Timeout(5*time.Minute)).Post("/extract", h.ExtractFeatures)
			r.Get("/columns", h.GetColumns)
			r.Get("/profiles", h.GetProfiles)
		})
		r.Post("/battles/ingest", h.IngestBattles)
		r.Get("/runs", h.GetRuns)
	})

	return r
}
