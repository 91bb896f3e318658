// Package http exposes the progress analytics engine over REST.
// It serves learner stats, achievements and cohort ranking, plus health,
// readiness and Prometheus endpoints.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Oyasikelly/QuizMentor-sub000/config"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/application/query"
	"github.com/Oyasikelly/QuizMentor-sub000/internal/interface/http/handlers"
	"github.com/Oyasikelly/QuizMentor-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// StatsQuerier serves GET /learners/{id}/stats.
type StatsQuerier interface {
	Handle(ctx context.Context, q query.GetStatsQuery) (*query.StatsDTO, error)
}

// AchievementsQuerier serves GET /learners/{id}/achievements.
type AchievementsQuerier interface {
	Handle(ctx context.Context, q query.GetAchievementsQuery) (*query.AchievementsDTO, error)
}

// RankingQuerier serves GET /learners/{id}/ranking.
type RankingQuerier interface {
	Handle(ctx context.Context, q query.GetRankingQuery) (*query.RankingDTO, error)
}

// Dependencies contains all dependencies required by HTTP handlers.
type Dependencies struct {
	Stats        StatsQuerier
	Achievements AchievementsQuerier
	Ranking      RankingQuerier

	HealthChecker handlers.HealthChecker

	// Registerer receives HTTP metrics; Gatherer backs /metrics.
	// A nil Gatherer disables the endpoint.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger  *logger.Logger
	Version string
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     config.HTTPConfig
	deps       Dependencies
	httpServer *http.Server
	router     chi.Router
	respond    handlers.Responder
	logger     *logger.Logger

	mu      sync.RWMutex
	running bool
}

// NewServer creates a new HTTP server.
func NewServer(cfg config.HTTPConfig, deps Dependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	if deps.HealthChecker == nil {
		deps.HealthChecker = handlers.NewCompositeHealthChecker(deps.Version)
	}

	s := &Server{
		config:  cfg,
		deps:    deps,
		respond: handlers.Responder{Version: deps.Version},
		logger:  log.With(logger.Component("http")),
	}
	s.router = s.routes()

	s.httpServer = &http.Server{
		Addr:           cfg.Address(),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	return s
}

// routes builds the router and its middleware stack.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(handlers.RequestContext(s.logger))
	r.Use(handlers.RequestLogger())
	r.Use(handlers.NewHTTPMetrics(s.deps.Registerer).Middleware)
	r.Use(middleware.Recoverer)
	r.Use(handlers.SecurityHeaders)
	if s.config.EnableCORS {
		r.Use(handlers.CORS(s.config.AllowedOrigins))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.respond.Error(w, req, http.StatusNotFound, "not_found", "Route not found", req.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		s.respond.Error(w, req, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", req.Method)
	})

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/live", s.handleLive)
	if s.deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/learners/{learnerID}", func(r chi.Router) {
		if s.config.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.config.RequestTimeout))
		}
		r.Use(middleware.NoCache)
		r.Get("/stats", s.handleStats)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/ranking", s.handleRanking)
	})

	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("HTTP server starting", logger.String("address", l.Addr().String()))

	err := s.httpServer.Serve(l)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartAsync starts the server in a goroutine and reports the exit error on the channel.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
