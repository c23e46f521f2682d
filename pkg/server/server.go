package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/newsinsight/newsserve/internal/logger"
	"github.com/newsinsight/newsserve/internal/storage"
	"github.com/newsinsight/newsserve/pkg/suggest"
)

const (
	DefaultAddr         = "127.0.0.1:5000"
	DefaultMaxPrefixLen = 60
	maxProxyBodyBytes   = 1 << 20
)

// Forwarder relays a raw request body to the analysis model.
type Forwarder interface {
	Forward(ctx context.Context, body []byte) ([]byte, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the HTTP settings. Zero MinDate or MaxDate disables that bound.
type Config struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MinDate       time.Time
	MaxDate       time.Time
	AllowedOrigin string
	MaxPrefixLen  int
}

// Server represents the HTTP API server
type Server struct {
	cfg      Config
	router   *http.ServeMux
	server   *http.Server
	store    storage.NewsReader
	suggest  *suggest.Service
	proxy    Forwarder
	registry *prometheus.Registry
	log      *log.Logger
}

// NewServer wires routes and middleware. proxy may be nil, in which case
// the analysis endpoint answers 503.
func NewServer(cfg Config, store storage.NewsReader, svc *suggest.Service, proxy Forwarder) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 90 * time.Second
	}
	if cfg.MaxPrefixLen <= 0 {
		cfg.MaxPrefixLen = DefaultMaxPrefixLen
	}

	s := &Server{
		cfg:      cfg,
		router:   http.NewServeMux(),
		store:    store,
		suggest:  svc,
		proxy:    proxy,
		registry: prometheus.NewRegistry(),
		log:      logger.New("http"),
	}

	if err := s.registerMetrics(); err != nil {
		return nil, err
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.applyMiddleware(s.router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.cfg.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

func (s *Server) registerMetrics() error {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestCount,
		RequestDuration,
	} {
		if err := s.registry.Register(c); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}
	return suggest.RegisterMetrics(s.registry)
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.Handle("GET /metrics", s.metricsHandler())

	// News
	s.router.HandleFunc("GET /api/news", s.handleListNews)
	s.router.HandleFunc("GET /api/news/{id}", s.handleGetNews)

	// Browse analytics
	s.router.HandleFunc("GET /api/newsbrowserecord/user-records/{userId}", s.handleUserRecords)
	s.router.HandleFunc("GET /api/newsbrowserecord/user-daily-trend/{userId}", s.handleUserDailyTrend)
	s.router.HandleFunc("GET /api/newscategory/category-heatmap", s.handleCategoryHeatmap)
	s.router.HandleFunc("GET /api/userinterest/user-interest-distribution/{userId}", s.handleUserInterestDistribution)

	// Autocomplete
	s.router.HandleFunc("GET /api/autocomplete/{field}", s.handleAutocomplete)
	s.router.HandleFunc("POST /api/autocomplete/refresh", s.handleRefresh)
	s.router.HandleFunc("GET /api/autocomplete/stats", s.handleAutocompleteStats)

	// LLM proxy
	s.router.HandleFunc("POST /api/proxy/getAnalysis", s.handleGetAnalysis)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = MetricsMiddleware()(handler)
	handler = DateRangeMiddleware(s.cfg.MinDate, s.cfg.MaxDate)(handler)
	handler = RecoveryMiddleware(s.log)(handler)
	handler = LoggingMiddleware(s.log)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware(s.cfg.AllowedOrigin)(handler)
	return handler
}
