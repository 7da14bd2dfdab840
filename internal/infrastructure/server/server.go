package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/LogViewer/backend/internal/api/http"
	"github.com/GriffinCanCode/LogViewer/backend/internal/api/middleware"
	"github.com/GriffinCanCode/LogViewer/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/LogViewer/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/LogViewer/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/LogViewer/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/LogViewer/backend/internal/navigation"
	"github.com/GriffinCanCode/LogViewer/backend/internal/policy"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

const shutdownTimeout = 15 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	nav     *navigation.Navigator
	tracer  *tracing.Tracer
	metrics *monitoring.Metrics
	logger  *logging.Logger
	config  *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return newServer(cfg, logger)
}

func newServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Initializing log viewer",
		zap.String("port", cfg.Server.Port),
		zap.Strings("roots", cfg.Navigation.Roots),
		zap.String("policy_file", cfg.Navigation.PolicyFile),
	)

	access, err := buildPolicy(cfg.Navigation)
	if err != nil {
		return nil, err
	}
	logger.Info("Access policy loaded", zap.Strings("roots", access.Roots()))

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("log-viewer", logger.Component("tracing"))

	nav := navigation.New(access, navigation.Options{
		DefaultDirectory: cfg.Navigation.DefaultDirectory,
		Workers:          cfg.Navigation.ScanWorkers,
		BufferSize:       cfg.Navigation.ScanBuffer,
		Logger:           logger.Component("navigation"),
		Metrics:          metrics,
	})

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			IdleTTL:           middleware.DefaultRateLimitConfig().IdleTTL,
		}))
	}

	handlers := api.NewHandlers(nav, tracer, metrics, logger.Component("http"), Version)
	handlers.Register(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		nav:     nav,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		config:  cfg,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// buildPolicy loads the policy file when one is configured, otherwise it
// exposes the configured roots without further restrictions.
func buildPolicy(cfg config.NavigationConfig) (*policy.Policy, error) {
	if cfg.PolicyFile != "" {
		pc, err := policy.Load(cfg.PolicyFile)
		if err != nil {
			return nil, err
		}
		return policy.New(pc)
	}
	return policy.New(policy.Config{Roots: cfg.Roots})
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Logger returns the process logger.
func (s *Server) Logger() *zap.Logger {
	return s.logger.Logger
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// Close releases background resources and flushes logs.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	s.tracer.Close()
	// Sync fails on stdout for some terminals; nothing to do about it.
	_ = s.logger.Sync()
	return nil
}
