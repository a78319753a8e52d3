package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/termhost/internal/api/http"
	"github.com/GriffinCanCode/termhost/internal/api/middleware"
	"github.com/GriffinCanCode/termhost/internal/api/ws"
	"github.com/GriffinCanCode/termhost/internal/domain/shell"
	"github.com/GriffinCanCode/termhost/internal/domain/terminal"
	"github.com/GriffinCanCode/termhost/internal/infrastructure/config"
	"github.com/GriffinCanCode/termhost/internal/infrastructure/logging"
	"github.com/GriffinCanCode/termhost/internal/infrastructure/monitoring"
)

// streamPath is served without compression so the upgrade can hijack the
// connection.
const streamPath = "/stream"

// Server wraps the HTTP server and dependencies
type Server struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	catalog *shell.Catalog
	manager *terminal.Manager
	stream  *ws.Handler
	router  *gin.Engine
	handler http.Handler
	http    *http.Server
}

// NewServer creates a server with a logger built from cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	return New(cfg, logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development))
}

// New creates a server instance
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	logger.Info("Initializing termhost",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Int("max_sessions", cfg.Terminal.MaxSessions),
	)

	metrics := monitoring.NewMetrics()

	catalog, err := shell.NewCatalog(shell.Options{
		ShellsFile:   cfg.Shells.ShellsFile,
		CatalogFile:  cfg.Shells.CatalogFile,
		IncludeLogin: cfg.Shells.IncludeLogin,
		Exclude:      cfg.Shells.Exclude,
		Term:         cfg.Shells.Term,
	}, logger.Component("shell"))
	if err != nil {
		return nil, fmt.Errorf("failed to build shell catalog: %w", err)
	}
	logger.Info("Shell catalog ready", zap.Int("shells", len(catalog.Shells())))

	manager := terminal.NewManager(terminal.Options{
		Geometry:       terminal.Geometry{Rows: cfg.Terminal.Rows, Cols: cfg.Terminal.Cols},
		ReadBufferSize: cfg.Terminal.ReadBufferSize,
		MaxSessions:    cfg.Terminal.MaxSessions,
		CloseTimeout:   cfg.Terminal.CloseTimeout,
	}, logger.Component("terminal"), metrics)

	stream := ws.NewHandler(manager, catalog, ws.Options{
		SendBuffer:      cfg.Stream.SendBuffer,
		MaxMessageBytes: cfg.Stream.MaxMessageBytes,
		AllowedOrigins:  cfg.Stream.AllowedOrigins,
	}, logger.Component("stream"), metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.CORS.Origins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limit := middleware.DefaultRateLimitConfig()
		limit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limit.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limit))
	}

	handlers := apihttp.NewHandlers(manager, catalog, logger.Component("http"))
	handlers.Register(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET(streamPath, stream.HandleConnection)

	mux := http.NewServeMux()
	mux.Handle(streamPath, router)
	mux.Handle("/", gzhttp.GzipHandler(router))

	s := &Server{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		catalog: catalog,
		manager: manager,
		stream:  stream,
		router:  router,
		handler: mux,
	}
	s.http = &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: mux,
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Manager returns the session manager.
func (s *Server) Manager() *terminal.Manager { return s.manager }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, disconnects streams, closes every
// session and flushes the logger.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := s.stream.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stream shutdown: %w", err))
	}
	if err := s.manager.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("session shutdown: %w", err))
	}
	if len(errs) == 0 {
		s.logger.Info("Shutdown complete")
	} else {
		s.logger.Error("Shutdown incomplete", zap.Errors("errors", errs))
	}

	_ = s.logger.Sync()
	return errors.Join(errs...)
}
