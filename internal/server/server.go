// Package server exposes resume analysis over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/screening"
)

const (
	DefaultPort            = "8000"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxUploadBytes  = 10 << 20
)

// DefaultAllowOrigins are the local development frontends allowed by CORS.
var DefaultAllowOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:3000",
}

// Analyzer decides criteria for a resume text.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription, criteria string) (*screening.Analysis, error)
	Model() string
}

// Extractor turns an uploaded document into text.
type Extractor interface {
	Extract(data []byte, format extract.Format) (string, error)
}

// Config holds the HTTP settings.
type Config struct {
	Port            string
	AllowOrigins    []string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	Debug           bool
}

func (c Config) withDefaults() Config {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = DefaultAllowOrigins
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return c
}

// Server is the gin based HTTP service.
type Server struct {
	cfg       Config
	analyzer  Analyzer
	extractor Extractor
	logger    *zap.Logger
	router    *gin.Engine
}

// New builds the router. A nil logger disables logging.
func New(cfg Config, analyzer Analyzer, extractor Extractor, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg.withDefaults(),
		analyzer:  analyzer,
		extractor: extractor,
		logger:    logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()

	router.Use(requestID())
	router.Use(requestLogger(s.logger))
	router.Use(gin.CustomRecovery(recovery(s.logger)))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", s.health)
	router.POST("/analyze-resume", s.analyzeResume)
	router.POST("/screen", s.analyzeResume)

	return router
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("model", s.analyzer.Model()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", zap.Duration("timeout", s.cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("server exited gracefully")
	return nil
}
