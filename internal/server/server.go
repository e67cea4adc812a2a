package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/pals/internal/observability"
	"github.com/danmuck/pals/internal/protocol/pals"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the codec service runtime settings.
type Config struct {
	Name           string
	Addr           string
	Variant        pals.Variant
	Options        pals.Options
	MaxBufferBytes int64
	CorsOrigins    []string
}

func DefaultConfig() Config {
	return Config{
		Name:           "palsd",
		Addr:           ":9300",
		Variant:        pals.Wide,
		Options:        pals.DefaultOptions(),
		MaxBufferBytes: 8 * 1024 * 1024,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("server config missing name")
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	if !c.Variant.Valid() {
		return fmt.Errorf("server config: %w", pals.ErrUnknownVariant)
	}
	if c.MaxBufferBytes <= 0 {
		return fmt.Errorf("server config max_buffer_bytes must be positive, got %d", c.MaxBufferBytes)
	}
	return nil
}

// Server exposes the codec over HTTP.
type Server struct {
	cfg      Config
	router   *gin.Engine
	logger   zerolog.Logger
	appeared time.Time
}

func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	observability.RegisterMetrics()
	logger := log.Logger.With().Str("service", cfg.Name).Logger()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	if len(cfg.CorsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CorsOrigins,
			AllowMethods: []string{"GET", "POST"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:      cfg,
		router:   r,
		logger:   logger,
		appeared: time.Now(),
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", s.cfg.Addr).
			Str("variant", s.cfg.Variant.String()).
			Bool("permit_empty_segments", s.cfg.Options.PermitEmptySegments).
			Bool("strict_trailing", s.cfg.Options.StrictTrailing).
			Msg("codec service listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown codec service: %w", err)
	}
	s.logger.Info().Msg("codec service stopped")
	return nil
}
