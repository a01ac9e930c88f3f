// Package api serves health reports over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/huangsam/grouppulse/internal/contract"
)

const shutdownTimeout = 5 * time.Second

// Server wires the HTTP routes to the report engine.
type Server struct {
	cfg    *contract.Config
	mgr    contract.StoreManager
	logger *slog.Logger
	engine *gin.Engine
}

// NewServer builds the router. cfg supplies defaults for every request and the shared threshold stores.
func NewServer(cfg *contract.Config, mgr contract.StoreManager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, mgr: mgr, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	}
	if cfg.RateLimit > 0 {
		r.Use(newClientLimiter(cfg.RateLimit, cfg.RateBurst).middleware())
	}

	r.GET("/health", s.handleHealth)

	v1 := r.Group("/api/v1")
	v1.GET("/groups", s.handleListGroups)
	v1.GET("/groups/:group/reports/:date", s.handleGroupReport)
	v1.GET("/groups/:group/trend", s.handleTrend)
	v1.GET("/reports", s.handleReports)
	v1.GET("/reports/:id", s.handleReportByID)
	v1.POST("/score", s.handleScore)
	v1.GET("/thresholds", s.handleGetThresholds)
	v1.PUT("/thresholds", s.handlePutThresholds)
	v1.GET("/scoring-config", s.handleGetScoringConfig)
	v1.PUT("/scoring-config", s.handlePutScoringConfig)

	s.engine = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ServeAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", s.cfg.ServeAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
