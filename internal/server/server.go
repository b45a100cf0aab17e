// Package server exposes plan generation and saved plans over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pablasso/goalplan/internal/ai"
	"github.com/pablasso/goalplan/internal/plan"
)

const shutdownTimeout = 5 * time.Second

// PlanStore is the subset of store.Store the server needs.
type PlanStore interface {
	Save(ctx context.Context, goal string, tasks []plan.Task) (*plan.Plan, error)
	LoadAll(ctx context.Context) ([]plan.Plan, error)
	Get(ctx context.Context, id string) (*plan.Plan, error)
}

// Server is the goalplan HTTP API.
type Server struct {
	gen      ai.Generator
	provider ai.Provider
	store    PlanStore
	logger   *slog.Logger
	router   *gin.Engine

	// gin serves requests concurrently; saves read and rewrite the whole
	// slot, so they must not interleave.
	saveMu sync.Mutex
}

// New creates a server and registers its routes.
func New(gen ai.Generator, provider ai.Provider, store PlanStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		gen:      gen,
		provider: provider,
		store:    store,
		logger:   logger,
		router:   router,
	}

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/generate-plan", s.handleGeneratePlan)
		api.GET("/plans", s.handleListPlans)
		api.POST("/plans", s.handleCreatePlan)
		api.GET("/plans/:id", s.handleGetPlan)
	}

	return s
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr, "provider", string(s.provider))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
