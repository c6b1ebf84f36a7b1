package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"luckydraw/internal/config"
	"luckydraw/internal/observability"
)

// Server hosts the HTTP surface. It implements server.Service so the
// lifecycle manager can start and stop it with the rest of the process.
type Server struct {
	logger *zap.Logger
	cfg    config.HTTPConfig
	srv    *http.Server
}

// NewServer builds the gin router around handler and wraps it in an HTTP
// server bound to cfg's address.
//
// Precondition: handler and logger are non-nil; cfg has been validated.
func NewServer(cfg config.HTTPConfig, handler *Handler, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics(), requestLog(logger))
	handler.RegisterRoutes(router)

	return &Server{
		logger: logger,
		cfg:    cfg,
		srv: &http.Server{
			Addr:        cfg.Addr(),
			Handler:     router,
			ReadTimeout: cfg.ReadTimeout,
			// WriteTimeout stays at cfg's value; zero keeps the event
			// stream open indefinitely.
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Start runs the HTTP server. It blocks until Stop is called or the
// listener fails.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr()))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully within the configured timeout.
func (s *Server) Stop() {
	ctx := context.Background()
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("http server shutdown", zap.Error(err))
	}
}

// requestMetrics records request counts and latency per route pattern.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/metrics" || path == "/api/events" {
			return
		}
		observability.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// requestLog logs one line per request at debug. The event stream is
// skipped: its entry would log only at disconnect, minutes later.
func requestLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.FullPath() == "/api/events" {
			return
		}
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}
