// Package httpapi exposes the spam detection service over HTTP: auth,
// single-message analysis, per-user history and aggregate statistics.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/auth"
	"github.com/mlefebvre/spamguard/internal/core"
)

// Server wraps the gin engine and the underlying http.Server.
type Server struct {
	listenAddress string
	engine        *gin.Engine
	srv           *http.Server
	logger        *zap.Logger
}

// NewServer assembles routes and middleware around the spam service, store
// and JWT manager.
func NewServer(listenAddress string, svc *core.SpamService, store core.Store, jwt *auth.JWTManager, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	authHandler := &authHandler{store: store, jwt: jwt, logger: logger}
	spamHandler := &spamHandler{service: svc, store: store, logger: logger}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.register)
			authGroup.POST("/login", authHandler.login)
			authGroup.GET("/me", requireAuth(jwt), authHandler.me)
			authGroup.POST("/logout", requireAuth(jwt), authHandler.logout)
		}

		spam := api.Group("/spam")
		spam.Use(requireAuth(jwt))
		{
			spam.POST("/analyze", spamHandler.analyze)
			spam.GET("/history", spamHandler.history)
			spam.GET("/history/:id", spamHandler.getAnalysis)
			spam.DELETE("/history/:id", spamHandler.deleteAnalysis)
			spam.DELETE("/history", spamHandler.clearHistory)
			spam.GET("/stats", spamHandler.stats)
		}
	}

	return &Server{
		listenAddress: listenAddress,
		engine:        engine,
		logger:        logger,
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start begins serving in the background.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              s.listenAddress,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		s.logger.Info("HTTP server listening", zap.String("address", s.listenAddress))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
