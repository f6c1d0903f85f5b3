// Package server exposes the analytics engine as a set of named read-only
// HTTP queries. It carries no authorization: the deployment's upstream layer
// owns "a user may only request analytics for themself".
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/flashlytics/internal/logger"
)

// Server wraps the gin engine and its http.Server.
type Server struct {
	log  *logger.Logger
	http *http.Server
}

// New builds the router and mounts the analytics handler under /api.
func New(log *logger.Logger, addr string, handler *AnalyticsHandler) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLog(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handler.Register(router.Group("/api"))

	return &Server{
		log: log.With("component", "server"),
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start blocks serving requests until Shutdown or a listener failure.
func (s *Server) Start() error {
	s.log.Info("listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
