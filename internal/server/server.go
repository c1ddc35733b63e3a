package server

import (
	"ApiMonitor/internal/config"
	"ApiMonitor/internal/dependencies"
	"ApiMonitor/internal/server/handlers"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	router     *gin.Engine
	config     *config.ServerConfig
	container  *dependencies.Container
	handlers   *handlers.Handlers
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the read-only status API over the container's engine.
func New(cfg *config.ServerConfig, container *dependencies.Container) *Server {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := container.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server := &Server{
		router:    gin.New(),
		config:    cfg,
		container: container,
		handlers:  handlers.NewHandlers(container),
		logger:    logger.With("component", "server"),
	}

	server.setupMiddlewares()
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

func (s *Server) setupMiddlewares() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggerMiddleware())
	s.router.Use(s.requestIDMiddleware())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/ready", s.readyCheck)

	if s.container.Registry != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.container.Registry, promhttp.HandlerOpts{})))
	}

	api := s.router.Group("/api/v1")
	{
		api.GET("/summary", s.handlers.GetSummary)
		api.GET("/events", s.handlers.ListEvents)

		stats := api.Group("/stats")
		{
			stats.GET("", s.handlers.GetAllStats)
			stats.GET("/:id", s.handlers.GetStats)
		}

		endpoints := api.Group("/endpoints")
		{
			endpoints.GET("", s.handlers.ListEndpoints)
			endpoints.GET("/:id/history", s.handlers.GetHistory)
		}
	}

	s.router.NoRoute(s.notFoundHandler)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "apimonitor",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC(),
	})
}

// readyCheck fails only when an enabled journal database is unreachable.
func (s *Server) readyCheck(c *gin.Context) {
	database := "disabled"
	if s.container.DB != nil {
		if err := s.container.DB.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"error":  "Database not reachable",
			})
			return
		}
		database = "connected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"database":  database,
		"endpoints": len(s.container.Engine.Endpoints()),
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) notFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "not_found",
		"message": "Endpoint not found",
		"path":    c.Request.URL.Path,
	})
}

func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		statusCode := c.Writer.Status()
		if query != "" {
			path = path + "?" + query
		}

		level := slog.LevelDebug
		if statusCode >= 400 {
			level = slog.LevelWarn
		}
		if statusCode >= 500 {
			level = slog.LevelError
		}

		s.logger.Log(c.Request.Context(), level, "HTTP request",
			"status", statusCode,
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"latency", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		"mode", s.config.Mode,
		"address", s.httpServer.Addr,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown stops the server. A later Start returns immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
