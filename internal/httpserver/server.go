package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/graphchat/server/internal/chatbot/model"
	"github.com/graphchat/server/internal/core"
	"github.com/graphchat/server/internal/httpserver/middlewares"
	logx "github.com/graphchat/server/pkg/logger"
	"github.com/graphchat/server/web"
)

// ChatService is what the HTTP layer needs from the chatbot core.
type ChatService interface {
	StartSession(ctx context.Context, sessionID string) string
	Chat(ctx context.Context, sessionID, message string) (string, error)
	HealthCheck(ctx context.Context) model.HealthStatus
}

// Config carries the HTTP-facing subset of application configuration.
type Config struct {
	Port        string
	Environment core.Environment
}

// Server wraps the gin engine with graceful shutdown helpers.
type Server struct {
	cfg    Config
	engine *gin.Engine
	chat   ChatService
}

// New constructs the HTTP server with default middleware and routes.
func New(cfg Config, chat ChatService) *Server {
	if cfg.Environment == core.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middlewares.RequestLogger(), middlewares.CORS())

	s := &Server{
		cfg:    cfg,
		engine: engine,
		chat:   chat,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.POST("/chat", s.handleChat)
	api.GET("/health", s.handleHealth)
}

// Handler exposes the engine for tests via httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logx.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *Server) handleIndex(c *gin.Context) {
	page, err := web.IndexHTML()
	if err != nil {
		logx.Error().Err(err).Msg("failed to load chat page")
		c.String(http.StatusInternalServerError, "chat page unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
