package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graphchat/server/internal/metrics"
	logx "github.com/graphchat/server/pkg/logger"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Reply     string  `json:"reply"`
	SessionID string  `json:"session_id"`
	Latency   float64 `json:"latency"`
	Timestamp string  `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleChat runs one conversation turn. An omitted session_id starts a new
// session; clients echo the returned session_id to continue the conversation.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		metrics.ChatRequestsTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, errorResponse{Error: "message must not be empty"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.chat.StartSession(c.Request.Context(), "")
	}

	start := time.Now()
	reply, err := s.chat.Chat(c.Request.Context(), sessionID, req.Message)
	elapsed := time.Since(start)

	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		logx.Error().Err(err).Str("session_id", sessionID).Msg("chat turn failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to generate a response"})
		return
	}

	metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()
	metrics.ChatLatency.Observe(elapsed.Seconds())

	c.JSON(http.StatusOK, chatResponse{
		Reply:     reply,
		SessionID: sessionID,
		Latency:   elapsed.Seconds(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleHealth reports component status: 200 when healthy, 503 otherwise.
func (s *Server) handleHealth(c *gin.Context) {
	status := s.chat.HealthCheck(c.Request.Context())

	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
