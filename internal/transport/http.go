package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ticket-bot/internal/bot"
	"ticket-bot/internal/common/database"
	"ticket-bot/internal/common/logger"
)

// Submitter is the event loop as seen by a transport.
type Submitter interface {
	Submit(ctx context.Context, ev bot.Event) bot.Result
}

type messageRequest struct {
	UserID string `json:"userId" binding:"required"`
	Text   string `json:"text"`
}

type messageResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

const readyTimeout = 3 * time.Second

// HTTPServer exposes the bot over JSON, WebSocket and the health endpoints.
type HTTPServer struct {
	loop   Submitter
	deps   []database.Pinger
	logger logger.Logger
}

// NewHTTPServer serves chat traffic through loop. deps are checked by /ready.
func NewHTTPServer(loop Submitter, log logger.Logger, deps ...database.Pinger) *HTTPServer {
	return &HTTPServer{
		loop:   loop,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Routes builds the gin engine.
func (s *HTTPServer) Routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/health", s.handleHealth)
	router.GET("/ready", s.handleReady)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/messages", s.handleMessage)
		v1.GET("/chat", s.handleChat)
	}
	return router
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request served", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

func (s *HTTPServer) handleMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res := s.loop.Submit(c.Request.Context(), bot.Event{UserID: req.UserID, Text: req.Text})
	if !res.OK() {
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:     res.Err.Message,
			Code:      string(res.Err.Code),
			Retryable: res.Err.Retryable,
		})
		return
	}
	c.JSON(http.StatusOK, messageResponse{Text: res.Text})
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *HTTPServer) handleReady(c *gin.Context) {
	failed := database.CheckAll(c.Request.Context(), readyTimeout, s.deps...)
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}
