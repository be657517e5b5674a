// Package httpapi exposes the dialogue engine over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cso-health-insurance/server/internal/agent/composer"
	"github.com/cso-health-insurance/server/internal/agent/engine"
	"github.com/cso-health-insurance/server/internal/agent/model"
	errx "github.com/cso-health-insurance/server/internal/core/error"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

const maxMessageLen = 2000

// Conversation is the engine surface the handlers need.
type Conversation interface {
	Turn(ctx context.Context, sessionID, utterance string) (*engine.Reply, error)
	Memory(ctx context.Context, sessionID string) (*model.SessionMemory, error)
	History(ctx context.Context, sessionID string) ([]*schema.Message, error)
	EndSession(ctx context.Context, sessionID string) error
}

type messageRequest struct {
	Message string `json:"message" binding:"required"`
}

type historyResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []*schema.Message `json:"messages"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Answer string `json:"answer,omitempty"`
}

type Handler struct {
	conv Conversation
}

func NewHandler(conv Conversation) *Handler {
	return &Handler{conv: conv}
}

// NewRouter wires all routes onto a fresh gin engine.
func NewRouter(conv Conversation) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	h := NewHandler(conv)
	r.GET("/healthz", h.Health)
	v1 := r.Group("/v1/sessions")
	{
		v1.POST("", h.CreateSession)
		v1.POST("/:id/messages", h.PostMessage)
		v1.GET("/:id", h.GetSession)
		v1.GET("/:id/history", h.GetHistory)
		v1.DELETE("/:id", h.DeleteSession)
	}
	return r
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateSession hands out a fresh session id; memory is created on the first turn.
func (h *Handler) CreateSession(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"session_id": uuid.NewString()})
}

func (h *Handler) PostMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" || len([]rune(msg)) > maxMessageLen {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "message must be 1-2000 characters"})
		return
	}

	reply, err := h.conv.Turn(c.Request.Context(), c.Param("id"), msg)
	if err != nil {
		writeError(c, err, composer.ApologyAnswer)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *Handler) GetSession(c *gin.Context) {
	mem, err := h.conv.Memory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, mem)
}

func (h *Handler) GetHistory(c *gin.Context) {
	id := c.Param("id")
	msgs, err := h.conv.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "")
		return
	}
	if msgs == nil {
		msgs = []*schema.Message{}
	}
	c.JSON(http.StatusOK, historyResponse{SessionID: id, Messages: msgs})
}

func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.conv.EndSession(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "")
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error, answer string) {
	status := errx.StatusOf(err)
	msg := errx.SystemErrorMessage
	var e *errx.Error
	if errors.As(err, &e) && e.Message != "" {
		msg = e.Message
	}
	logx.Error().Err(err).Int("status", status).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(status, errorResponse{Error: msg, Answer: answer})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logx.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}
