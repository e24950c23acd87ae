package chat

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inrooms-backend/sse"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/chat/start", h.Start)
	r.POST("/chat/message", h.Message)
	r.DELETE("/chat", h.Delete)
}

func (h *Handler) Start(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"thread_id": uuid.NewString()})
}

// Message answers a prompt on an existing thread. Clients that accept
// text/event-stream get token-by-token SSE; everyone else a JSON reply.
func (h *Handler) Message(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat is not configured"})
		return
	}
	var req struct {
		ThreadID string `json:"thread_id"`
		Prompt   string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt required"})
		return
	}
	if req.ThreadID == "" {
		req.ThreadID = uuid.NewString()
	}
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		stream, err := h.svc.StreamReply(c.Request.Context(), req.ThreadID, req.Prompt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		sse.Stream(c, stream)
		return
	}
	reply, err := h.svc.Reply(c.Request.Context(), req.ThreadID, req.Prompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"thread_id": req.ThreadID, "text": reply})
}

// Delete clears server-side history for a thread and returns 204.
func (h *Handler) Delete(c *gin.Context) {
	var req struct {
		ThreadID string `json:"thread_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ThreadID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thread_id required"})
		return
	}
	if f, ok := h.svc.(interface{ Forget(string) }); ok {
		f.Forget(req.ThreadID)
	}
	c.Status(http.StatusNoContent)
}
