package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/internal/utils"
	"github.com/danodev/daworks/pkg/logger"
	"github.com/danodev/daworks/pkg/response"
)

// Idle proxies drop quiet connections, a comment line every so often
// keeps the stream open.
const sseHeartbeat = 30 * time.Second

// SSEHandler owns the event stream endpoint.
type SSEHandler struct {
	hub *services.SSEHub
}

func NewSSEHandler(hub *services.SSEHub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// sseToken pulls the JWT from the query string or the Authorization
// header. EventSource cannot set headers, so browsers send ?token=.
func sseToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// StreamEvents serves one SSE stream carrying notification, board and
// import-progress events. The hub filters user-addressed events server
// side, a client never sees another user's traffic. CORS headers come
// from the global middleware.
func (h *SSEHandler) StreamEvents(c *gin.Context) {
	token := sseToken(c)
	if token == "" {
		response.Unauthorized(c, "missing token")
		return
	}

	claims, err := utils.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	// Nginx buffers responses by default, which would hold events back.
	c.Header("X-Accel-Buffering", "no")

	clientID := uuid.New().String()
	events := h.hub.Subscribe(clientID, claims.UserID)
	defer h.hub.Unsubscribe(clientID)

	logger.Info().Str("client_id", clientID).Uint("user_id", claims.UserID).Int("total", h.hub.ClientCount()).Msg("SSE client connected")

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			data, err := json.Marshal(event)
			if err != nil {
				logger.Error().Err(err).Msg("SSE marshal error")
				return true
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			c.Writer.Flush()
			return true
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			c.Writer.Flush()
			return true
		case <-c.Request.Context().Done():
			logger.Info().Str("client_id", clientID).Msg("SSE client disconnected")
			return false
		}
	})
}
