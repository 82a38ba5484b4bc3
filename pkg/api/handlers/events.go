package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/urmzd/commissioner/pkg/device"
)

const (
	heartbeatInterval = 30 * time.Second
	wsWriteTimeout    = 10 * time.Second
)

// EventsHandler streams discovery, progress and scan error events
type EventsHandler struct {
	subscriber device.EventSubscriber
	upgrader   websocket.Upgrader
	logger     zerolog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(subscriber device.EventSubscriber, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		subscriber: subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Events handles GET /events (SSE stream)
// @Summary      Subscribe to events
// @Description  Server-Sent Events stream of device_discovered, progress and scan_error events. Only events published after subscribing are delivered.
// @Tags         events
// @Produce      text/event-stream
// @Success      200  {string}  string  "SSE event stream"
// @Router       /events [get]
func (h *EventsHandler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	eventChan := h.subscriber.Subscribe()
	defer h.subscriber.Unsubscribe(eventChan)

	sendSSEEvent(c.Writer, "connected", map[string]any{
		"timestamp": time.Now(),
		"message":   "Connected to event stream",
	})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return

		case event, ok := <-eventChan:
			if !ok {
				return
			}
			sendSSEEvent(c.Writer, string(event.Kind), event)
			c.Writer.Flush()

		case <-ticker.C:
			sendSSEEvent(c.Writer, "heartbeat", map[string]any{
				"timestamp": time.Now(),
			})
			c.Writer.Flush()
		}
	}
}

// WebSocket handles GET /events/ws
// @Summary      Subscribe to events over a websocket
// @Description  Same stream as /events, one JSON event per text message
// @Tags         events
// @Success      101  {string}  string  "Switching protocols"
// @Router       /events/ws [get]
func (h *EventsHandler) WebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("remote_addr", c.Request.RemoteAddr).Msg("Failed to upgrade to WebSocket")
		return
	}
	defer func() { _ = conn.Close() }()

	eventChan := h.subscriber.Subscribe()
	defer h.subscriber.Unsubscribe(eventChan)

	h.logger.Debug().Str("remote_addr", c.Request.RemoteAddr).Msg("WebSocket client connected")

	// Reads only detect the client going away.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return
		case <-c.Request.Context().Done():
			return

		case event, ok := <-eventChan:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug().Err(err).Msg("WebSocket write failed")
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendSSEEvent writes an SSE event to the response
func sendSSEEvent(w io.Writer, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: "+string(jsonData)+"\n\n")
}
