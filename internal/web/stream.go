package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"luckydraw/internal/draw/engine"
	"luckydraw/internal/observability"
)

// streamBuffer is the per-subscriber event buffer. The engine drops
// events for a subscriber whose buffer is full, so this needs headroom
// for one full reveal's worth of spin frames.
const streamBuffer = 256

// streamHeartbeat keeps idle SSE connections from being reaped by
// intermediaries.
const streamHeartbeat = 15 * time.Second

// StreamEvents relays the session's event feed as server-sent events.
// The first frame is a snapshot so a display joining mid-reveal can
// paint the current board before live events arrive.
func (h *Handler) StreamEvents(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming_unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := make(chan engine.Event, streamBuffer)
	unsubscribe := h.session.Subscribe(ch)
	defer unsubscribe()

	observability.TrackSubscriber(1)
	defer observability.TrackSubscriber(-1)
	h.logger.Debug("event stream subscriber connected", zap.String("remote", c.ClientIP()))

	if err := writeSSE(c.Writer, "snapshot", h.session.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("event stream subscriber disconnected", zap.String("remote", c.ClientIP()))
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(c.Writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case evt := <-ch:
			if err := writeSSE(c.Writer, string(evt.Type), evt); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeSSE emits one named server-sent event with a JSON payload.
func writeSSE(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
