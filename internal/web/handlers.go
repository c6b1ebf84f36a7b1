// Package web exposes the draw session over HTTP: JSON operations for the
// operator panel, a server-sent-event stream for the display layer, and
// the health and metrics endpoints.
package web

import (
	"encoding/csv"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"luckydraw/internal/draw/engine"
	"luckydraw/internal/draw/roster"
	"luckydraw/internal/observability"
)

// utf8BOM makes exported CSV open cleanly in spreadsheet applications.
const utf8BOM = "\xef\xbb\xbf"

// Handler holds the dependencies for the HTTP handlers.
type Handler struct {
	session *engine.Session
	logger  *zap.Logger
}

// NewHandler creates a Handler over the given session.
//
// Precondition: session and logger are non-nil.
func NewHandler(session *engine.Session, logger *zap.Logger) *Handler {
	return &Handler{session: session, logger: logger}
}

// RegisterRoutes registers all application routes.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	api := router.Group("/api")
	api.GET("/state", h.GetState)
	api.POST("/draw", h.RequestDraw)
	api.POST("/reset", h.Reset)
	api.GET("/winners", h.GetWinners)
	api.DELETE("/winners", h.ClearWinners)
	api.GET("/winners/export", h.ExportWinnersCSV)
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings)
	api.GET("/roster", h.GetRoster)
	api.POST("/roster", h.UploadRoster)
	api.DELETE("/roster", h.ClearRoster)
	api.GET("/events", h.StreamEvents)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetState returns a consistent snapshot of the session.
func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// RequestDraw starts a draw. It answers 202 when the reveal is running,
// or 409 with a machine-readable code when the session is busy or no
// eligible value remains.
func (h *Handler) RequestDraw(c *gin.Context) {
	err := h.session.RequestDraw()
	switch {
	case err == nil:
		observability.CountDrawRequest("accepted")
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
	case errors.Is(err, engine.ErrAlreadyRunning):
		observability.CountDrawRequest("already_running")
		c.JSON(http.StatusConflict, gin.H{"error": "already_running", "message": err.Error()})
	case errors.Is(err, engine.ErrExhausted):
		observability.CountDrawRequest("exhausted")
		c.JSON(http.StatusConflict, gin.H{"error": "exhausted", "message": err.Error()})
	default:
		h.logger.Error("draw request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": err.Error()})
	}
}

// Reset restores the session to its initial state, cancelling any
// in-flight reveal without recording it.
func (h *Handler) Reset(c *gin.Context) {
	h.session.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// GetWinners returns the winners log, newest first.
func (h *Handler) GetWinners(c *gin.Context) {
	winners := h.session.Winners()
	if winners == nil {
		winners = []engine.Winner{}
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}

// ClearWinners empties the winners log. Drawn values stay excluded.
func (h *Handler) ClearWinners(c *gin.Context) {
	h.session.ClearHistory()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// ExportWinnersCSV downloads the winners log as a CSV file.
func (h *Handler) ExportWinnersCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=winners.csv")

	// BOM keeps Excel from misreading UTF-8 owner names.
	c.Writer.Write([]byte(utf8BOM))

	w := csv.NewWriter(c.Writer)
	if err := w.Write([]string{"value", "owner", "completed_at"}); err != nil {
		h.logger.Error("writing csv header", zap.Error(err))
		return
	}
	for _, winner := range h.session.Winners() {
		row := []string{winner.Value, winner.Owner, winner.CompletedAt.Format(time.RFC3339)}
		if err := w.Write(row); err != nil {
			h.logger.Error("writing csv row", zap.Error(err))
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.logger.Error("flushing csv writer", zap.Error(err))
	}
}

// settingsPayload is the wire form of engine.Settings. Durations travel
// as integer milliseconds.
type settingsPayload struct {
	DigitCount       int `json:"digit_count"`
	MinValue         int `json:"min_value"`
	MaxValue         int `json:"max_value"`
	TickIntervalMs   int `json:"tick_interval_ms"`
	GeneratingTimeMs int `json:"generating_time_ms"`
	DigitStopDelayMs int `json:"digit_stop_delay_ms"`
	SettleDelayMs    int `json:"settle_delay_ms"`
}

func toPayload(s engine.Settings) settingsPayload {
	return settingsPayload{
		DigitCount:       s.DigitCount,
		MinValue:         s.MinValue,
		MaxValue:         s.MaxValue,
		TickIntervalMs:   int(s.TickInterval / time.Millisecond),
		GeneratingTimeMs: int(s.GeneratingTime / time.Millisecond),
		DigitStopDelayMs: int(s.DigitStopDelay / time.Millisecond),
		SettleDelayMs:    int(s.SettleDelay / time.Millisecond),
	}
}

func (p settingsPayload) toSettings() engine.Settings {
	return engine.Settings{
		DigitCount:     p.DigitCount,
		MinValue:       p.MinValue,
		MaxValue:       p.MaxValue,
		TickInterval:   time.Duration(p.TickIntervalMs) * time.Millisecond,
		GeneratingTime: time.Duration(p.GeneratingTimeMs) * time.Millisecond,
		DigitStopDelay: time.Duration(p.DigitStopDelayMs) * time.Millisecond,
		SettleDelay:    time.Duration(p.SettleDelayMs) * time.Millisecond,
	}
}

// GetSettings returns the settings the next draw will use.
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, toPayload(h.session.Settings()))
}

// UpdateSettings validates and replaces the draw settings. A reveal in
// flight keeps the settings it started with.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var payload settingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": err.Error()})
		return
	}
	if err := h.session.UpdateSettings(payload.toSettings()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_settings", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toPayload(h.session.Settings()))
}

// GetRoster returns the roster summary.
func (h *Handler) GetRoster(c *gin.Context) {
	snap := h.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"size":      snap.RosterSize,
		"remaining": snap.RosterRemaining,
		"mode":      snap.Mode,
	})
}

// UploadRoster wholesale-replaces the roster from a multipart CSV upload.
// Malformed rows are skipped; the response carries the per-row warnings
// so the operator can fix the file before the event.
func (h *Handler) UploadRoster(c *gin.Context) {
	file, _, err := c.Request.FormFile("roster")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_file", "message": err.Error()})
		return
	}
	defer file.Close()

	entries, parseWarnings, err := roster.ParseCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_csv", "message": err.Error()})
		return
	}

	warnings := append(parseWarnings, h.session.ReplaceRoster(entries)...)
	if warnings == nil {
		warnings = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":  len(entries),
		"warnings": warnings,
	})
}

// ClearRoster drops the roster, forcing range mode.
func (h *Handler) ClearRoster(c *gin.Context) {
	h.session.ClearRoster()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
