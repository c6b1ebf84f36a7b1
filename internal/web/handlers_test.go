package web_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"luckydraw/internal/draw/engine"
	"luckydraw/internal/draw/rng"
	"luckydraw/internal/draw/roster"
	"luckydraw/internal/web"
)

// fastSettings keeps wall-clock reveals in the tens of milliseconds so
// handler tests can wait them out with require.Eventually.
func fastSettings() engine.Settings {
	return engine.Settings{
		DigitCount:     2,
		MinValue:       0,
		MaxValue:       98,
		TickInterval:   5 * time.Millisecond,
		GeneratingTime: 20 * time.Millisecond,
		DigitStopDelay: 5 * time.Millisecond,
		SettleDelay:    5 * time.Millisecond,
	}
}

func newTestRouter(t *testing.T, cfg engine.Settings) (*gin.Engine, *engine.Session) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sess, err := engine.NewSession(cfg, rng.NewCryptoSource(), engine.NewWallClock(), zap.NewNop())
	require.NoError(t, err)

	router := gin.New()
	web.NewHandler(sess, zap.NewNop()).RegisterRoutes(router)
	return router, sess
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func waitIdle(t *testing.T, sess *engine.Session) {
	t.Helper()
	require.Eventually(t, func() bool {
		return sess.State() == engine.StateIdle
	}, 2*time.Second, 5*time.Millisecond)
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, fastSettings())
	rec, body := doJSON(t, router, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestGetState(t *testing.T) {
	router, _ := newTestRouter(t, fastSettings())
	rec, body := doJSON(t, router, "GET", "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", body["state"])
	assert.Equal(t, "range", body["mode"])
}

func TestRequestDraw_AcceptedThenConflict(t *testing.T) {
	cfg := fastSettings()
	cfg.GeneratingTime = 200 * time.Millisecond
	router, sess := newTestRouter(t, cfg)

	rec, body := doJSON(t, router, "POST", "/api/draw", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "accepted", body["status"])

	rec, body = doJSON(t, router, "POST", "/api/draw", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_running", body["error"])

	waitIdle(t, sess)
}

func TestRequestDraw_Exhausted(t *testing.T) {
	cfg := fastSettings()
	cfg.DigitCount = 1
	cfg.MinValue = 0
	cfg.MaxValue = 0
	router, sess := newTestRouter(t, cfg)

	rec, _ := doJSON(t, router, "POST", "/api/draw", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	waitIdle(t, sess)
	require.Len(t, sess.Winners(), 1)

	rec, body := doJSON(t, router, "POST", "/api/draw", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "exhausted", body["error"])
}

func TestReset(t *testing.T) {
	cfg := fastSettings()
	cfg.GeneratingTime = time.Second
	router, sess := newTestRouter(t, cfg)

	_, _ = doJSON(t, router, "POST", "/api/draw", nil)
	require.Equal(t, engine.StateRevealing, sess.State())

	rec, _ := doJSON(t, router, "POST", "/api/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, engine.StateIdle, sess.State())
	assert.Empty(t, sess.Winners())
}

func TestWinners_ListAndClear(t *testing.T) {
	router, sess := newTestRouter(t, fastSettings())

	_, body := doJSON(t, router, "GET", "/api/winners", nil)
	assert.Empty(t, body["winners"])

	_, _ = doJSON(t, router, "POST", "/api/draw", nil)
	waitIdle(t, sess)

	_, body = doJSON(t, router, "GET", "/api/winners", nil)
	winners, ok := body["winners"].([]any)
	require.True(t, ok)
	require.Len(t, winners, 1)
	first := winners[0].(map[string]any)
	assert.Equal(t, engine.DefaultOwnerName, first["owner"])
	assert.Len(t, first["value"], 2)

	rec, _ := doJSON(t, router, "DELETE", "/api/winners", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, body = doJSON(t, router, "GET", "/api/winners", nil)
	assert.Empty(t, body["winners"])
}

func TestWinnersExportCSV(t *testing.T) {
	router, sess := newTestRouter(t, fastSettings())
	sess.ReplaceRoster([]roster.Entry{{Number: 7, Owner: "Ada"}})

	_, _ = doJSON(t, router, "POST", "/api/draw", nil)
	waitIdle(t, sess)

	req := httptest.NewRequest("GET", "/api/winners/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xef\xbb\xbf"), "export should start with a UTF-8 BOM")
	assert.Contains(t, body, "value,owner,completed_at")
	assert.Contains(t, body, "07,Ada")
}

func TestSettings_GetAndUpdate(t *testing.T) {
	router, sess := newTestRouter(t, fastSettings())

	_, body := doJSON(t, router, "GET", "/api/settings", nil)
	assert.EqualValues(t, 2, body["digit_count"])
	assert.EqualValues(t, 98, body["max_value"])

	rec, body := doJSON(t, router, "PUT", "/api/settings", map[string]any{
		"digit_count":         3,
		"min_value":           0,
		"max_value":           500,
		"tick_interval_ms":    40,
		"generating_time_ms":  1000,
		"digit_stop_delay_ms": 250,
		"settle_delay_ms":     200,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, body["digit_count"])
	assert.Equal(t, 3, sess.Settings().DigitCount)
	assert.Equal(t, 250*time.Millisecond, sess.Settings().DigitStopDelay)
}

func TestSettings_UpdateRejectsInvalid(t *testing.T) {
	router, sess := newTestRouter(t, fastSettings())

	rec, body := doJSON(t, router, "PUT", "/api/settings", map[string]any{
		"digit_count":      0,
		"tick_interval_ms": 40,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_settings", body["error"])
	assert.Equal(t, fastSettings(), sess.Settings())

	rec, body = doJSON(t, router, "PUT", "/api/settings", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_body", body["error"])
}

func uploadRoster(t *testing.T, router *gin.Engine, csv string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("roster", "roster.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/roster", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func TestRosterUpload(t *testing.T) {
	router, sess := newTestRouter(t, fastSettings())

	rec, body := uploadRoster(t, router, "number,user\n7,Ada\nnot-a-number,Brin\n13,Cyn\n")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["entries"])
	warnings, ok := body["warnings"].([]any)
	require.True(t, ok)
	assert.Len(t, warnings, 1)

	snap := sess.Snapshot()
	assert.Equal(t, 2, snap.RosterSize)
	assert.Equal(t, engine.ModeRoster, snap.Mode)

	_, body = doJSON(t, router, "GET", "/api/roster", nil)
	assert.EqualValues(t, 2, body["size"])
	assert.EqualValues(t, 2, body["remaining"])
	assert.Equal(t, "roster", body["mode"])
}

func TestRosterUpload_MissingFile(t *testing.T) {
	router, _ := newTestRouter(t, fastSettings())
	rec, body := doJSON(t, router, "POST", "/api/roster", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_file", body["error"])
}

func TestRosterClear(t *testing.T) {
	router, sess := newTestRouter(t, fastSettings())
	_, _ = uploadRoster(t, router, "7,Ada\n")
	require.Equal(t, 1, sess.Snapshot().RosterSize)

	rec, _ := doJSON(t, router, "DELETE", "/api/roster", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := sess.Snapshot()
	assert.Equal(t, 0, snap.RosterSize)
	assert.Equal(t, engine.ModeRange, snap.Mode)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, fastSettings())
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "luckydraw_")
}
