package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tileforge/rasterpq/internal/server"
	"github.com/tileforge/rasterpq/internal/tilestore"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := tilestore.Open(filepath.Join(t.TempDir(), "tiles"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	reg := prometheus.NewRegistry()
	m := server.NewMetrics(reg)
	return server.NewRouter(m, store)
}

func TestHealthzReportsOK(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestBuildTopPopRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	buildBody, err := json.Marshal(map[string]any{
		"grid_width":  4,
		"grid_height": 4,
		"pairs":       2,
		"tile_size":   16.0,
		"policy":      "smoothness",
	})
	require.NoError(t, err)

	buildReq := httptest.NewRequest(http.MethodPost, "/api/queue/build", bytes.NewReader(buildBody))
	buildReq.Header.Set("Content-Type", "application/json")
	buildRec := httptest.NewRecorder()
	r.ServeHTTP(buildRec, buildReq)
	require.Equal(t, http.StatusOK, buildRec.Code)

	topReq := httptest.NewRequest(http.MethodGet, "/api/queue/top", nil)
	topRec := httptest.NewRecorder()
	r.ServeHTTP(topRec, topReq)
	require.Equal(t, http.StatusOK, topRec.Code)

	popReq := httptest.NewRequest(http.MethodPost, "/api/queue/pop", nil)
	popRec := httptest.NewRecorder()
	r.ServeHTTP(popRec, popReq)
	assert.Equal(t, http.StatusOK, popRec.Code)
}

func TestPopPersistsAndResultReadsItBack(t *testing.T) {
	r := newTestRouter(t)

	buildBody, err := json.Marshal(map[string]any{
		"grid_width":  4,
		"grid_height": 4,
		"pairs":       1,
		"tile_size":   16.0,
		"policy":      "smoothness",
	})
	require.NoError(t, err)

	buildReq := httptest.NewRequest(http.MethodPost, "/api/queue/build", bytes.NewReader(buildBody))
	buildReq.Header.Set("Content-Type", "application/json")
	buildRec := httptest.NewRecorder()
	r.ServeHTTP(buildRec, buildReq)
	require.Equal(t, http.StatusOK, buildRec.Code)

	popReq := httptest.NewRequest(http.MethodPost, "/api/queue/pop", nil)
	popRec := httptest.NewRecorder()
	r.ServeHTTP(popRec, popReq)
	require.Equal(t, http.StatusOK, popRec.Code)

	var popped struct {
		LayerID uint64 `json:"layer_id"`
		I       int32  `json:"i"`
		J       int32  `json:"j"`
		Bytes   int    `json:"bytes"`
	}
	require.NoError(t, json.Unmarshal(popRec.Body.Bytes(), &popped))
	assert.Equal(t, 16*16*4, popped.Bytes)

	resultURL := fmt.Sprintf("/api/queue/result?layer_id=%d&i=%d&j=%d", popped.LayerID, popped.I, popped.J)
	resultReq := httptest.NewRequest(http.MethodGet, resultURL, nil)
	resultRec := httptest.NewRecorder()
	r.ServeHTTP(resultRec, resultReq)
	require.Equal(t, http.StatusOK, resultRec.Code)

	var result struct {
		Bytes int `json:"bytes"`
	}
	require.NoError(t, json.Unmarshal(resultRec.Body.Bytes(), &result))
	assert.Equal(t, popped.Bytes, result.Bytes)
}

func TestResultReportsNotFoundForUnpaintedTile(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/queue/result?layer_id=1&i=0&j=0", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildRejectsUnknownPolicy(t *testing.T) {
	r := newTestRouter(t)

	body, err := json.Marshal(map[string]any{
		"grid_width":  4,
		"grid_height": 4,
		"pairs":       1,
		"tile_size":   16.0,
		"policy":      "bogus",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/queue/build", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopOnEmptyQueueReportsNotFound(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/queue/top", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSnapshotReturnsCompressedPayload(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/queue/snapshot", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Compressed []byte `json:"compressed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	decoded, err := tilestore.Decompress(envelope.Compressed)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(decoded))
}
