package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-planner/config"
	"grid-planner/grid"
	"grid-planner/planner"
)

type testServer struct {
	engine *planner.Engine
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Bounds = config.Bounds{Max: [3]float64{10, 10, 1}}
	cfg.Terrain.Kind = "flat"
	cfg.ObstacleInfluence = 0
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	engine, store, err := buildEngine(ctx, cfg, logger)
	require.NoError(t, err)

	changes, unsubscribe := store.Subscribe(8)
	go func() { _ = engine.WatchObstacles(ctx, changes) }()
	t.Cleanup(func() {
		cancel()
		unsubscribe()
		_ = engine.Close()
	})

	return &testServer{engine: engine, router: NewController(engine, store, logger).Router()}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

const diagonal = `{"start":{"x":0.5,"y":0.5},"end":{"x":9.5,"y":9.5}}`

func TestRoute_Sync(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/route", diagonal)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "succeeded", body["state"])
	assert.Equal(t, float64(10), body["cells"])
	assert.Len(t, body["path"], 2)

	code, body = s.do(t, http.MethodPost, "/route", `{"start":{"x":-80,"y":0},"end":{"x":9.5,"y":9.5}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "failed", body["state"])
	assert.Contains(t, body["message"], "out of bounds")

	code, body = s.do(t, http.MethodPost, "/route", `{"start":{"x":1,"y":1},"end":{"x":2,"y":2},"agentRadius":100}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "failed", body["state"])
	assert.Contains(t, body["message"], "no path")

	code, body = s.do(t, http.MethodPost, "/route", `{"start":{"x":0.5,"y":0.5},"end":{"x":9.5,"y":9.5},"heuristic":"none"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(10), body["cells"])
}

func TestRoute_BadRequests(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/route", `{"start":`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/route", `{"start":{"x":1,"y":1},"end":{"x":2,"y":2},"maxExpansions":-1}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/route", `{"start":{"x":1,"y":1},"end":{"x":2,"y":2},"heuristic":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/route/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodDelete, "/route/999", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRoute_Async(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/route/async", diagonal)
	require.Equal(t, http.StatusAccepted, code)
	id := uint64(body["id"].(float64))
	path := fmt.Sprintf("/route/%d", id)

	var final map[string]any
	require.Eventually(t, func() bool {
		code, body := s.do(t, http.MethodGet, path, "")
		if code != http.StatusOK || body["state"] != "succeeded" {
			return false
		}
		final = body
		return true
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, true, final["success"])

	code, _ = s.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, code, "delivered results are collected once")
}

func TestInvalidate(t *testing.T) {
	s := newTestServer(t)
	before := s.engine.Version()

	code, body := s.do(t, http.MethodPost, "/invalidate", `{"min":{"x":2,"y":2,"z":0},"max":{"x":4,"y":4,"z":1}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(before+1), body["version"])
	assert.Equal(t, false, body["partial"])

	code, _ = s.do(t, http.MethodPost, "/invalidate", `{"min":{"x":50,"y":50},"max":{"x":60,"y":60,"z":1}}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestObstacles_AddAndRemove(t *testing.T) {
	s := newTestServer(t)
	fc := `{"type":"FeatureCollection","features":[{"type":"Feature",
		"properties":{"id":"crate","kind":"dynamic"},
		"geometry":{"type":"Polygon","coordinates":[[[4.1,4.1],[5.9,4.1],[5.9,5.9],[4.1,5.9],[4.1,4.1]]]}}]}`

	code, body := s.do(t, http.MethodPost, "/obstacles", fc)
	require.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, []any{"crate"}, body["added"])

	occupied := func() bool {
		cell, _ := s.engine.Snapshot().CellAt(grid.Coord{X: 5, Y: 5})
		return cell.Occupancy != 0
	}
	require.Eventually(t, occupied, 2*time.Second, 5*time.Millisecond)

	code, body = s.do(t, http.MethodPost, "/route", diagonal)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Greater(t, body["cost"].(float64), 9*1.4142135)

	code, _ = s.do(t, http.MethodDelete, "/obstacles/crate", "")
	assert.Equal(t, http.StatusAccepted, code)
	require.Eventually(t, func() bool { return !occupied() }, 2*time.Second, 5*time.Millisecond)

	code, _ = s.do(t, http.MethodDelete, "/obstacles/crate", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPost, "/obstacles", `{"type":"nope"`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthMetricsAndCORS(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, float64(8), body["connectivity"])

	req := httptest.NewRequest(http.MethodOptions, "/route", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.Contains(w.Body.Bytes(), []byte("gridplanner_cost_field_version")))
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("1.5, 2")
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1.5, 2, 0}, p)

	p, err = parsePoint("1,2,3")
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, p)

	for _, bad := range []string{"", "1", "1,2,3,4", "a,b"} {
		_, err := parsePoint(bad)
		assert.Error(t, err, bad)
	}
}
