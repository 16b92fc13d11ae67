package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grid-planner/obstacle"
	"grid-planner/planner"
	"grid-planner/search"
	"grid-planner/spatial"
)

// Point is a world position on the wire
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Point) vec() mgl64.Vec3 { return mgl64.Vec3{p.X, p.Y, p.Z} }

func pointOf(v mgl64.Vec3) Point { return Point{X: v[0], Y: v[1], Z: v[2]} }

type RouteRequest struct {
	Start         Point            `json:"start"`
	End           Point            `json:"end"`
	AgentRadius   float64          `json:"agentRadius,omitempty"`
	Weights       *planner.Weights `json:"weights,omitempty"`
	Heuristic     search.Heuristic `json:"heuristic,omitempty"`
	Priority      int              `json:"priority,omitempty"`
	MaxExpansions int              `json:"maxExpansions,omitempty"`
	TimeoutMs     int64            `json:"timeoutMs,omitempty"`
	Version       uint64           `json:"version,omitempty"`
}

func (r RouteRequest) request() planner.Request {
	return planner.Request{
		Start:         r.Start.vec(),
		Goal:          r.End.vec(),
		AgentRadius:   r.AgentRadius,
		Weights:       r.Weights,
		Heuristic:     r.Heuristic,
		Priority:      r.Priority,
		MaxExpansions: r.MaxExpansions,
		Timeout:       time.Duration(r.TimeoutMs) * time.Millisecond,
		Version:       r.Version,
	}
}

type RouteResponse struct {
	ID         uint64  `json:"id"`
	State      string  `json:"state"`
	Success    bool    `json:"success"`
	Message    string  `json:"message,omitempty"`
	Path       []Point `json:"path,omitempty"`
	Cells      int     `json:"cells,omitempty"`
	Cost       float64 `json:"cost,omitempty"`
	Expansions int     `json:"expansions"`
	Version    uint64  `json:"version"`
	ElapsedMs  float64 `json:"elapsedMs"`
}

func routeResponse(res planner.Result) RouteResponse {
	rsp := RouteResponse{
		ID:         res.ID,
		State:      res.State.String(),
		Success:    res.Err == nil,
		Cells:      len(res.Cells),
		Cost:       res.Cost,
		Expansions: res.Expansions,
		Version:    res.Version,
		ElapsedMs:  float64(res.Elapsed.Microseconds()) / 1000,
	}
	if res.Err != nil {
		rsp.Message = res.Err.Error()
	}
	for _, w := range res.Waypoints {
		rsp.Path = append(rsp.Path, pointOf(w))
	}
	return rsp
}

type BoxRequest struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Controller serves the engine over HTTP
type Controller struct {
	engine *planner.Engine
	store  *obstacle.Store
	logger *slog.Logger
}

func NewController(engine *planner.Engine, store *obstacle.Store, logger *slog.Logger) *Controller {
	return &Controller{engine: engine, store: store, logger: logger}
}

// Router registers every route on a new gin engine
func (c *Controller) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), c.accessLog(), cors())

	r.POST("/route", c.route)
	r.POST("/route/async", c.routeAsync)
	r.GET("/route/:id", c.routeStatus)
	r.DELETE("/route/:id", c.routeCancel)
	r.POST("/invalidate", c.invalidate)
	r.POST("/obstacles", c.addObstacles)
	r.DELETE("/obstacles/:id", c.removeObstacle)
	r.GET("/health", c.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// cors allows browser frontends on any origin
func cors() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "POST, GET, DELETE, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusOK)
			return
		}
		ctx.Next()
	}
}

func (c *Controller) accessLog() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		c.logger.Debug("http_request",
			slog.String("method", ctx.Request.Method),
			slog.String("path", ctx.FullPath()),
			slog.Int("status", ctx.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// submitStatus maps errors returned before a request is queued
func submitStatus(err error) int {
	switch {
	case errors.Is(err, planner.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, planner.ErrQueueFull), errors.Is(err, planner.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (c *Controller) route(ctx *gin.Context) {
	var req RouteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	h, err := c.engine.RequestPath(ctx.Request.Context(), req.request())
	if err != nil {
		ctx.JSON(submitStatus(err), gin.H{"error": err.Error()})
		return
	}
	defer c.engine.Release(h)

	res, err := h.Wait(ctx.Request.Context())
	if err != nil && !res.State.Terminal() {
		// client went away
		return
	}
	ctx.JSON(http.StatusOK, routeResponse(res))
}

func (c *Controller) routeAsync(ctx *gin.Context) {
	var req RouteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	// The search outlives this HTTP request.
	h, err := c.engine.RequestPath(context.WithoutCancel(ctx.Request.Context()), req.request())
	if err != nil {
		ctx.JSON(submitStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusAccepted, gin.H{"id": h.ID(), "state": h.State().String()})
}

func (c *Controller) lookup(ctx *gin.Context) (*planner.Handle, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	h, ok := c.engine.Lookup(id)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown or already collected request"})
		return nil, false
	}
	return h, true
}

// routeStatus reports progress; a delivered result is returned once and
// then forgotten
func (c *Controller) routeStatus(ctx *gin.Context) {
	h, ok := c.lookup(ctx)
	if !ok {
		return
	}
	res, done := h.Poll()
	if !done {
		ctx.JSON(http.StatusOK, gin.H{"id": h.ID(), "state": h.State().String()})
		return
	}
	c.engine.Release(h)
	ctx.JSON(http.StatusOK, routeResponse(res))
}

func (c *Controller) routeCancel(ctx *gin.Context) {
	h, ok := c.lookup(ctx)
	if !ok {
		return
	}
	c.engine.Cancel(h)
	ctx.JSON(http.StatusOK, gin.H{"id": h.ID(), "state": h.State().String()})
}

func (c *Controller) invalidate(ctx *gin.Context) {
	var req BoxRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	report, err := c.engine.InvalidateRegion(ctx.Request.Context(), spatial.Box{Min: req.Min.vec(), Max: req.Max.vec()})
	switch {
	case errors.Is(err, planner.ErrOutOfBounds):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, planner.ErrClosed):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rsp := gin.H{
		"version": report.Version,
		"region":  report.Region.String(),
		"cells":   report.Cells,
		"blocked": report.Blocked,
		"partial": report.Partial,
	}
	if perr := report.Err(); perr != nil {
		rsp["warning"] = perr.Error()
	}
	ctx.JSON(http.StatusOK, rsp)
}

// addObstacles accepts a GeoJSON FeatureCollection. The store notifies the
// obstacle watcher, which invalidates the affected regions.
func (c *Controller) addObstacles(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	obstacles, err := obstacle.ParseGeoJSON("api", body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.store.Add(obstacles...); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids := make([]string, len(obstacles))
	for i, o := range obstacles {
		ids[i] = o.ID
	}
	ctx.JSON(http.StatusAccepted, gin.H{"added": ids, "total": c.store.Len()})
}

func (c *Controller) removeObstacle(ctx *gin.Context) {
	err := c.store.Remove(ctx.Param("id"))
	if errors.Is(err, obstacle.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusAccepted, gin.H{"removed": ctx.Param("id"), "total": c.store.Len()})
}

func (c *Controller) health(ctx *gin.Context) {
	idx := c.engine.Index()
	ctx.JSON(http.StatusOK, gin.H{
		"status":       "ready",
		"version":      c.engine.Version(),
		"retained":     c.engine.RetainedVersions(),
		"dims":         idx.Dims(),
		"cellSize":     idx.CellSize(),
		"connectivity": int(c.engine.Connectivity()),
		"obstacles":    c.store.Len(),
	})
}
