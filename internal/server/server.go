// Package server exposes the capability table over HTTP.
//
//	GET  /healthz       data directory status and source count
//	GET  /tools         the tool list with parameter schemas
//	POST /tools/:name   call a tool; the body is its JSON argument object
//
// Tool responses are always the tool's JSON document. The status code
// follows the document's error code so plain HTTP clients can branch on it.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/shiptrace/internal/ir"
	"github.com/roach88/shiptrace/internal/tools"
)

// TraceHeader carries the investigation trace id on requests and responses.
const TraceHeader = "X-Trace-Id"

// Backend is what the server needs from the engine.
type Backend interface {
	tools.Backend
	CountSources() (int, error)
	NewTraceID() string
}

// Handler serves the HTTP API.
type Handler struct {
	Backend Backend
	Tools   *tools.Table
}

// NewHandler returns a Handler dispatching through a fresh tool table.
func NewHandler(b Backend) *Handler {
	return &Handler{Backend: b, Tools: tools.New(b)}
}

// NewRouter builds the gin engine for b.
func NewRouter(b Backend) *gin.Engine {
	h := NewHandler(b)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(h.trace)
	r.Use(requestLog)

	r.GET("/healthz", h.Health)
	r.GET("/tools", h.ListTools)
	r.POST("/tools/:name", h.CallTool)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "code": ir.ErrCodeInvalidArgument})
	})
	return r
}

// Health reports whether the data directory is readable.
func (h *Handler) Health(c *gin.Context) {
	dir := h.Backend.DataDir()
	n, err := h.Backend.CountSources()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":         "unavailable",
			"data_directory": dir,
			"error":          err.Error(),
			"code":           ir.CodeOf(err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"data_directory": dir,
		"sources":        n,
		"version":        ir.EngineVersion,
	})
}

// ListTools returns the capability table.
func (h *Handler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": ir.DocumentVersion,
		"tools":   h.Tools.List(),
	})
}

// CallTool runs one tool with the request body as arguments.
func (h *Handler) CallTool(c *gin.Context) {
	name := c.Param("name")
	if _, ok := h.Tools.Lookup(name); !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Unknown tool: " + name,
			"code":  ir.ErrCodeInvalidArgument,
		})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": ir.ErrCodeInvalidArgument})
		return
	}
	args := map[string]any{}
	if len(body) > 0 {
		if err := ir.DecodeJSON(body, &args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "arguments must be a JSON object: " + err.Error(),
				"code":  ir.ErrCodeInvalidArgument,
			})
			return
		}
	}

	res := h.Tools.Call(c.Request.Context(), name, args)
	c.JSON(statusFor(res), res.Document)
}

// statusFor maps a tool result to an HTTP status.
func statusFor(res tools.Result) int {
	if !res.IsError {
		return http.StatusOK
	}
	switch res.Code {
	case ir.ErrCodeInvalidArgument, ir.ErrCodeUnknownColumn:
		return http.StatusBadRequest
	case ir.ErrCodeDirectoryNotFound, ir.ErrCodeSourceNotFound, ir.ErrCodeUnitNotFound:
		return http.StatusNotFound
	case ir.ErrCodeParseFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// trace tags the request with a trace id, reusing the caller's if present.
func (h *Handler) trace(c *gin.Context) {
	id := c.GetHeader(TraceHeader)
	if id == "" {
		id = h.Backend.NewTraceID()
	}
	c.Header(TraceHeader, id)
	c.Request = c.Request.WithContext(tools.WithTraceID(c.Request.Context(), id))
	c.Next()
}

func requestLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	slog.Info("http request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
		"trace_id", tools.TraceID(c.Request.Context()),
	)
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("http server stopped", "addr", addr)
	return nil
}
