// Package server exposes the in-process pipeline over HTTP for callers that
// want per-document filtering without the batch CLI. Single-tenant internal
// tool: no auth.
package server

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mohammad-safakhou/corpusfilter/config"
	"github.com/mohammad-safakhou/corpusfilter/internal/pipeline"
	"github.com/mohammad-safakhou/corpusfilter/internal/record"
	"github.com/mohammad-safakhou/corpusfilter/internal/runtime"
)

// Handler serves the pipeline endpoints.
type Handler struct {
	cfg    *config.Config
	pipe   *pipeline.Pipeline
	logger *log.Logger
}

// NewHandler wires a handler over an assembled pipeline.
func NewHandler(cfg *config.Config, pipe *pipeline.Pipeline, logger *log.Logger) *Handler {
	return &Handler{cfg: cfg, pipe: pipe, logger: logger}
}

// Register mounts the routes on g.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/annotate", h.annotate)
	g.POST("/filter", h.filter)
}

type documentRequest struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

func (r documentRequest) toRecord() *record.Document {
	return &record.Document{URL: r.URL, Text: r.Text}
}

// annotate runs every stage and returns the annotated record without
// applying the decision policy.
func (h *Handler) annotate(c echo.Context) error {
	var req documentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	doc := req.toRecord()
	h.pipe.Annotate(c.Request().Context(), doc)
	return c.JSON(http.StatusOK, doc)
}

type filterResponse struct {
	Keep   bool             `json:"keep"`
	Reason string           `json:"reason,omitempty"`
	Record *record.Document `json:"record,omitempty"`
}

// filter runs the pipeline plus the decision policy. Rejected documents
// return keep=false and the rejecting gate; kept documents return the
// emitted (possibly masked) record.
func (h *Handler) filter(c echo.Context) error {
	var req documentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	doc := req.toRecord()
	keep, reason := h.pipe.Process(c.Request().Context(), doc)
	resp := filterResponse{Keep: keep, Reason: string(reason)}
	if keep {
		resp.Record = doc
	}
	return c.JSON(http.StatusOK, resp)
}

// Run starts the API and blocks until the listener stops.
func Run(cfg *config.Config, pipe *pipeline.Pipeline, logger *log.Logger, metrics *runtime.Metrics) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}

	h := NewHandler(cfg, pipe, logger)
	h.Register(e.Group("/v1"))

	logger.Printf("listening on %s", cfg.Server.Address)
	return e.Start(cfg.Server.Address)
}
