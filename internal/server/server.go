// Package server implements the spdxtv HTTP ingestion API
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nainya/spdxtv/internal/config"
	"github.com/nainya/spdxtv/internal/logger"
	"github.com/nainya/spdxtv/internal/metrics"
	"github.com/nainya/spdxtv/pkg/builder"
	"github.com/nainya/spdxtv/pkg/graph"
	"github.com/nainya/spdxtv/pkg/ingest"
	"github.com/nainya/spdxtv/pkg/mapping"
	"github.com/nainya/spdxtv/pkg/spdx"
	"github.com/nainya/spdxtv/pkg/tagvalue"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type Options struct {
	Store   graph.Store
	Mapping *mapping.Mapping
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer
	Config   config.ServerConfig
	// Strict rejects documents that produce warnings
	Strict bool
}

// Server serves one graph store over HTTP. Parses are serialized; reads
// run concurrently against the store.
type Server struct {
	echo    *echo.Echo
	store   graph.Store
	mapping *mapping.Mapping
	log     *logger.Logger
	metrics *metrics.Metrics
	cfg     config.ServerConfig
	strict  bool

	parseMu sync.Mutex
	ready   atomic.Bool
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	g := opts.Gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	cfg := opts.Config
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = config.Default().Server.MaxBodyBytes
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}

	s := &Server{
		echo:    e,
		store:   opts.Store,
		mapping: opts.Mapping,
		log:     log,
		metrics: opts.Metrics,
		cfg:     cfg,
		strict:  opts.Strict,
	}
	s.ready.Store(true)

	e.Use(middleware.Recover())
	e.Use(MetricsMiddleware(opts.Metrics, log))
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.MaxBodyBytes, 10)))

	s.registerOps(g)
	v1 := e.Group("/v1")
	v1.POST("/documents", s.postDocument)
	v1.GET("/documents", s.getDocument)
	v1.GET("/namespaces", s.getNamespaces)
	v1.GET("/elements", s.getElements)
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.echo.Listener = l
	errc := make(chan error, 1)
	go func() {
		errc <- s.echo.Start("")
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.ready.Store(false)
	s.log.LogServerShutdown()
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.echo.Shutdown(sctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// ListenAndServe listens on the configured address and calls Serve
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, l)
}

type warningJSON struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

type documentResponse struct {
	Namespace  string         `json:"namespace"`
	DocumentID string         `json:"documentId"`
	Warnings   []warningJSON  `json:"warnings"`
	Elements   map[string]int `json:"elements"`
}

type errorJSON struct {
	Kind    string `json:"kind"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error    errorJSON     `json:"error"`
	Warnings []warningJSON `json:"warnings,omitempty"`
}

type postQuery struct {
	Source string `query:"source"`
	Strict bool   `query:"strict"`
}

func (s *Server) postDocument(c echo.Context) error {
	var q postQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	source := q.Source
	if source == "" {
		source = "http"
	}

	s.parseMu.Lock()
	defer s.parseMu.Unlock()

	res, err := ingest.Parse(c.Request().Context(), c.Request().Body, s.store, ingest.Options{
		Mapping: s.mapping,
		Logger:  s.log,
		Metrics: s.metrics,
		Source:  source,
		Strict:  s.strict || q.Strict,
	})
	warnings := toWarnings(res)

	var perr *tagvalue.Error
	var herr *echo.HTTPError
	switch {
	case err == nil:
	case errors.As(err, &perr):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error:    errorJSON{Kind: perr.Kind.String(), Line: perr.Line, Message: perr.Msg},
			Warnings: warnings,
		})
	case errors.Is(err, builder.ErrWarnings):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error:    errorJSON{Kind: "warnings", Message: err.Error()},
			Warnings: warnings,
		})
	case errors.As(err, &herr):
		// body limit exceeded while reading
		return herr
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, documentResponse{
		Namespace:  res.Namespace,
		DocumentID: res.DocumentID,
		Warnings:   warnings,
		Elements:   res.Counts,
	})
}

// bindQuery binds query parameters only; the body of a POST is the document
func bindQuery(c echo.Context, dst any) error {
	return (&echo.DefaultBinder{}).BindQueryParams(c, dst)
}

func toWarnings(res *ingest.Result) []warningJSON {
	out := []warningJSON{}
	if res == nil {
		return out
	}
	for _, w := range res.Warnings {
		out = append(out, warningJSON{Line: w.Line, Message: w.Msg})
	}
	return out
}

func (s *Server) getNamespaces(c echo.Context) error {
	ns := s.store.Namespaces()
	if ns == nil {
		ns = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"namespaces": ns})
}

type elementsQuery struct {
	Namespace string `query:"namespace" validate:"required"`
	Type      string `query:"type"`
}

func (s *Server) getElements(c echo.Context) error {
	var q elementsQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	ids := s.store.Elements(q.Namespace, q.Type)
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"namespace": q.Namespace,
		"type":      q.Type,
		"elements":  ids,
	})
}

type documentQuery struct {
	Namespace string `query:"namespace" validate:"required"`
}

func (s *Server) getDocument(c echo.Context) error {
	var q documentQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	doc, err := spdx.LoadDocument(s.store, q.Namespace)
	if errors.Is(err, spdx.ErrNoDocument) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, doc)
}
