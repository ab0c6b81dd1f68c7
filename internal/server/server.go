// Package server exposes the source registry and settings over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dtherrick/agent-replay/internal/message"
	"github.com/dtherrick/agent-replay/internal/parse"
	"github.com/dtherrick/agent-replay/internal/playback"
	"github.com/dtherrick/agent-replay/internal/settings"
	"github.com/dtherrick/agent-replay/internal/source"
)

// Server is the HTTP boundary. Adapter errors surface as a generic failure
// carrying the error message only; stack traces never reach a response.
type Server struct {
	registry *source.Registry
	store    *settings.Store
	log      *slog.Logger
	tracer   trace.Tracer
	echo     *echo.Echo
}

// New wires the routes. A nil logger falls back to slog.Default().
func New(registry *source.Registry, store *settings.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		registry: registry,
		store:    store,
		log:      log,
		tracer:   otel.Tracer("agent-replay/server"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	api := e.Group("/api")
	api.GET("/sources", s.handleSources)
	api.GET("/sources/:source/projects", s.handleProjects)
	api.GET("/sources/:source/conversations", s.handleConversations)
	api.GET("/sources/:source/conversations/:id", s.handleConversation)
	api.GET("/settings", s.handleGetSettings)
	api.PUT("/settings", s.handlePutSettings)
	api.POST("/ingest", s.handleIngest)

	s.echo = e
	return s
}

// Handler returns the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.Info("serving", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleSources(c echo.Context) error {
	return c.JSON(http.StatusOK, s.registry.List())
}

func (s *Server) adapter(c echo.Context) (source.Adapter, error) {
	id := c.Param("source")
	a, ok := s.registry.Get(id)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "unknown source: "+id)
	}
	return a, nil
}

func (s *Server) handleProjects(c echo.Context) error {
	a, err := s.adapter(c)
	if err != nil {
		return err
	}
	projects, err := a.ListProjects(c.Request().Context())
	if err != nil {
		s.log.Error("list projects failed", "source", a.ID(), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleConversations(c echo.Context) error {
	a, err := s.adapter(c)
	if err != nil {
		return err
	}
	convs, err := a.ListConversations(c.Request().Context(), c.QueryParam("project"))
	if err != nil {
		s.log.Error("list conversations failed", "source", a.ID(), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, convs)
}

func (s *Server) handleConversation(c echo.Context) error {
	a, err := s.adapter(c)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(c.Request().Context(), "LoadConversation",
		trace.WithAttributes(
			attribute.String("source", a.ID()),
			attribute.String("conversation", c.Param("id")),
		))
	defer span.End()

	msgs, err := a.LoadConversation(ctx, c.QueryParam("project"), c.Param("id"))
	if err != nil {
		span.RecordError(err)
		s.log.Error("load conversation failed", "source", a.ID(), "id", c.Param("id"), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	// an empty conversation is a successful result, not a 404
	return c.JSON(http.StatusOK, msgs)
}

func (s *Server) handleGetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Load())
}

func (s *Server) handlePutSettings(c echo.Context) error {
	var prefs playback.DisplaySettings
	if err := c.Bind(&prefs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid settings payload")
	}
	if err := s.store.Save(prefs); err != nil {
		s.log.Error("saving settings failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, prefs)
}

// ingestResponse is the result of a file drop.
type ingestResponse struct {
	ID       string            `json:"id"`
	Messages []message.Message `json:"messages"`
}

// handleIngest accepts a dropped structured export. Non-.json filenames are
// rejected before any parsing happens.
func (s *Server) handleIngest(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".json") {
		return echo.NewHTTPError(http.StatusBadRequest, "only .json files are accepted")
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}

	msgs, err := parse.ParseExport(data)
	if err != nil {
		if errors.Is(err, parse.ErrUnrecognizedFormat) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, ingestResponse{
		ID:       uuid.NewString(),
		Messages: msgs,
	})
}
