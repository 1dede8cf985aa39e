// Package api exposes debate creation and debate runs over HTTP. Progress
// streams back as server-sent events in the events package framing.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/randalmurphal/debategraph/pkg/events"
	"github.com/randalmurphal/debategraph/pkg/orchestrator"
	"github.com/randalmurphal/debategraph/pkg/store"
)

// Store is the persistence the handlers read directly.
type Store interface {
	CreateOrganization(ctx context.Context, name string) (*store.Organization, error)
	GetDebate(ctx context.Context, orgID, id string) (*store.Debate, error)
	ListMessages(ctx context.Context, orgID, debateID string) ([]store.Message, error)
}

// Creator creates debates.
type Creator interface {
	Create(ctx context.Context, req orchestrator.CreateRequest, sink events.Sink) (*store.Debate, error)
}

// Runner runs debates.
type Runner interface {
	Run(ctx context.Context, req orchestrator.RunRequest, sink events.Sink) error
}

// Fanout adds extra destinations for a debate's run events.
type Fanout func(debateID string, sink events.Sink) events.Sink

// Handler serves the debate API.
type Handler struct {
	store   Store
	creator Creator
	runner  Runner
	fanout  Fanout
	logger  *slog.Logger

	projectID string
	verbose   bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithFanout mirrors run events elsewhere, such as a NATS subject.
func WithFanout(f Fanout) Option {
	return func(h *Handler) { h.fanout = f }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithDefaults sets the project used when a creation request names none,
// and forces verbose runs.
func WithDefaults(projectID string, verbose bool) Option {
	return func(h *Handler) {
		h.projectID = projectID
		h.verbose = verbose
	}
}

// NewHandler creates a handler.
func NewHandler(s Store, c Creator, r Runner, opts ...Option) *Handler {
	h := &Handler{store: s, creator: c, runner: r, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter returns an engine with the API mounted under /api.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	h.RegisterRoutes(r.Group("/api"))
	return r
}

// RegisterRoutes registers the debate routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/orgs", h.CreateOrganization)

	debates := r.Group("/orgs/:org/debates")
	{
		debates.POST("", h.CreateDebate)
		debates.POST("/:id/run", h.RunDebate)
		debates.GET("/:id/messages", h.ListMessages)
	}
}

type createOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateOrganization creates an organization.
// POST /api/orgs
func (h *Handler) CreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	org, err := h.store.CreateOrganization(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, org)
}

// CreateDebate creates a debate and streams its setup.
// POST /api/orgs/:org/debates
func (h *Handler) CreateDebate(c *gin.Context) {
	var req orchestrator.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.OrgID = c.Param("org")
	if req.ProjectID == "" {
		req.ProjectID = h.projectID
	}
	req.Verbose = req.Verbose || h.verbose

	sink := h.stream(c)
	if _, err := h.creator.Create(c.Request.Context(), req, sink); err != nil {
		h.logger.Error("create debate", slog.String("org_id", req.OrgID), slog.String("error", err.Error()))
		h.fail(c, sink, err)
	}
}

type runRequest struct {
	Verbose bool `json:"verbose"`
}

// RunDebate runs a debate to its final decision and streams it.
// POST /api/orgs/:org/debates/:id/run
func (h *Handler) RunDebate(c *gin.Context) {
	var body runRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := orchestrator.RunRequest{
		OrgID:    c.Param("org"),
		DebateID: c.Param("id"),
		Verbose:  body.Verbose || h.verbose,
	}

	sink := h.stream(c)
	if h.fanout != nil {
		sink = h.fanout(req.DebateID, sink)
	}

	if err := h.runner.Run(c.Request.Context(), req, sink); err != nil {
		h.logger.Error("run debate", slog.String("debate_id", req.DebateID), slog.String("error", err.Error()))
		// The runner reports failures inside a started stream itself.
		if !c.Writer.Written() {
			c.JSON(statusOf(err), gin.H{"error": err.Error()})
		}
	}
}

// ListMessages returns every message of a debate in order.
// GET /api/orgs/:org/debates/:id/messages
func (h *Handler) ListMessages(c *gin.Context) {
	orgID, debateID := c.Param("org"), c.Param("id")

	if _, err := h.store.GetDebate(c.Request.Context(), orgID, debateID); err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	msgs, err := h.store.ListMessages(c.Request.Context(), orgID, debateID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// stream returns a sink writing to the response. The SSE headers go out
// with the first event, so a request that fails before emitting anything
// still answers with a plain JSON error.
func (h *Handler) stream(c *gin.Context) events.Sink {
	w := events.NewWriterSink(c.Writer)
	return events.SinkFunc(func(ctx context.Context, e events.Event) error {
		if !c.Writer.Written() {
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Header("X-Accel-Buffering", "no")
		}
		return w.Emit(ctx, e)
	})
}

// fail reports err as JSON, or as an error event once streaming started.
func (h *Handler) fail(c *gin.Context, sink events.Sink, err error) {
	if !c.Writer.Written() {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	_ = sink.Emit(context.WithoutCancel(c.Request.Context()), events.New(events.Error, map[string]string{"message": err.Error()}))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrDebateInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
