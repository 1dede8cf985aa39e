package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/randalmurphal/debategraph/pkg/cast"
	"github.com/randalmurphal/debategraph/pkg/events"
	"github.com/randalmurphal/debategraph/pkg/flowgraph"
	"github.com/randalmurphal/debategraph/pkg/llm"
	"github.com/randalmurphal/debategraph/pkg/prompt"
	"github.com/randalmurphal/debategraph/pkg/store"
)

// CreateRequest describes a debate to create.
type CreateRequest struct {
	OrgID string `json:"-"`
	// ProjectID may be empty; the organization's default project is used.
	ProjectID string `json:"project_id"`
	Topic     string `json:"topic" binding:"required"`
	Verbose   bool   `json:"verbose"`
}

// Creator builds debates and their cast.
type Creator struct {
	store   Store
	invoker Invoker
	graph   *flowgraph.CompiledGraph[cast.State]
	opts    options
}

// NewCreator compiles the agent creation graph.
func NewCreator(s Store, inv Invoker, opts ...Option) (*Creator, error) {
	g, err := cast.NewGraph(cast.Deps{Store: s, Invoker: inv})
	if err != nil {
		return nil, err
	}
	return &Creator{store: s, invoker: inv, graph: g, opts: buildOptions(opts)}, nil
}

// Create titles a new debate, generates and saves its participants, and
// reports progress to sink:
//
//	debate_created, one event per creation graph node, agent_saved per
//	participant, debate_setup_complete
//
// If anything fails after the debate row exists, the debate and the agents
// saved for it are deleted again.
func (c *Creator) Create(ctx context.Context, req CreateRequest, sink events.Sink) (_ *store.Debate, err error) {
	if _, err := c.store.GetOrganization(ctx, req.OrgID); err != nil {
		return nil, err
	}
	projectID, err := c.project(ctx, req)
	if err != nil {
		return nil, err
	}

	title, err := c.title(ctx, req.OrgID, projectID, req.Topic)
	if err != nil {
		return nil, err
	}

	d := &store.Debate{ProjectID: projectID, Name: title, Topic: req.Topic}
	if err := c.store.CreateDebate(ctx, req.OrgID, d); err != nil {
		return nil, err
	}

	var agentIDs []string
	defer func() {
		if err != nil {
			c.compensate(ctx, req.OrgID, d.ID, agentIDs)
		}
	}()

	if err := sink.Emit(ctx, events.New(events.DebateCreated, map[string]string{"debate_id": d.ID})); err != nil {
		return nil, err
	}

	final, err := c.runCast(ctx, req, projectID, d.ID, sink)
	if err != nil {
		return nil, err
	}

	for _, p := range final.Personas() {
		a := &store.Agent{
			ProjectID:       projectID,
			Name:            p.Name,
			Role:            p.Role,
			Goal:            p.Goal,
			DomainExpertise: p.DomainExpertise,
			DebateStyle:     p.DebateStyle,
			Backstory:       p.Backstory,
			Category:        p.Category,
		}
		if err := c.store.CreateAgent(ctx, req.OrgID, a); err != nil {
			return nil, err
		}
		agentIDs = append(agentIDs, a.ID)
		if err := c.store.AddParticipants(ctx, req.OrgID, d.ID, a.ID); err != nil {
			return nil, err
		}
		if err := sink.Emit(ctx, events.New(events.AgentSaved, map[string]string{
			"agent_id":   a.ID,
			"agent_name": a.Name,
		})); err != nil {
			return nil, err
		}
	}

	if err := sink.Emit(ctx, events.New(events.DebateSetupComplete, map[string]string{"debate_id": d.ID})); err != nil {
		return nil, err
	}
	return d, nil
}

func (c *Creator) project(ctx context.Context, req CreateRequest) (string, error) {
	if req.ProjectID != "" {
		p, err := c.store.GetProject(ctx, req.OrgID, req.ProjectID)
		if err != nil {
			return "", err
		}
		return p.ID, nil
	}
	p, err := c.store.EnsureProject(ctx, req.OrgID, DefaultProject)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// title asks the model for a three-word debate name.
func (c *Creator) title(ctx context.Context, orgID, projectID, topic string) (string, error) {
	resp, err := c.invoker.Invoke(ctx, llm.Request{
		Messages:  llm.Prompt(prompt.DebateTitle(topic)),
		ProjectID: projectID,
		OrgID:     orgID,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

func (c *Creator) runCast(ctx context.Context, req CreateRequest, projectID, debateID string, sink events.Sink) (cast.State, error) {
	state := cast.State{
		OrgID:     req.OrgID,
		ProjectID: projectID,
		DebateID:  debateID,
		Topic:     req.Topic,
		Verbose:   req.Verbose,
	}
	fctx := flowgraph.NewContext(ctx, flowgraph.WithLogger(c.opts.logger))
	opts := append([]flowgraph.RunOption{flowgraph.WithGraphName("agent-creation")}, c.opts.runOpts...)

	for step := range c.graph.Stream(fctx, state, opts...) {
		if step.Err != nil {
			return step.State, step.Err
		}
		state = step.State

		payload, err := events.StatePayload(step.State)
		if err != nil {
			return state, err
		}
		if err := sink.Emit(ctx, events.New(events.NodeEventName(step.NodeID), payload)); err != nil {
			return state, err
		}
	}
	return state, nil
}

// compensate removes a partially created debate. It runs detached from
// ctx so a cancelled request still cleans up.
func (c *Creator) compensate(ctx context.Context, orgID, debateID string, agentIDs []string) {
	ctx = context.WithoutCancel(ctx)
	if err := c.store.DeleteDebate(ctx, orgID, debateID); err != nil {
		c.opts.logger.Warn("compensate debate", slog.String("debate_id", debateID), slog.String("error", err.Error()))
	}
	if err := c.store.DeleteAgents(ctx, orgID, agentIDs...); err != nil {
		c.opts.logger.Warn("compensate agents", slog.String("debate_id", debateID), slog.String("error", err.Error()))
	}
}
