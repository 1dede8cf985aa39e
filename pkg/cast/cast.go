package cast

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/randalmurphal/debategraph/pkg/flowgraph"
	"github.com/randalmurphal/debategraph/pkg/llm"
	"github.com/randalmurphal/debategraph/pkg/pas"
	"github.com/randalmurphal/debategraph/pkg/prompt"
	"github.com/randalmurphal/debategraph/pkg/store"
)

// Node names.
const (
	NodeConnectOrg       = "Connect to Current Organization"
	NodePrepareInitial   = "Prepare Initial Agents Prompt"
	NodeGenerateInitial  = "Generate Initial Agents"
	NodePrepareExpansion = "Prepare Agent Expansion Prompt"
	NodeExpandAgent      = "Expand Single Agent"
	NodeAdvanceCursor    = "Move To Next Agent"
)

// Route labels of the cursor check.
const (
	RouteContinue = "CONTINUE"
	RouteStop     = "STOP"
)

var (
	// ErrNoOrganization indicates a run started without an organization.
	ErrNoOrganization = errors.New("cast: no organization in state")

	// ErrNoStubs indicates the model's roster contained no usable stub.
	ErrNoStubs = errors.New("cast: no agents generated")
)

// Store is the persistence the creation graph needs.
type Store interface {
	GetOrganization(ctx context.Context, id string) (*store.Organization, error)
}

// Invoker runs model calls.
type Invoker interface {
	Invoke(ctx context.Context, req llm.Request) (*llm.CompletionResponse, error)
}

// Deps are the collaborators of a creation graph.
type Deps struct {
	Store   Store
	Invoker Invoker
}

// State is the value threaded through one creation run. JSON names follow
// the event payloads clients already consume.
type State struct {
	OrgID     string `json:"org_id"`
	ProjectID string `json:"project_id"`
	DebateID  string `json:"debate_id"`
	Topic     string `json:"user_topic"`
	Verbose   bool   `json:"verbose"`

	InitialPrompt   string   `json:"initial_agents_prompt"`
	ExpansionPrompt string   `json:"agent_expansion_prompt"`
	Stubs           []string `json:"initial_agents"`
	Cursor          int      `json:"current_initial_agent_index"`
	Expanded        []string `json:"expanded_agents"`
}

// Personas decodes the expanded texts.
func (s State) Personas() []pas.Persona {
	return pas.DecodePersonas(s.Expanded...)
}

// NewGraph compiles the agent creation graph over deps.
func NewGraph(deps Deps) (*flowgraph.CompiledGraph[State], error) {
	n := &nodes{store: deps.Store, invoker: deps.Invoker}

	return flowgraph.NewGraph[State]().
		AddNode(NodeConnectOrg, n.connectOrg).
		AddNode(NodePrepareInitial, prepareInitial).
		AddNode(NodeGenerateInitial, n.generateInitial).
		AddNode(NodePrepareExpansion, prepareExpansion).
		AddNode(NodeExpandAgent, n.expandAgent).
		AddNode(NodeAdvanceCursor, advanceCursor).
		AddEdge(NodeConnectOrg, NodePrepareInitial).
		AddEdge(NodePrepareInitial, NodeGenerateInitial).
		AddEdge(NodeGenerateInitial, NodePrepareExpansion).
		AddEdge(NodePrepareExpansion, NodeExpandAgent).
		AddEdge(NodeExpandAgent, NodeAdvanceCursor).
		AddConditionalEdge(NodeAdvanceCursor, routeCursor, map[string]string{
			RouteContinue: NodePrepareExpansion,
			RouteStop:     flowgraph.END,
		}).
		SetEntry(NodeConnectOrg).
		Compile()
}

func routeCursor(_ flowgraph.Context, s State) string {
	if s.Cursor < len(s.Stubs) {
		return RouteContinue
	}
	return RouteStop
}

type nodes struct {
	store   Store
	invoker Invoker
}

func (n *nodes) connectOrg(ctx flowgraph.Context, s State) (State, error) {
	if s.OrgID == "" {
		return s, ErrNoOrganization
	}
	if _, err := n.store.GetOrganization(ctx, s.OrgID); err != nil {
		return s, err
	}
	return s, nil
}

func prepareInitial(ctx flowgraph.Context, s State) (State, error) {
	verbose(ctx, s, "starting initial agent creation")
	s.InitialPrompt = prompt.InitialAgents(s.Topic)
	return s, nil
}

func (n *nodes) generateInitial(ctx flowgraph.Context, s State) (State, error) {
	text, err := n.invoke(ctx, s, s.InitialPrompt)
	if err != nil {
		return s, err
	}

	stubs := pas.SplitStubs(text)
	if len(stubs) == 0 {
		return s, ErrNoStubs
	}
	s.Stubs = stubs
	s.Cursor = 0
	verbose(ctx, s, "initial agents created", slog.Int("count", len(stubs)))
	return s, nil
}

func prepareExpansion(_ flowgraph.Context, s State) (State, error) {
	stub := strings.TrimSpace(s.Stubs[s.Cursor])
	s.ExpansionPrompt = prompt.ExpandAgent(stub, s.Topic)
	return s, nil
}

func (n *nodes) expandAgent(ctx flowgraph.Context, s State) (State, error) {
	text, err := n.invoke(ctx, s, s.ExpansionPrompt)
	if err != nil {
		return s, err
	}
	s.Expanded = append(slices.Clip(s.Expanded), text)
	verbose(ctx, s, "agent expanded", slog.Int("index", s.Cursor))
	return s, nil
}

func advanceCursor(_ flowgraph.Context, s State) (State, error) {
	s.Cursor++
	return s, nil
}

func (n *nodes) invoke(ctx flowgraph.Context, s State, text string) (string, error) {
	resp, err := n.invoker.Invoke(ctx, llm.Request{
		Messages:  llm.Prompt(text),
		ProjectID: s.ProjectID,
		OrgID:     s.OrgID,
		DebateID:  s.DebateID,
		Node:      ctx.NodeID(),
	})
	if err != nil {
		return "", err
	}
	ctx.Logger().Debug("model output", slog.String("output", resp.Content))
	return resp.Content, nil
}

// verbose logs progress at INFO for verbose runs and DEBUG otherwise.
func verbose(ctx flowgraph.Context, s State, msg string, attrs ...slog.Attr) {
	level := slog.LevelDebug
	if s.Verbose {
		level = slog.LevelInfo
	}
	ctx.Logger().LogAttrs(ctx, level, msg, attrs...)
}
