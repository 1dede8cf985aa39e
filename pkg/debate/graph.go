package debate

import (
	"context"

	"github.com/randalmurphal/debategraph/pkg/flowgraph"
	"github.com/randalmurphal/debategraph/pkg/memory"
	"github.com/randalmurphal/debategraph/pkg/pas"
	"github.com/randalmurphal/debategraph/pkg/store"
)

// Store is the persistence the debate graph needs.
type Store interface {
	memory.Store
	GetOrganization(ctx context.Context, id string) (*store.Organization, error)
	EnsureSystemAgent(ctx context.Context, orgID, projectID string, spec store.Agent) (*store.Agent, error)
	ListParticipants(ctx context.Context, orgID, debateID string) ([]store.Agent, error)
	CreateMessage(ctx context.Context, orgID, debateID, agentID, content string) (*store.Message, error)
	SetFinalDecision(ctx context.Context, orgID, id, text string) error
}

// Deps are the collaborators of a debate graph.
type Deps struct {
	Store   Store
	Invoker memory.Invoker

	// Memory computes debate memory. Nil builds a manager with default
	// budget and window over Store and Invoker.
	Memory *memory.Manager
}

// Route labels of the moderator decision.
const (
	RouteContinue           = string(pas.TaskContinue)
	RouteRequestSpeakIntent = string(pas.TaskRequestSpeakIntent)
	RouteFinalDecision      = string(pas.TaskFinalDecision)
)

// NewGraph compiles the debate turn graph over deps.
func NewGraph(deps Deps) (*flowgraph.CompiledGraph[State], error) {
	if deps.Memory == nil {
		deps.Memory = memory.NewManager(deps.Store, deps.Invoker)
	}
	n := &nodes{store: deps.Store, invoker: deps.Invoker, memory: deps.Memory}

	return flowgraph.NewGraph[State]().
		AddNode(NodeConnectOrg, n.connectOrg).
		AddNode(NodeSuperAgent, n.superAgentDecision).
		AddNode(NodeExecuteTurn, n.executeTurn).
		AddNode(NodeCollectIntents, n.collectIntents).
		AddNode(NodeFinalDecision, n.finalDecision).
		AddEdge(NodeConnectOrg, NodeSuperAgent).
		AddConditionalEdge(NodeSuperAgent, routeDecision, map[string]string{
			RouteContinue:           NodeExecuteTurn,
			RouteRequestSpeakIntent: NodeCollectIntents,
			RouteFinalDecision:      NodeFinalDecision,
		}).
		AddEdge(NodeExecuteTurn, NodeSuperAgent).
		AddEdge(NodeCollectIntents, NodeSuperAgent).
		AddEdge(NodeFinalDecision, flowgraph.END).
		SetEntry(NodeConnectOrg).
		Compile()
}

// routeDecision labels the state by the moderator's task. A state without
// a decision yields an empty label, which no route maps.
func routeDecision(_ flowgraph.Context, s State) string {
	if s.Decision == nil {
		return ""
	}
	return string(s.Decision.Task())
}
