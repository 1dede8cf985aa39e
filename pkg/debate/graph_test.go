package debate

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/debategraph/pkg/flowgraph"
	"github.com/randalmurphal/debategraph/pkg/llm"
	"github.com/randalmurphal/debategraph/pkg/pas"
	"github.com/randalmurphal/debategraph/pkg/prompt"
	"github.com/randalmurphal/debategraph/pkg/store"
)

const (
	continueLin   = "AGENT: Super Agent\nTASK: continue\nREASONING: x\nNEXT AGENT: Dr. Lin\nEND"
	askEveryone   = "AGENT: Super Agent\nTASK: request_speak_intent\nREASONING: unclear\nNEXT AGENT: Maya\nEND"
	wrapUp        = "AGENT: Super Agent\nTASK: final_decision\nREASONING: settled\nNEXT AGENT: Maya\nEND"
	linTurn       = "AGENT: Dr. Lin\nEMOTION: calm\nRESPONSE: Regulate high-risk uses first.\nEND"
	finalAnswer   = "AGENT: Final Decision Agent\nEMOTION: confident\nRESPONSE: **Regulate by risk tier.**\nEND"
	linIntent     = "AGENT: Dr. Lin\nWANT_TO_SPEAK: yes\nEMOTION: eager\nREASON: costs\nPRIORITY SCORE: 8\nEND"
	mayaGibberish = "I would rather listen."
)

type harness struct {
	store  *store.Store
	mock   *llm.MockClient
	graph  *flowgraph.CompiledGraph[State]
	orgID  string
	debate *store.Debate
	lin    *store.Agent
	maya   *store.Agent
}

func newHarness(t *testing.T, responses ...string) *harness {
	t.Helper()
	ctx := context.Background()

	s, err := store.New(filepath.Join(t.TempDir(), "debate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	org, err := s.CreateOrganization(ctx, "acme")
	require.NoError(t, err)
	project, err := s.EnsureProject(ctx, org.ID, "Default")
	require.NoError(t, err)

	lin := &store.Agent{ProjectID: project.ID, Name: "Dr. Lin", Role: "Economist", Goal: "Quantify costs", Backstory: "Former regulator."}
	maya := &store.Agent{ProjectID: project.ID, Name: "Maya", Role: "Engineer", Goal: "Ship safely"}
	require.NoError(t, s.CreateAgent(ctx, org.ID, lin))
	require.NoError(t, s.CreateAgent(ctx, org.ID, maya))

	d := &store.Debate{ProjectID: project.ID, Topic: "Should AI be regulated?"}
	require.NoError(t, s.CreateDebate(ctx, org.ID, d))
	require.NoError(t, s.AddParticipants(ctx, org.ID, d.ID, lin.ID, maya.ID))

	mock := llm.NewMockClient("").WithResponses(responses...)
	inv := llm.NewInvoker(mock, llm.WithAuditLogger(s))

	g, err := NewGraph(Deps{Store: s, Invoker: inv})
	require.NoError(t, err)

	return &harness{store: s, mock: mock, graph: g, orgID: org.ID, debate: d, lin: lin, maya: maya}
}

func (h *harness) initial() State {
	return State{OrgID: h.orgID, DebateID: h.debate.ID}
}

func (h *harness) agentsOfMessages(t *testing.T) []string {
	t.Helper()
	msgs, err := h.store.ListMessages(context.Background(), h.orgID, h.debate.ID)
	require.NoError(t, err)
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.AgentID
	}
	return ids
}

func TestGraph_ContinueThenFinalDecision(t *testing.T) {
	h := newHarness(t, continueLin, linTurn, wrapUp, finalAnswer)
	ctx := flowgraph.NewContext(context.Background())

	var visited []string
	var final State
	for step := range h.graph.Stream(ctx, h.initial()) {
		require.NoError(t, step.Err)
		visited = append(visited, step.NodeID)
		final = step.State
	}

	assert.Equal(t, []string{
		NodeConnectOrg,
		NodeSuperAgent,
		NodeExecuteTurn,
		NodeSuperAgent,
		NodeFinalDecision,
	}, visited)

	assert.Equal(t, 1, final.Turns)
	assert.Equal(t, "Dr. Lin", final.LastSpeaker)
	assert.Equal(t, finalAnswer, final.FinalDecision)
	assert.Equal(t, pas.TaskFinalDecision, final.Decision.Task())

	// The participant turn is conditioned on Dr. Lin's persona.
	require.Equal(t, 4, h.mock.CallCount())
	turn := h.mock.Calls[1]
	require.Len(t, turn.Messages, 2)
	assert.Contains(t, turn.Messages[0].Content, "Name: Dr. Lin")
	assert.Contains(t, turn.Messages[0].Content, "Backstory: Former regulator.")
	assert.Equal(t, prompt.FullResponseTask, turn.Messages[1].Content)

	assert.Equal(t, []string{final.SuperAgentID, h.lin.ID, final.SuperAgentID, final.FinalDecisionAgentID},
		h.agentsOfMessages(t))

	d, err := h.store.GetDebate(context.Background(), h.orgID, h.debate.ID)
	require.NoError(t, err)
	assert.Equal(t, finalAnswer, d.FinalDecision)
}

func TestGraph_LaterTurnsSeeEarlierMessages(t *testing.T) {
	h := newHarness(t, continueLin, linTurn, wrapUp, finalAnswer)

	_, err := h.graph.Run(flowgraph.NewContext(context.Background()), h.initial())
	require.NoError(t, err)

	second := h.mock.Calls[2].Messages[0].Content
	assert.Contains(t, second, continueLin)
	assert.Contains(t, second, linTurn)
}

func TestGraph_CollectSpeakIntentions(t *testing.T) {
	h := newHarness(t, askEveryone, linIntent, mayaGibberish, wrapUp, finalAnswer)
	ctx := flowgraph.NewContext(context.Background())

	var visited []string
	var intents []pas.SpeakIntent
	for step := range h.graph.Stream(ctx, h.initial()) {
		require.NoError(t, step.Err)
		visited = append(visited, step.NodeID)
		if step.NodeID == NodeCollectIntents {
			intents = step.State.Intents
		}
	}

	assert.Equal(t, []string{NodeConnectOrg, NodeSuperAgent, NodeCollectIntents, NodeSuperAgent, NodeFinalDecision}, visited)
	assert.Equal(t, 5, h.mock.CallCount())
	assert.Equal(t, prompt.SpeakDecisionTask, h.mock.Calls[1].Messages[1].Content)
	assert.Equal(t, prompt.SpeakDecisionTask, h.mock.Calls[2].Messages[1].Content)

	require.Len(t, intents, 2)
	assert.True(t, intents[0].WantToSpeak)
	assert.Equal(t, 8, intents[0].Priority)
	assert.False(t, intents[1].WantToSpeak)

	agents := h.agentsOfMessages(t)
	require.Len(t, agents, 5)
	assert.Equal(t, h.lin.ID, agents[1])
	assert.Equal(t, h.maya.ID, agents[2], "undecodable intent is still persisted")
}

func TestGraph_DecodeErrorIsFatal(t *testing.T) {
	h := newHarness(t, "AGENT: Super Agent\nTASK: dance\nEND")

	_, err := h.graph.Run(flowgraph.NewContext(context.Background()), h.initial())
	require.Error(t, err)
	assert.ErrorIs(t, err, pas.ErrUnknownTask)

	var decodeErr *pas.DecodeError
	require.ErrorAs(t, err, &decodeErr)

	var nodeErr *flowgraph.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, NodeSuperAgent, nodeErr.NodeID)

	assert.Len(t, h.agentsOfMessages(t), 1, "raw decision is persisted before decoding")
	assert.Equal(t, 1, h.mock.CallCount())
}

func TestGraph_UnknownAgentIsFatal(t *testing.T) {
	h := newHarness(t, "AGENT: Super Agent\nTASK: continue\nREASONING: x\nNEXT AGENT: Nobody\nEND")

	_, err := h.graph.Run(flowgraph.NewContext(context.Background()), h.initial())
	require.ErrorIs(t, err, ErrUnknownAgent)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "Nobody", resErr.Name)
	assert.Equal(t, 1, h.mock.CallCount(), "no turn is invoked for an unknown agent")
}

func TestGraph_InvocationFailureAborts(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("rate limited")
	h.mock.WithError(boom)

	_, err := h.graph.Run(flowgraph.NewContext(context.Background()), h.initial())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, h.agentsOfMessages(t))
}

func TestGraph_ConnectOrg(t *testing.T) {
	t.Run("missing organization", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.graph.Run(flowgraph.NewContext(context.Background()), State{DebateID: h.debate.ID})
		assert.ErrorIs(t, err, ErrNoOrganization)
	})

	t.Run("debate of another organization", func(t *testing.T) {
		h := newHarness(t)
		other, err := h.store.CreateOrganization(context.Background(), "globex")
		require.NoError(t, err)

		_, err = h.graph.Run(flowgraph.NewContext(context.Background()), State{OrgID: other.ID, DebateID: h.debate.ID})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("loads participants and system agents", func(t *testing.T) {
		h := newHarness(t, continueLin)
		ctx := flowgraph.NewContext(context.Background())

		for step := range h.graph.Stream(ctx, h.initial()) {
			require.NoError(t, step.Err)
			s := step.State
			assert.Equal(t, "Should AI be regulated?", s.Topic)
			assert.NotEmpty(t, s.SuperAgentID)
			assert.NotEmpty(t, s.SummaryAgentID)
			assert.NotEmpty(t, s.FinalDecisionAgentID)
			require.Len(t, s.Participants, 2)
			assert.Equal(t, "Dr. Lin", s.Participants[0].Name)
			assert.Equal(t, "Maya", s.Participants[1].Name)
			break
		}
		assert.Zero(t, h.mock.CallCount())
	})
}

func TestGraph_VerboseLogsModelOutput(t *testing.T) {
	h := newHarness(t, continueLin, linTurn, wrapUp, finalAnswer)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := flowgraph.NewContext(context.Background(), flowgraph.WithLogger(logger))

	state := h.initial()
	state.Verbose = true
	_, err := h.graph.Run(ctx, state)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "model output")
}

func TestGraph_CancelledContext(t *testing.T) {
	h := newHarness(t, continueLin)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.graph.Run(flowgraph.NewContext(cancelled), h.initial())
	var cancelErr *flowgraph.CancellationError
	require.ErrorAs(t, err, &cancelErr)
	assert.Equal(t, NodeConnectOrg, cancelErr.NodeID)
}

func TestRouteDecision_WithoutDecision(t *testing.T) {
	assert.Empty(t, routeDecision(nil, State{}))
}

func TestState_Resolve(t *testing.T) {
	s := State{Participants: []Participant{
		{ID: "1", Persona: pas.Persona{Name: "Dr. Lin"}},
		{ID: "2", Persona: pas.Persona{Name: "Maya"}},
	}}

	p, err := s.resolve("  dr. lin ")
	require.NoError(t, err)
	assert.Equal(t, "1", p.ID)

	_, err = s.resolve("ALL")
	assert.ErrorIs(t, err, ErrUnknownAgent)
}
