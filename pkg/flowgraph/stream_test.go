package flowgraph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// turnState mimics a moderated loop: a decision node routes to a turn node
// until the scripted decisions run out.
type turnState struct {
	Decisions []string
	Cursor    int
	Turns     []string
}

func buildTurnGraph(t *testing.T) *CompiledGraph[turnState] {
	t.Helper()

	decide := func(ctx Context, s turnState) (turnState, error) {
		return s, nil
	}
	turn := func(ctx Context, s turnState) (turnState, error) {
		s.Turns = append(s.Turns, s.Decisions[s.Cursor])
		s.Cursor++
		return s, nil
	}
	conclude := func(ctx Context, s turnState) (turnState, error) {
		s.Turns = append(s.Turns, "final")
		return s, nil
	}
	router := func(ctx Context, s turnState) string {
		if s.Cursor >= len(s.Decisions) {
			return "final_decision"
		}
		return "continue"
	}

	compiled, err := NewGraph[turnState]().
		AddNode("decide", decide).
		AddNode("turn", turn).
		AddNode("conclude", conclude).
		AddConditionalEdge("decide", router, map[string]string{
			"continue":       "turn",
			"final_decision": "conclude",
		}).
		AddEdge("turn", "decide").
		AddEdge("conclude", END).
		SetEntry("decide").
		Compile()
	require.NoError(t, err)
	return compiled
}

// TestStream_YieldsEveryNode tests that each node completion is observed in order.
func TestStream_YieldsEveryNode(t *testing.T) {
	compiled := buildTurnGraph(t)

	var nodes []string
	var last turnState
	for step := range compiled.Stream(background(), turnState{Decisions: []string{"Dr. Lin", "Ava"}}) {
		require.NoError(t, step.Err)
		nodes = append(nodes, step.NodeID)
		last = step.State
	}

	assert.Equal(t, []string{"decide", "turn", "decide", "turn", "decide", "conclude"}, nodes)
	assert.Equal(t, []string{"Dr. Lin", "Ava", "final"}, last.Turns)
}

// TestStream_MatchesRun tests that streaming and run-to-completion agree.
func TestStream_MatchesRun(t *testing.T) {
	compiled := buildTurnGraph(t)
	initial := turnState{Decisions: []string{"a", "b", "c"}}

	result, err := compiled.Run(background(), initial)
	require.NoError(t, err)

	var streamed turnState
	for step := range compiled.Stream(background(), initial) {
		require.NoError(t, step.Err)
		streamed = step.State
	}

	assert.Equal(t, result, streamed)
}

// TestStream_StateSnapshotsAreIndependent tests that observed states are values.
func TestStream_StateSnapshotsAreIndependent(t *testing.T) {
	compiled := buildTurnGraph(t)

	var cursors []int
	for step := range compiled.Stream(background(), turnState{Decisions: []string{"a", "b"}}) {
		cursors = append(cursors, step.State.Cursor)
	}

	assert.Equal(t, []int{0, 1, 1, 2, 2, 2}, cursors)
}

// TestStream_BreakStopsExecution tests that a consumer can stop the run.
func TestStream_BreakStopsExecution(t *testing.T) {
	compiled := mustCompile(t, moderatedGraph())

	var executed []string
	spy := func(fctx Context, s ledger) (ledger, error) {
		executed = append(executed, fctx.NodeID())
		return s, nil
	}
	g := NewGraph[ledger]().
		AddNode("open", spy).
		AddNode("close", spy).
		AddEdge("open", "close").
		AddEdge("close", END).
		SetEntry("open")

	for step := range mustCompile(t, g).Stream(background(), ledger{}) {
		assert.Equal(t, "open", step.NodeID)
		break
	}
	assert.Equal(t, []string{"open"}, executed)

	var nodes []string
	for step := range compiled.Stream(background(), ledger{Limit: 5}) {
		nodes = append(nodes, step.NodeID)
		if len(nodes) == 3 {
			break
		}
	}
	assert.Equal(t, []string{"open", "moderate", "speak"}, nodes)
}

// TestStream_ErrorIsFinalStep tests that a failure ends the sequence with Err.
func TestStream_ErrorIsFinalStep(t *testing.T) {
	errBoom := errors.New("boom")
	g := NewGraph[ledger]().
		AddNode("open", visit("open")).
		AddNode("moderate", failWith(errBoom)).
		AddEdge("open", "moderate").
		AddEdge("moderate", END).
		SetEntry("open")

	var steps []Step[ledger]
	for step := range mustCompile(t, g).Stream(background(), ledger{}) {
		steps = append(steps, step)
	}

	require.Len(t, steps, 2)
	assert.Equal(t, "open", steps[0].NodeID)
	assert.NoError(t, steps[0].Err)
	assert.Equal(t, "moderate", steps[1].NodeID)
	assert.ErrorIs(t, steps[1].Err, errBoom)
	assert.Equal(t, []string{"open"}, steps[1].State.Visited)
}

// TestStream_NilContext tests that a nil context yields a single error step.
func TestStream_NilContext(t *testing.T) {
	compiled := buildTurnGraph(t)

	var steps []Step[turnState]
	for step := range compiled.Stream(nil, turnState{}) {
		steps = append(steps, step)
	}

	require.Len(t, steps, 1)
	assert.ErrorIs(t, steps[0].Err, ErrNilContext)
}

// TestStream_Cancellation tests that cancellation between nodes surfaces as an error step.
func TestStream_Cancellation(t *testing.T) {
	compiled := buildTurnGraph(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var final Step[turnState]
	for step := range compiled.Stream(NewContext(ctx), turnState{Decisions: []string{"a", "b"}}) {
		if step.NodeID == "turn" {
			cancel()
		}
		final = step
	}

	require.Error(t, final.Err)
	assert.ErrorIs(t, final.Err, context.Canceled)
	var cancelErr *CancellationError
	require.ErrorAs(t, final.Err, &cancelErr)
	assert.Equal(t, "decide", cancelErr.NodeID)
}
