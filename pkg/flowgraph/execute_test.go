package flowgraph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_FollowsEdgesAndRoutes(t *testing.T) {
	compiled := mustCompile(t, moderatedGraph())

	tests := []struct {
		limit int
		want  []string
	}{
		{0, []string{"open", "moderate", "close"}},
		{1, []string{"open", "moderate", "speak", "moderate", "close"}},
		{3, []string{"open", "moderate", "speak", "moderate", "speak", "moderate", "speak", "moderate", "close"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit %d", tt.limit), func(t *testing.T) {
			result, err := compiled.Run(background(), ledger{Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Visited)
			assert.Equal(t, tt.limit, result.Rounds)
		})
	}
}

func TestRun_RouteToEnd(t *testing.T) {
	g := NewGraph[ledger]().
		AddNode("moderate", visit("moderate")).
		AddNode("speak", playRound).
		AddConditionalEdge("moderate", roundRouter, map[string]string{"again": "speak", "stop": END}).
		AddEdge("speak", "moderate").
		SetEntry("moderate")

	result, err := mustCompile(t, g).Run(background(), ledger{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"moderate", "speak", "moderate"}, result.Visited)
}

func TestRun_LeavesInitialStateAlone(t *testing.T) {
	initial := ledger{Visited: make([]string, 0, 8), Limit: 2}

	result, err := mustCompile(t, moderatedGraph()).Run(background(), initial)
	require.NoError(t, err)

	assert.Len(t, result.Visited, 7)
	assert.Empty(t, initial.Visited)
	assert.Equal(t, "", initial.Visited[:1][0], "backing array untouched")
}

func TestRun_NodeError(t *testing.T) {
	sentinel := errors.New("decode failed")
	g := NewGraph[ledger]().
		AddNode("open", visit("open")).
		AddNode("moderate", failWith(sentinel)).
		AddEdge("open", "moderate").
		AddEdge("moderate", END).
		SetEntry("open")

	result, err := mustCompile(t, g).Run(background(), ledger{})

	require.ErrorIs(t, err, sentinel)
	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "moderate", nodeErr.NodeID)
	assert.Equal(t, "execute", nodeErr.Op)
	assert.Equal(t, []string{"open"}, result.Visited, "state at the point of failure")
}

func TestRun_PanicBecomesError(t *testing.T) {
	for _, v := range []any{"boom", 42, errors.New("nil map")} {
		t.Run(fmt.Sprint(v), func(t *testing.T) {
			g := NewGraph[ledger]().
				AddNode("open", visit("open")).
				AddNode("speak", panicWith(v)).
				AddEdge("open", "speak").
				AddEdge("speak", END).
				SetEntry("open")

			result, err := mustCompile(t, g).Run(background(), ledger{})

			var panicErr *PanicError
			require.ErrorAs(t, err, &panicErr)
			assert.Equal(t, "speak", panicErr.NodeID)
			assert.Equal(t, v, panicErr.Value)
			assert.NotEmpty(t, panicErr.Stack)
			assert.Equal(t, []string{"open"}, result.Visited)
		})
	}
}

func TestRun_CancellationCheckedBeforeEachNode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := NewGraph[ledger]().
		AddNode("open", func(fctx Context, s ledger) (ledger, error) {
			cancel()
			return visit("open")(fctx, s)
		}).
		AddNode("moderate", visit("moderate")).
		AddEdge("open", "moderate").
		AddEdge("moderate", END).
		SetEntry("open")

	result, err := mustCompile(t, g).Run(NewContext(ctx), ledger{})

	require.ErrorIs(t, err, context.Canceled)
	var cancelErr *CancellationError
	require.ErrorAs(t, err, &cancelErr)
	assert.Equal(t, "moderate", cancelErr.NodeID)
	assert.Equal(t, []string{"open"}, cancelErr.State.(ledger).Visited)
	assert.Equal(t, []string{"open"}, result.Visited)
}

func TestRun_ExpiredDeadline(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := mustCompile(t, moderatedGraph()).Run(NewContext(ctx), ledger{})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	var cancelErr *CancellationError
	require.ErrorAs(t, err, &cancelErr)
	assert.Equal(t, "open", cancelErr.NodeID)
}

func TestRun_UnmappedRouteIsFatal(t *testing.T) {
	g := NewGraph[ledger]().
		AddNode("open", visit("open")).
		AddNode("moderate", visit("moderate")).
		AddEdge("open", "moderate").
		AddConditionalEdge("moderate", func(Context, ledger) string { return "retry" }, map[string]string{"stop": END}).
		SetEntry("open")

	result, err := mustCompile(t, g).Run(background(), ledger{})

	require.ErrorIs(t, err, ErrUnmappedRoute)
	var routerErr *RouterError
	require.ErrorAs(t, err, &routerErr)
	assert.Equal(t, "moderate", routerErr.FromNode)
	assert.Equal(t, "retry", routerErr.Returned)
	assert.Equal(t, []string{"open", "moderate"}, result.Visited)
}

func TestRun_NodeWithoutOutgoingEdge(t *testing.T) {
	g := NewGraph[ledger]().
		AddNode("moderate", visit("moderate")).
		AddNode("dead", visit("dead")).
		AddConditionalEdge("moderate", func(Context, ledger) string { return "dead" }, map[string]string{
			"dead": "dead",
			"stop": END,
		}).
		SetEntry("moderate")

	_, err := mustCompile(t, g).Run(background(), ledger{})

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "dead", nodeErr.NodeID)
	assert.Equal(t, "routing", nodeErr.Op)
}

// TestRun_LongLoopsAreUnbounded plays enough rounds that a recursive
// executor or a default iteration cap would fail.
func TestRun_LongLoopsAreUnbounded(t *testing.T) {
	count := func(_ Context, s ledger) (ledger, error) {
		s.Rounds++
		return s, nil
	}
	g := NewGraph[ledger]().
		AddNode("moderate", passthrough).
		AddNode("speak", count).
		AddConditionalEdge("moderate", roundRouter, map[string]string{"again": "speak", "stop": END}).
		AddEdge("speak", "moderate").
		SetEntry("moderate")

	result, err := mustCompile(t, g).Run(background(), ledger{Limit: 150_000})
	require.NoError(t, err)
	assert.Equal(t, 150_000, result.Rounds)
}

func passthrough(_ Context, s ledger) (ledger, error) { return s, nil }

func TestRun_MaxIterationsIsOptIn(t *testing.T) {
	_, err := mustCompile(t, moderatedGraph()).Run(background(), ledger{Limit: 100}, WithMaxIterations(5))

	require.ErrorIs(t, err, ErrMaxIterations)
	var maxErr *MaxIterationsError
	require.ErrorAs(t, err, &maxErr)
	assert.Equal(t, 5, maxErr.Max)
	assert.Equal(t, "moderate", maxErr.LastNodeID)
	assert.Equal(t, 2, maxErr.State.(ledger).Rounds)
}

func TestRun_NilContext(t *testing.T) {
	var ctx Context
	_, err := mustCompile(t, moderatedGraph()).Run(ctx, ledger{})
	assert.ErrorIs(t, err, ErrNilContext)
}

type requestKey struct{}

func TestRun_NodesAndRoutersSeeTheirContext(t *testing.T) {
	var (
		seen    []string
		routeID string
	)
	record := func(ctx Context, s ledger) (ledger, error) {
		seen = append(seen, fmt.Sprintf("%s/%s/%v", ctx.RunID(), ctx.NodeID(), ctx.Value(requestKey{})))
		assert.NotNil(t, ctx.Logger())
		return s, nil
	}
	g := NewGraph[ledger]().
		AddNode("open", record).
		AddNode("moderate", record).
		AddEdge("open", "moderate").
		AddConditionalEdge("moderate", func(ctx Context, _ ledger) string {
			routeID = ctx.NodeID()
			return "stop"
		}, map[string]string{"stop": END}).
		SetEntry("open")

	parent := context.WithValue(context.Background(), requestKey{}, "req-1")
	_, err := mustCompile(t, g).Run(NewContext(parent, WithContextRunID("run-7")), ledger{})
	require.NoError(t, err)

	assert.Equal(t, []string{"run-7/open/req-1", "run-7/moderate/req-1"}, seen)
	assert.Equal(t, "moderate", routeID)
}

func TestRun_CompiledGraphIsShareable(t *testing.T) {
	compiled := mustCompile(t, moderatedGraph())

	var wg sync.WaitGroup
	results := make([]ledger, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = compiled.Run(background(), ledger{Limit: i})
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, i, results[i].Rounds)
		assert.Len(t, results[i].Visited, 2*i+3)
	}
}

func TestNewContext(t *testing.T) {
	ctx := NewContext(context.Background())
	_, err := uuid.Parse(ctx.RunID())
	assert.NoError(t, err, "generated run IDs are UUIDs")
	assert.Empty(t, ctx.NodeID())
	assert.NotNil(t, ctx.Logger())

	ctx = NewContext(context.Background(), WithLogger(nil), WithContextRunID("run-1"))
	assert.NotNil(t, ctx.Logger(), "nil logger keeps the default")
	assert.Equal(t, "run-1", ctx.RunID())

	parent, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	ctx = NewContext(parent)
	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
