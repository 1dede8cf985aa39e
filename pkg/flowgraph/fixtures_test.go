package flowgraph

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// ledger records the path a run takes. Limit bounds the rounds played by
// the moderated graphs.
type ledger struct {
	Visited []string
	Rounds  int
	Limit   int
}

func visit(name string) NodeFunc[ledger] {
	return func(_ Context, s ledger) (ledger, error) {
		s.Visited = append(slices.Clip(s.Visited), name)
		return s, nil
	}
}

func playRound(_ Context, s ledger) (ledger, error) {
	s.Rounds++
	s.Visited = append(slices.Clip(s.Visited), "speak")
	return s, nil
}

func failWith(err error) NodeFunc[ledger] {
	return func(_ Context, s ledger) (ledger, error) {
		return s, err
	}
}

func panicWith(v any) NodeFunc[ledger] {
	return func(_ Context, s ledger) (ledger, error) {
		panic(v)
	}
}

func roundRouter(_ Context, s ledger) string {
	if s.Rounds >= s.Limit {
		return "stop"
	}
	return "again"
}

// moderatedGraph is open, then moderate and speak alternating until Limit
// rounds, then close.
func moderatedGraph() *Graph[ledger] {
	return NewGraph[ledger]().
		AddNode("open", visit("open")).
		AddNode("moderate", visit("moderate")).
		AddNode("speak", playRound).
		AddNode("close", visit("close")).
		AddEdge("open", "moderate").
		AddConditionalEdge("moderate", roundRouter, map[string]string{
			"again": "speak",
			"stop":  "close",
		}).
		AddEdge("speak", "moderate").
		AddEdge("close", END).
		SetEntry("open")
}

func mustCompile[S any](t *testing.T, g *Graph[S]) *CompiledGraph[S] {
	t.Helper()
	compiled, err := g.Compile()
	require.NoError(t, err)
	return compiled
}

func background() Context {
	return NewContext(context.Background())
}
