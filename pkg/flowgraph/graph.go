package flowgraph

import (
	"fmt"
	"maps"
	"strings"
	"sync"
)

// Graph collects nodes and edges until Compile turns it into an
// immutable CompiledGraph. Builder methods chain and panic on misuse
// that can be detected immediately; everything else is reported by
// Compile.
//
//	g := flowgraph.NewGraph[State]().
//	    AddNode("moderate", moderate).
//	    AddNode("speak", speak).
//	    AddEdge("speak", "moderate").
//	    AddConditionalEdge("moderate", decide, map[string]string{
//	        "continue": "speak",
//	        "finish":   flowgraph.END,
//	    }).
//	    SetEntry("moderate")
//
// A Graph may be built from several goroutines, but it is normally
// assembled once by a constructor function.
type Graph[S any] struct {
	mu         sync.RWMutex
	nodes      map[string]NodeFunc[S]
	order      []string
	edges      map[string][]string
	routers    map[string]conditionalEdge[S]
	entryPoint string
}

// NewGraph returns an empty builder for state type S.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:   map[string]NodeFunc[S]{},
		edges:   map[string][]string{},
		routers: map[string]conditionalEdge[S]{},
	}
}

// checkNodeID returns the panic message for an unusable node ID, or "".
// Display names such as "Super Agent Decision" are fine; END in any case
// is reserved.
func checkNodeID(id string) string {
	switch {
	case id == "":
		return "flowgraph: node ID cannot be empty"
	case strings.EqualFold(id, "end") || strings.EqualFold(id, END):
		return "flowgraph: node ID cannot be reserved word 'END'"
	case strings.ContainsAny(id, "\t\n\r") || strings.TrimSpace(id) != id:
		return "flowgraph: node ID cannot contain tabs, line breaks or surrounding spaces"
	}
	return ""
}

// AddNode registers fn under id. It panics on an invalid or duplicate id
// or a nil fn.
func (g *Graph[S]) AddNode(id string, fn NodeFunc[S]) *Graph[S] {
	if msg := checkNodeID(id); msg != "" {
		panic(msg)
	}
	if fn == nil {
		panic("flowgraph: node function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, dup := g.nodes[id]; dup {
		panic(fmt.Sprintf("flowgraph: duplicate node ID: %s", id))
	}
	g.nodes[id] = fn
	g.order = append(g.order, id)
	return g
}

// AddEdge adds an unconditional edge; to may be END. Endpoints are checked
// by Compile, so edges can be declared before their nodes. When a node has
// several plain edges the first one wins.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdge routes out of from by label: router picks a label and
// routes maps it to a node ID or END. The table is copied. A conditional
// edge overrides any plain edges of the same node, and a label missing
// from the table fails the run with ErrUnmappedRoute.
func (g *Graph[S]) AddConditionalEdge(from string, router RouterFunc[S], routes map[string]string) *Graph[S] {
	if router == nil {
		panic("flowgraph: router function cannot be nil")
	}
	if len(routes) == 0 {
		panic("flowgraph: route table cannot be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.routers[from] = conditionalEdge[S]{router: router, routes: maps.Clone(routes)}
	return g
}

// SetEntry names the first node to run. The last call wins.
func (g *Graph[S]) SetEntry(id string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entryPoint = id
	return g
}
