package flowgraph

import (
	"maps"
	"slices"
)

// CompiledGraph is the frozen, runnable form of a Graph. It keeps no
// per-run state, so one value serves any number of concurrent Run and
// Stream calls. The introspection methods return copies or read-only
// views.
type CompiledGraph[S any] struct {
	nodes        map[string]NodeFunc[S]
	order        []string
	edges        map[string][]string
	routers      map[string]conditionalEdge[S]
	entryPoint   string
	predecessors map[string][]string
}

func (cg *CompiledGraph[S]) EntryPoint() string { return cg.entryPoint }

// NodeIDs lists the nodes in declaration order.
func (cg *CompiledGraph[S]) NodeIDs() []string { return slices.Clone(cg.order) }

func (cg *CompiledGraph[S]) HasNode(id string) bool {
	_, ok := cg.nodes[id]
	return ok
}

// Successors lists the plain-edge targets of id. Route targets are not
// included; see Routes.
func (cg *CompiledGraph[S]) Successors(id string) []string {
	if id == END {
		return nil
	}
	return cg.edges[id]
}

// Routes copies the label table of a conditional node, or returns nil.
func (cg *CompiledGraph[S]) Routes(id string) map[string]string {
	if ce, ok := cg.routers[id]; ok {
		return maps.Clone(ce.routes)
	}
	return nil
}

// Predecessors lists the nodes with an edge or route into id.
func (cg *CompiledGraph[S]) Predecessors(id string) []string { return cg.predecessors[id] }

func (cg *CompiledGraph[S]) IsConditional(id string) bool {
	_, ok := cg.routers[id]
	return ok
}
