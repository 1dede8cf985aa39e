package flowgraph

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// Compile checks the graph and freezes it. Every problem found is
// reported, joined into one error:
//
//   - no entry point, or an entry point that is not a node
//   - an edge or conditional edge leaving an unknown node
//   - an edge or route targeting something that is neither a node nor END
//   - no path from the entry point to END
//
// Nodes the entry point can never reach only produce a warning log.
func (g *Graph[S]) Compile() (*CompiledGraph[S], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var problems []error
	report := func(err error) { problems = append(problems, err) }

	_, entryKnown := g.nodes[g.entryPoint]
	switch {
	case g.entryPoint == "":
		report(ErrNoEntryPoint)
	case !entryKnown:
		report(fmt.Errorf("%w: %s", ErrEntryNotFound, g.entryPoint))
	}

	for _, from := range slices.Sorted(maps.Keys(g.edges)) {
		if !g.isNode(from) {
			report(fmt.Errorf("%w: edge source '%s' does not exist", ErrNodeNotFound, from))
		}
		for _, to := range g.edges[from] {
			if !g.isTarget(to) {
				report(fmt.Errorf("%w: edge target '%s' does not exist", ErrNodeNotFound, to))
			}
		}
	}

	for _, from := range slices.Sorted(maps.Keys(g.routers)) {
		if !g.isNode(from) {
			report(fmt.Errorf("%w: conditional edge source '%s' does not exist", ErrNodeNotFound, from))
		}
		routes := g.routers[from].routes
		for _, label := range slices.Sorted(maps.Keys(routes)) {
			if to := routes[label]; !g.isTarget(to) {
				report(fmt.Errorf("%w: route %q from '%s' targets '%s'", ErrNodeNotFound, label, from, to))
			}
		}
	}

	preds := g.predecessors()
	if entryKnown && !g.reaches(END, g.entryPoint, preds) {
		report(ErrNoPathToEnd)
	}
	if entryKnown {
		reachable := g.reachableFrom(g.entryPoint)
		for _, id := range g.order {
			if !reachable[id] {
				slog.Warn("node is unreachable from entry", "node_id", id)
			}
		}
	}

	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return g.freeze(preds), nil
}

func (g *Graph[S]) isNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *Graph[S]) isTarget(id string) bool {
	return id == END || g.isNode(id)
}

// next lists every static successor of id. A conditional edge hides the
// plain edges of the same node.
func (g *Graph[S]) next(id string) []string {
	if ce, ok := g.routers[id]; ok {
		return slices.Sorted(maps.Values(ce.routes))
	}
	return g.edges[id]
}

// predecessors maps each target, END included, to the nodes that lead to
// it, in node declaration order.
func (g *Graph[S]) predecessors() map[string][]string {
	preds := map[string][]string{}
	for _, from := range g.order {
		for _, to := range g.next(from) {
			if !slices.Contains(preds[to], from) {
				preds[to] = append(preds[to], from)
			}
		}
	}
	return preds
}

// reaches walks preds backwards from target and reports whether start is
// found.
func (g *Graph[S]) reaches(target, start string, preds map[string][]string) bool {
	seen := map[string]bool{target: true}
	queue := []string{target}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == start {
			return true
		}
		for _, p := range preds[id] {
			if !seen[p] {
				seen[p] = true
				queue = append(queue, p)
			}
		}
	}
	return false
}

func (g *Graph[S]) reachableFrom(start string) map[string]bool {
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, to := range g.next(id) {
			if to != END && !seen[to] {
				seen[to] = true
				queue = append(queue, to)
			}
		}
	}
	return seen
}

// freeze deep-copies the builder so later builder calls cannot leak into
// the compiled graph.
func (g *Graph[S]) freeze(preds map[string][]string) *CompiledGraph[S] {
	cg := &CompiledGraph[S]{
		nodes:        maps.Clone(g.nodes),
		order:        slices.Clone(g.order),
		edges:        make(map[string][]string, len(g.edges)),
		routers:      make(map[string]conditionalEdge[S], len(g.routers)),
		entryPoint:   g.entryPoint,
		predecessors: make(map[string][]string, len(preds)),
	}
	for from, targets := range g.edges {
		cg.edges[from] = slices.Clone(targets)
	}
	for from, ce := range g.routers {
		cg.routers[from] = conditionalEdge[S]{router: ce.router, routes: maps.Clone(ce.routes)}
	}
	for to, from := range preds {
		if to != END {
			cg.predecessors[to] = from
		}
	}
	return cg
}
