package flowgraph

// END is the pseudo-node that finishes a run. Use it as an edge or route
// target; it cannot be added as a node.
const END = "__end__"

// NodeFunc transforms the state. State arrives by value and the returned
// value is what the next node sees, so nodes copy rather than share
// slices and maps they change.
//
//	func speak(ctx flowgraph.Context, s DebateState) (DebateState, error) {
//	    s.Turns++
//	    return s, nil
//	}
type NodeFunc[S any] func(ctx Context, state S) (S, error)

// RouterFunc chooses a label from the route table of a conditional edge.
// It must not modify state.
type RouterFunc[S any] func(ctx Context, state S) string

type conditionalEdge[S any] struct {
	router RouterFunc[S]
	routes map[string]string
}
