/*
Package flowgraph is the graph engine the debate workflows run on.

A graph is a set of named nodes, each a function from state to state, joined
by edges. An edge either names a single successor (or END) or is conditional:
a router inspects the state and returns a label, and a route table maps that
label to the successor.

# Building

	graph := flowgraph.NewGraph[State]().
	    AddNode("decide", decide).
	    AddNode("turn", turn).
	    AddNode("conclude", conclude).
	    AddConditionalEdge("decide", route, map[string]string{
	        "continue":       "turn",
	        "final_decision": "conclude",
	    }).
	    AddEdge("turn", "decide").
	    AddEdge("conclude", flowgraph.END).
	    SetEntry("decide")

	compiled, err := graph.Compile()

Compile validates the entry point, every edge and route target, and that END
is reachable. A compiled graph is immutable and can serve many runs at once.

# Running

Run executes to completion and returns the final state. Stream yields a Step
after every node, which is how callers publish progress while a run is in
flight:

	for step := range compiled.Stream(ctx, state) {
	    if step.Err != nil {
	        return step.Err
	    }
	    publish(step.NodeID, step.State)
	}

Execution is a loop, not recursion, and is unbounded unless WithMaxIterations
is given. Nodes of one run execute strictly one at a time.

# Errors

Node failures are wrapped in NodeError, panics in PanicError, and cancellation
of the context in CancellationError. A router returning a label that is not in
its table fails the run with a RouterError wrapping ErrUnmappedRoute; nothing
is retried.
*/
package flowgraph
