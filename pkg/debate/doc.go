/*
Package debate builds the debate turn graph: a moderator loop over the
flowgraph engine.

	Connect to Current Organization
	        |
	Super Agent Decision  <-----------------+
	        |                               |
	        +-- continue -------------> Execute Debate Turn
	        +-- request_speak_intent -> Collect Speak Intentions
	        +-- final_decision -------> Generate Final Decision -> END

Every node reads the debate memory, invokes the model once per agent and
persists each raw answer as a debate message. The moderator's answer is
decoded by package pas; a malformed decision or a next agent outside the
debate's participants ends the run with an error.

A debate run is driven by the caller:

	graph, err := debate.NewGraph(debate.Deps{Store: st, Invoker: inv})
	ctx := flowgraph.NewContext(context.Background())
	for step := range graph.Stream(ctx, debate.State{OrgID: org, DebateID: id}) {
		...
	}

The graph value is immutable and may serve any number of concurrent runs,
one State per run.
*/
package debate
