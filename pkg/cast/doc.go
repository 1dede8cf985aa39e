// Package cast builds the agent creation graph, which turns a debate topic
// into a cast of expanded personas.
//
// The graph asks the model for a roster of short stubs, then expands one
// stub per iteration until the cursor passes the last stub:
//
//	Connect to Current Organization
//	Prepare Initial Agents Prompt
//	Generate Initial Agents
//	Prepare Agent Expansion Prompt  <--+
//	Expand Single Agent                | CONTINUE
//	Move To Next Agent  ---------------+
//	        | STOP
//	       END
//
// State.Personas decodes the expanded texts once the run is complete.
package cast
