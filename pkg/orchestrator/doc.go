// Package orchestrator drives the creation and debate graphs for callers
// and turns their progress into stream events.
//
// Creator builds a debate from a topic: it titles the debate, runs the
// agent creation graph and saves the resulting cast. Runner runs debate
// turns until the final decision, relaying model output through a
// turnstream parser per agent turn. A debate runs at most once at a time;
// distinct debates run concurrently through RunMany.
package orchestrator
