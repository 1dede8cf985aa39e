package orchestrator

import (
	"context"

	"github.com/randalmurphal/debategraph/pkg/debate"
	"github.com/randalmurphal/debategraph/pkg/events"
	"github.com/randalmurphal/debategraph/pkg/llm"
	"github.com/randalmurphal/debategraph/pkg/turnstream"
)

// Status narration.
const (
	StatusModeratorThinking = "Super Agent is evaluating the debate..."
	StatusModeratorDone     = "Super Agent decision complete."
	StatusIntentsStarted    = "Agents are declaring speak intentions..."
	StatusIntentsDone       = "Speak intentions collected."
	StatusFinalStarted      = "Final Decision Agent is generating the conclusion..."
	StatusFinalDone         = "Final decision generated."
)

// relay turns the deltas and steps of one debate run into stream events.
// It runs on the graph's goroutine.
type relay struct {
	ctx    context.Context
	sink   events.Sink
	cancel context.CancelCauseFunc

	parser   *turnstream.Parser
	lastNode string

	// err is the first sink failure. Once set, nothing more is emitted.
	err error
}

func newRelay(ctx context.Context, sink events.Sink, cancel context.CancelCauseFunc) *relay {
	return &relay{ctx: ctx, sink: sink, cancel: cancel, parser: turnstream.New()}
}

// observe handles a model delta.
func (r *relay) observe(d llm.Delta) {
	switch d.Node {
	case debate.NodeSuperAgent:
		r.enter(d.Node, StatusModeratorThinking)
	case debate.NodeCollectIntents:
		r.enter(d.Node, StatusIntentsStarted)
	case debate.NodeExecuteTurn:
		r.enter(d.Node, "")
		r.turn(d)
	case debate.NodeFinalDecision:
		r.enter(d.Node, StatusFinalStarted)
		r.turn(d)
	}
}

// completed handles the end of a graph node.
func (r *relay) completed(nodeID string) {
	switch nodeID {
	case debate.NodeSuperAgent:
		r.status(StatusModeratorDone)
	case debate.NodeCollectIntents:
		r.status(StatusIntentsDone)
	case debate.NodeFinalDecision:
		r.status(StatusFinalDone)
	}
}

// enter announces a node the first time one of its deltas arrives.
func (r *relay) enter(node, status string) {
	if node == r.lastNode {
		return
	}
	r.lastNode = node
	if status != "" {
		r.status(status)
	}
}

// turn feeds an agent turn through the parser. The parser ignores
// anything after END; a fresh one takes over when the invocation ends.
func (r *relay) turn(d llm.Delta) {
	var evs []turnstream.Event
	if d.Done {
		evs = r.parser.Finish()
	} else {
		evs = r.parser.Feed(d.Content)
	}

	for _, ev := range evs {
		switch ev.Type {
		case turnstream.EventStart:
			r.emit(events.New(events.AgentResponseStart, map[string]string{"agent": ev.Agent, "emotion": ev.Emotion}))
		case turnstream.EventToken:
			r.emit(events.New(events.AgentResponseToken, map[string]string{"content": ev.Text}))
		case turnstream.EventEnd:
			r.emit(events.New(events.AgentResponseEnd, nil))
		}
	}

	if d.Done {
		r.parser = turnstream.New()
	}
}

func (r *relay) status(msg string) {
	r.emit(events.New(events.Status, map[string]string{"message": msg}))
}

func (r *relay) emit(e events.Event) {
	if r.err != nil {
		return
	}
	if err := r.sink.Emit(r.ctx, e); err != nil {
		r.err = err
		r.cancel(err)
	}
}
