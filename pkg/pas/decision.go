package pas

import (
	"errors"
	"fmt"
	"strings"
)

// Task is the routing task chosen by the moderator.
type Task string

// Moderator tasks.
const (
	TaskContinue           Task = "continue"
	TaskRequestSpeakIntent Task = "request_speak_intent"
	TaskFinalDecision      Task = "final_decision"
)

// Well-known agent names used in decisions.
const (
	// AllAgents is the NEXT AGENT sentinel addressing every participant.
	AllAgents = "ALL"

	// FinalDecisionAgent is the NEXT AGENT value of a final decision.
	FinalDecisionAgent = "Final Decision Agent"

	// SuperAgent is the moderator's name.
	SuperAgent = "Super Agent"
)

// Decode errors.
var (
	// ErrMissingTask indicates the decision carries no TASK line.
	ErrMissingTask = errors.New("decision has no task")

	// ErrUnknownTask indicates a TASK outside the three allowed tasks.
	ErrUnknownTask = errors.New("unknown task")

	// ErrMissingNextAgent indicates a continue decision without a
	// concrete next agent.
	ErrMissingNextAgent = errors.New("continue requires a next agent other than ALL")
)

// DecodeError wraps a decode failure with the offending text.
type DecodeError struct {
	Raw  string
	Task string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Task != "" {
		return fmt.Sprintf("pas: decode decision (task %q): %v", e.Task, e.Err)
	}
	return fmt.Sprintf("pas: decode decision: %v", e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decision is a decoded moderator decision. The set of implementations is
// closed: Continue, RequestSpeakIntent and FinalDecision.
type Decision interface {
	// Task returns the routing task.
	Task() Task
	// NextAgent returns the normalized NEXT AGENT value.
	NextAgent() string
	// Speaker returns the AGENT line value.
	Speaker() string
	// Rationale returns the REASONING line value.
	Rationale() string

	isDecision()
}

// Continue hands the next turn to a single named participant.
type Continue struct {
	Agent     string
	Reasoning string
	Next      string
}

func (Continue) Task() Task { return TaskContinue }
func (d Continue) NextAgent() string { return d.Next }
func (d Continue) Speaker() string { return d.Agent }
func (d Continue) Rationale() string { return d.Reasoning }
func (Continue) isDecision() {}

// RequestSpeakIntent asks every participant whether it wants to speak.
type RequestSpeakIntent struct {
	Agent     string
	Reasoning string
}

func (RequestSpeakIntent) Task() Task { return TaskRequestSpeakIntent }
func (RequestSpeakIntent) NextAgent() string { return AllAgents }
func (d RequestSpeakIntent) Speaker() string { return d.Agent }
func (d RequestSpeakIntent) Rationale() string { return d.Reasoning }
func (RequestSpeakIntent) isDecision() {}

// FinalDecision ends the debate.
type FinalDecision struct {
	Agent     string
	Reasoning string
}

func (FinalDecision) Task() Task { return TaskFinalDecision }
func (FinalDecision) NextAgent() string { return FinalDecisionAgent }
func (d FinalDecision) Speaker() string { return d.Agent }
func (d FinalDecision) Rationale() string { return d.Reasoning }
func (FinalDecision) isDecision() {}

// DecodeDecision parses moderator output.
//
// Lines are trimmed and blank lines skipped. Parsing stops at the first line
// equal to END (any case). Keys are matched by case-insensitive prefix and
// the value is everything after the first colon, trimmed. A repeated key
// keeps its last value.
func DecodeDecision(text string) (Decision, error) {
	var agent, task, reasoning, next string
	var sawTask bool

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if lower == "end" {
			break
		}

		switch {
		case strings.HasPrefix(lower, "agent:"):
			agent = valueOf(line)
		case strings.HasPrefix(lower, "task:"):
			task = strings.ToLower(valueOf(line))
			sawTask = true
		case strings.HasPrefix(lower, "reasoning:"):
			reasoning = valueOf(line)
		case strings.HasPrefix(lower, "next agent:"):
			next = valueOf(line)
		}
	}

	if !sawTask || task == "" {
		return nil, &DecodeError{Raw: text, Err: ErrMissingTask}
	}

	switch Task(task) {
	case TaskContinue:
		if next == "" || strings.EqualFold(next, AllAgents) {
			return nil, &DecodeError{Raw: text, Task: task, Err: ErrMissingNextAgent}
		}
		return Continue{Agent: agent, Reasoning: reasoning, Next: next}, nil
	case TaskRequestSpeakIntent:
		return RequestSpeakIntent{Agent: agent, Reasoning: reasoning}, nil
	case TaskFinalDecision:
		return FinalDecision{Agent: agent, Reasoning: reasoning}, nil
	default:
		return nil, &DecodeError{Raw: text, Task: task, Err: ErrUnknownTask}
	}
}

// EncodeDecision renders d with the canonical moderator template.
func EncodeDecision(d Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "AGENT: %s\n", d.Speaker())
	fmt.Fprintf(&b, "TASK: %s\n", d.Task())
	fmt.Fprintf(&b, "REASONING: %s\n", d.Rationale())
	fmt.Fprintf(&b, "NEXT AGENT: %s\n", d.NextAgent())
	b.WriteString("END")
	return b.String()
}

// valueOf returns the trimmed text after the first colon.
func valueOf(line string) string {
	_, v, _ := strings.Cut(line, ":")
	return strings.TrimSpace(v)
}
