package turnstream

import "strings"

const (
	responseMarker = "RESPONSE:"

	// endMarker opens a candidate END line. It ends the turn only when the
	// rest of that line is blank, so RECOMMENDATION or a line starting with
	// ENDORSEMENTS stays part of the response.
	endMarker = "\nEND"
)

// State is the parser's position within a turn.
type State int

// Parser states.
const (
	StateCollectingHeader State = iota
	StateInResponse
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCollectingHeader:
		return "collecting_header"
	case StateInResponse:
		return "in_response"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// EventType identifies a parser event.
type EventType string

// Event types.
const (
	EventStart EventType = "start"
	EventToken EventType = "token"
	EventEnd   EventType = "end"
)

// Event is emitted by Feed and Finish.
type Event struct {
	Type EventType

	// Agent and Emotion are set on start events.
	Agent   string
	Emotion string

	// Text is set on token events.
	Text string
}

// Parser is the per-turn state machine. It is not safe for concurrent use.
type Parser struct {
	state   State
	header  strings.Builder
	pending string
	agent   string
	emotion string
}

// New returns a parser waiting for a turn header.
func New() *Parser {
	return &Parser{}
}

// State returns the current state.
func (p *Parser) State() State { return p.state }

// Done reports whether the end event has been emitted.
func (p *Parser) Done() bool { return p.state == StateDone }

// Agent returns the AGENT header value seen so far.
func (p *Parser) Agent() string { return p.agent }

// Emotion returns the EMOTION header value seen so far.
func (p *Parser) Emotion() string { return p.emotion }

// Reset prepares the parser for a new turn.
func (p *Parser) Reset() {
	p.state = StateCollectingHeader
	p.header.Reset()
	p.pending = ""
	p.agent = ""
	p.emotion = ""
}

// Feed consumes one delta and returns the events it completes.
// Deltas fed after the end event are ignored.
func (p *Parser) Feed(delta string) []Event {
	switch p.state {
	case StateCollectingHeader:
		return p.feedHeader(delta)
	case StateInResponse:
		return p.feedResponse(delta)
	default:
		return nil
	}
}

// Finish ends the turn when the stream closes. An END line cut off by the
// close ends it cleanly; any other held-back text is emitted as a token
// first. A turn that never reached RESPONSE: produces no events.
func (p *Parser) Finish() []Event {
	if p.state != StateInResponse {
		return nil
	}
	var events []Event
	if p.pending != "" && !endLine(p.pending) {
		events = append(events, Event{Type: EventToken, Text: p.pending})
	}
	p.pending = ""
	p.state = StateDone
	return append(events, Event{Type: EventEnd})
}

func (p *Parser) feedHeader(delta string) []Event {
	p.header.WriteString(delta)
	buf := p.header.String()

	idx := strings.Index(buf, responseMarker)
	if idx < 0 {
		p.scanHeader(buf)
		return nil
	}

	p.scanHeader(buf[:idx])
	residual := buf[idx+len(responseMarker):]
	p.header.Reset()
	p.state = StateInResponse

	events := []Event{{Type: EventStart, Agent: p.agent, Emotion: p.emotion}}
	return append(events, p.feedResponse(residual)...)
}

// scanHeader extracts AGENT and EMOTION values from newline-terminated lines.
func (p *Parser) scanHeader(buf string) {
	complete := strings.LastIndexByte(buf, '\n')
	if complete < 0 {
		return
	}
	for _, line := range strings.Split(buf[:complete], "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "agent:"):
			p.agent = strings.TrimSpace(line[len("agent:"):])
		case strings.HasPrefix(lower, "emotion:"):
			p.emotion = strings.TrimSpace(line[len("emotion:"):])
		}
	}
}

func (p *Parser) feedResponse(delta string) []Event {
	text := p.pending + delta
	p.pending = ""

	idx, terminated := findEnd(text)
	if terminated {
		var events []Event
		if idx > 0 {
			events = append(events, Event{Type: EventToken, Text: text[:idx]})
		}
		p.state = StateDone
		return append(events, Event{Type: EventEnd})
	}

	// Hold back an undecided END line, or a suffix that could still grow
	// into one.
	hold := partialSuffix(text, endMarker)
	if idx >= 0 {
		hold = len(text) - idx
	}
	p.pending = text[len(text)-hold:]
	emit := text[:len(text)-hold]
	if emit == "" {
		return nil
	}
	return []Event{{Type: EventToken, Text: emit}}
}

// findEnd returns the index of the first END line in text. terminated is
// false when that line runs to the end of text and so could still turn out
// to be ordinary response text; idx is -1 when there is no candidate.
func findEnd(text string) (idx int, terminated bool) {
	for from := 0; ; {
		i := strings.Index(text[from:], endMarker)
		if i < 0 {
			return -1, false
		}
		i += from
		rest := strings.TrimLeft(text[i+len(endMarker):], " \t")
		switch {
		case rest == "":
			return i, false
		case rest[0] == '\n' || rest[0] == '\r':
			return i, true
		}
		from = i + 1
	}
}

// endLine reports whether s is an END line cut off by the end of the stream.
func endLine(s string) bool {
	return strings.HasPrefix(s, endMarker) && strings.TrimLeft(s[len(endMarker):], " \t") == ""
}

// partialSuffix returns the length of the longest suffix of s that is a
// proper prefix of marker.
func partialSuffix(s, marker string) int {
	for n := min(len(marker)-1, len(s)); n > 0; n-- {
		if strings.HasSuffix(s, marker[:n]) {
			return n
		}
	}
	return 0
}
