// Package events encodes the progress stream of debate creation and debate
// runs, and delivers it to sinks: an HTTP response, a NATS subject, or
// anything implementing Sink.
//
// Every event is framed as
//
//	event: <name>
//	data: <json object>
//
// followed by a blank line.
package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Event names.
const (
	DebateCreated       = "debate_created"
	AgentSaved          = "agent_saved"
	DebateSetupComplete = "debate_setup_complete"
	DebateStarted       = "debate_started_or_continued"
	Status              = "status"
	AgentResponseStart  = "agent_response_start"
	AgentResponseToken  = "agent_response_token"
	AgentResponseEnd    = "agent_response_end"
	Error               = "error"
)

// Event is one named stream entry. Data must marshal to a JSON object;
// nil is sent as {}.
type Event struct {
	Name string
	Data any
}

// New returns an event.
func New(name string, data any) Event {
	return Event{Name: name, Data: data}
}

// Encode writes e in the stream framing.
func Encode(w io.Writer, e Event) error {
	frame, err := Marshal(e)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// Marshal returns the framed bytes of e.
func Marshal(e Event) ([]byte, error) {
	data := e.Data
	if data == nil {
		data = struct{}{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("events: marshal %s: %w", e.Name, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(e.Name) + len(payload) + 16)
	buf.WriteString("event: ")
	buf.WriteString(e.Name)
	buf.WriteString("\ndata: ")
	buf.Write(payload)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}

// Decode reads every framed event from r. Data is decoded into a map.
func Decode(r io.Reader) ([]Event, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var out []Event
	for _, frame := range strings.Split(string(raw), "\n\n") {
		if strings.TrimSpace(frame) == "" {
			continue
		}
		var e Event
		for _, line := range strings.Split(frame, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				e.Name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				var data map[string]any
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &data); err != nil {
					return out, fmt.Errorf("events: decode %s: %w", e.Name, err)
				}
				e.Data = data
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// NodeEventName turns a graph node name into its event name:
// "Generate Initial Agents" becomes "generate_initial_agents".
func NodeEventName(nodeID string) string {
	return strings.ReplaceAll(strings.ToLower(nodeID), " ", "_")
}

// StatePayload reduces a state value to the fields clients receive: it
// marshals v to JSON and keeps only string, number, list and object values.
func StatePayload(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("events: state payload: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("events: state payload: %w", err)
	}

	out := make(map[string]any, len(fields))
	for k, val := range fields {
		switch val.(type) {
		case string, json.Number, []any, map[string]any:
			out[k] = val
		}
	}
	return out, nil
}
