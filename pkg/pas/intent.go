package pas

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMalformedIntent indicates a speak intent without an agent or a
// WANT_TO_SPEAK answer.
var ErrMalformedIntent = errors.New("malformed speak intent")

// SpeakIntent is a participant's answer to a speak-intent request.
type SpeakIntent struct {
	Agent       string
	WantToSpeak bool
	Emotion     string
	Reason      string
	// Priority is the 1-10 score, or 0 when absent or not a number.
	Priority int
}

// DecodeSpeakIntent parses a speak-intent answer.
//
// Decoding is lenient: unknown lines are ignored and an unparseable priority
// becomes 0. The returned intent holds whatever was decoded even when the
// error is ErrMalformedIntent.
func DecodeSpeakIntent(text string) (SpeakIntent, error) {
	var si SpeakIntent
	var sawAnswer bool

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
			si.Agent = valueOf(line)
		case strings.HasPrefix(lower, "want_to_speak:"), strings.HasPrefix(lower, "want to speak:"):
			answer := strings.ToLower(valueOf(line))
			si.WantToSpeak = answer == "yes" || answer == "true"
			sawAnswer = true
		case strings.HasPrefix(lower, "emotion:"):
			si.Emotion = valueOf(line)
		case strings.HasPrefix(lower, "reason:"):
			si.Reason = valueOf(line)
		case strings.HasPrefix(lower, "priority score:"), strings.HasPrefix(lower, "priority:"):
			if n, err := strconv.Atoi(valueOf(line)); err == nil {
				si.Priority = n
			}
		}
	}

	if si.Agent == "" || !sawAnswer {
		return si, ErrMalformedIntent
	}
	return si, nil
}
