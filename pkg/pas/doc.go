/*
Package pas implements the line-oriented PAS text protocol spoken by debate
agents.

PAS messages are sequences of "KEY: value" lines terminated by a line equal
to END. Keys are matched case-insensitively. Three shapes are understood:

  - Moderator decisions (AGENT, TASK, REASONING, NEXT AGENT), decoded into
    the closed Decision variant: Continue, RequestSpeakIntent or
    FinalDecision.
  - Persona rosters: zero or more blocks delimited by standalone AGENT and
    END lines, decoded into ordered field maps and then Persona values.
  - Speak intents (AGENT, WANT_TO_SPEAK, EMOTION, REASON, PRIORITY SCORE),
    decoded best-effort.

# Decisions

	d, err := pas.DecodeDecision(text)
	if err != nil {
	    // *pas.DecodeError; errors.Is(err, pas.ErrUnknownTask) etc.
	}
	switch d := d.(type) {
	case pas.Continue:
	    speak(d.Next)
	case pas.RequestSpeakIntent:
	    collect()
	case pas.FinalDecision:
	    conclude()
	}

EncodeDecision renders a decision with the canonical template, and decoding
the result yields the same decision.

# Rosters

	blocks := pas.ParseRoster(text)
	for _, fields := range blocks {
	    p := pas.PersonaFromFields(fields)
	}

SplitStubs cuts a raw roster into one text per stub persona, tolerating the
layouts models commonly produce.
*/
package pas
