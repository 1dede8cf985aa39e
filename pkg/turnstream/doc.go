// Package turnstream converts the streamed text of one agent turn into
// start, token and end events.
//
// A turn has the shape
//
//	AGENT: <name>
//	EMOTION: <emotion>
//	RESPONSE: <response text...>
//	END
//
// Deltas may be cut anywhere. The concatenated token payloads always equal
// the text between "RESPONSE:" and the END line, whatever the chunking. The
// END line holds nothing but END and blanks; a line such as "ENDORSED by
// many" is response text. A Parser serves exactly one turn; call Reset or
// allocate a new one for the next turn.
package turnstream
