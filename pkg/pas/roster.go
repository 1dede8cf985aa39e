package pas

import "strings"

// minStubLength is the shortest text SplitStubs treats as a real stub when
// it appears at either end of the split.
const minStubLength = 10

// ParseRoster decodes AGENT ... END blocks into field maps, in order.
//
// Inside a block, each "key: value" line is split on its first colon; the key
// is trimmed, lower-cased and has spaces replaced by underscores. Lines
// without a colon are ignored. Blocks with no fields and a block left open
// at the end of the text are dropped.
func ParseRoster(text string) []map[string]string {
	var blocks []map[string]string
	var current map[string]string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.EqualFold(line, "AGENT"):
			current = map[string]string{}
			continue
		case strings.EqualFold(line, "END"):
			if len(current) > 0 {
				blocks = append(blocks, current)
			}
			current = nil
			continue
		case line == "" || current == nil:
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
		if key == "" {
			continue
		}
		current[key] = strings.TrimSpace(value)
	}

	return blocks
}

// SplitStubs cuts a generated roster into one raw text per stub persona.
//
// The first layout that matches wins: blocks separated by blank lines, else
// blocks ending in an END line (the text after the last END is discarded),
// else blocks introduced by an AGENT line (the text before the first is
// discarded). Afterwards a trailing piece shorter than ten characters is
// dropped as noise, or failing that a leading one.
func SplitStubs(text string) []string {
	var parts []string
	switch {
	case strings.Contains(text, "\n\n"):
		parts = strings.Split(text, "\n\n")
	case strings.Contains(text, "\nEND"):
		parts = strings.Split(text, "\nEND")
		parts = parts[:len(parts)-1]
	default:
		parts = strings.Split(text, "AGENT\n")
		parts = parts[1:]
	}

	if len(parts) == 0 {
		return nil
	}
	if len(parts[len(parts)-1]) < minStubLength {
		parts = parts[:len(parts)-1]
	} else if len(parts[0]) < minStubLength {
		parts = parts[1:]
	}

	if len(parts) == 0 {
		return nil
	}
	return parts
}
