package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// bracePattern matches ${NAME}.
	bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

	// dollarPattern matches $NAME followed by a non-word character or the end.
	dollarPattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)(?:\b|$)`)
)

// MissingAction specifies how to handle missing variables.
type MissingAction int

const (
	// MissingKeep leaves the placeholder as-is. This is the default.
	MissingKeep MissingAction = iota

	// MissingEmpty replaces the placeholder with an empty string.
	MissingEmpty

	// MissingError reports an UndefinedVariableError.
	MissingError
)

// Option configures an Expander.
type Option func(*Expander)

// WithMissingAction sets how missing variables are handled.
func WithMissingAction(action MissingAction) Option {
	return func(e *Expander) { e.missingAction = action }
}

// WithDollarStyle enables $NAME expansion in addition to ${NAME}.
// It is off by default because debate text routinely contains dollar amounts.
func WithDollarStyle(enabled bool) Option {
	return func(e *Expander) { e.dollarStyle = enabled }
}

// Expander substitutes variables into templates. Each pattern is expanded
// in a single pass, so substituted values are never expanded again.
//
// Expander is safe for concurrent use after construction.
type Expander struct {
	missingAction MissingAction
	dollarStyle   bool
}

// NewExpander creates an Expander.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{missingAction: MissingKeep}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand substitutes vars into s.
func (e *Expander) Expand(s string, vars map[string]string) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	replace := func(name, match string) string {
		if val, ok := vars[name]; ok {
			return val
		}
		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = append(missing, name)
			return match
		default:
			return match
		}
	}

	result := bracePattern.ReplaceAllStringFunc(s, func(match string) string {
		return replace(match[2:len(match)-1], match)
	})
	if e.dollarStyle {
		result = dollarPattern.ReplaceAllStringFunc(result, func(match string) string {
			return replace(match[1:], match)
		})
	}

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// MustExpand is Expand that panics on error.
func (e *Expander) MustExpand(s string, vars map[string]string) string {
	result, err := e.Expand(s, vars)
	if err != nil {
		panic(fmt.Sprintf("prompt: %v", err))
	}
	return result
}

// UndefinedVariableError is returned under MissingError when variables
// are not found.
type UndefinedVariableError struct {
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

// strict fails on any placeholder left unfilled. Templates in this package
// are rendered with it, so a missing variable is a programming error.
var strict = NewExpander(WithMissingAction(MissingError))

func render(tmpl string, vars map[string]string) string {
	return strict.MustExpand(tmpl, vars)
}
