// Package diag implements the diagnostic taxonomy and reporting format
// (spec.md §7): one Error per problem, carrying a source Position and a
// Kind, collected into a run-wide ErrorList that never aborts assembly
// early.
package diag

import (
	"fmt"
	"strings"

	"github.com/tstword/mipsasm/internal/token"
)

// Kind categorizes a diagnostic by the taxonomy in spec.md §7.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Semantic
	Symbolic
	Resource
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical"
	case Syntactic:
		return "syntax"
	case Semantic:
		return "semantic"
	case Symbolic:
		return "symbol"
	case Resource:
		return "resource"
	default:
		return "error"
	}
}

// Error is one diagnostic, positioned in source.
type Error struct {
	Pos     token.Position
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: error: %s", e.Pos, e.Message)
}

// New builds an Error.
func New(pos token.Position, kind Kind, format string, args ...any) *Error {
	return &Error{Pos: pos, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// List aggregates every non-fatal diagnostic produced during a run. The
// driver keeps one List for the whole assembly so multiple errors can be
// reported in a single pass (spec.md §7's propagation policy).
type List struct {
	Errors []*Error
}

// Add appends err to the list.
func (l *List) Add(err *Error) { l.Errors = append(l.Errors, err) }

// HasErrors reports whether any diagnostic was recorded.
func (l *List) HasErrors() bool { return len(l.Errors) > 0 }

// Error implements the error interface, rendering one line per
// diagnostic.
func (l *List) Error() string {
	var sb strings.Builder
	for _, e := range l.Errors {
		sb.WriteString(e.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}
