package query

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// MalformedQueryError reports a query that failed to compile into canonical
// form: a missing SELECT/FROM, an empty FROM clause, or an unparsable WHERE
// predicate.
type MalformedQueryError struct {
	Position lexer.Position
	Message  string
}

func (e *MalformedQueryError) Error() string {
	if (e.Position == lexer.Position{}) {
		return fmt.Sprintf("malformed query: %s", e.Message)
	}
	return fmt.Sprintf("malformed query at %s: %s", e.Position, e.Message)
}

func NewMalformedQuery(pos lexer.Position, format string, args ...any) *MalformedQueryError {
	return &MalformedQueryError{Position: pos, Message: fmt.Sprintf(format, args...)}
}

// ArityMismatchError is an internal-invariant violation: within a single
// compiled query, the same relation appeared with two different arities.
// This is a bug in Compile, not a user-facing input error.
type ArityMismatchError struct {
	Relation string
	Want     int
	Got      int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("internal invariant violated: relation %q has arity %d in one atom and %d in another", e.Relation, e.Want, e.Got)
}
