// Package sqlast parses the restricted SQL dialect supported by this module:
//
//	SELECT <attr-list> FROM <table-list> [WHERE <eq-pred> (AND <eq-pred>)*]
//
// Keywords are case-insensitive; identifiers are not. Parsing here is purely
// syntactic — alias resolution, variable assignment, and equi-join
// unification happen one layer up in package query.
package sqlast

import (
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Query is the parsed form of a single SELECT statement.
type Query struct {
	Pos lexer.Position

	Select []*Attr      `parser:"\"SELECT\" @@ (',' @@)*"`
	From   []*TableRef  `parser:"\"FROM\" @@ (',' @@)*"`
	Where  []*Predicate `parser:"(\"WHERE\" @@ (\"AND\" @@)*)?"`
}

// Attr is a (possibly qualified) column reference, e.g. "c.name" or "name".
type Attr struct {
	Pos lexer.Position

	Table  string `parser:"(@Ident '.')?"`
	Column string `parser:"@Ident"`
}

// String renders the attribute back in qualified-or-bare form.
func (a *Attr) String() string {
	if a.Table == "" {
		return a.Column
	}
	return a.Table + "." + a.Column
}

// TableRef is a FROM-clause table, optionally aliased ("Customer c" or
// "Customer AS c").
type TableRef struct {
	Pos lexer.Position

	Table string `parser:"@Ident"`
	Alias string `parser:"(\"AS\"? @Ident)?"`
}

// Predicate is a single WHERE equi-join predicate: lhs = rhs.
type Predicate struct {
	Pos lexer.Position

	Left  *Attr `parser:"@@"`
	Right *Attr `parser:"'=' @@"`
}

var (
	// Keyword rules are listed before Ident so that SELECT/FROM/WHERE/AND/AS
	// lex as their own token types instead of being swallowed as ordinary
	// identifiers (and, e.g., mistaken for a table alias).
	sqlLexer = lexer.MustSimple([]lexer.Rule{
		{Name: "Select", Pattern: `(?i)\bSELECT\b`, Action: nil},
		{Name: "From", Pattern: `(?i)\bFROM\b`, Action: nil},
		{Name: "Where", Pattern: `(?i)\bWHERE\b`, Action: nil},
		{Name: "And", Pattern: `(?i)\bAND\b`, Action: nil},
		{Name: "As", Pattern: `(?i)\bAS\b`, Action: nil},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Action: nil},
		{Name: "Punct", Pattern: `[.,=]`, Action: nil},
		{Name: "whitespace", Pattern: `\s+`, Action: nil},
	})

	sqlParser = participle.MustBuild(
		&Query{},
		participle.Lexer(sqlLexer),
		participle.CaseInsensitive("Select", "From", "Where", "And", "As"),
	)
)

// Parse parses a single SQL statement in the restricted dialect described
// by package sqlast's doc comment.
func Parse(r io.Reader) (*Query, error) {
	q := &Query{}
	if err := sqlParser.Parse("", r, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ParseString is a convenience wrapper around Parse for callers that already
// have the SQL text in memory.
func ParseString(sql string) (*Query, error) {
	return Parse(strings.NewReader(sql))
}
