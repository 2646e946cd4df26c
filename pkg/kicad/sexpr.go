package kicad

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// sexprLexer tokenizes KiCad s-expressions. Everything that is not a
// parenthesis or a quoted string is an atom.
var sexprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Paren", Pattern: `[()]`},
	{Name: "Atom", Pattern: `[^\s()"]+`},
})

// Node is either an atom or a nested list
type Node struct {
	Atom *string `  @(Atom | String)`
	List *List   `| @@`
}

// List is a parenthesized expression such as (at 100 50 90)
type List struct {
	Items []*Node `"(" @@* ")"`
}

var sexprParser = participle.MustBuild[List](
	participle.Lexer(sexprLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// parseSexpr reads one top-level list
func parseSexpr(r io.Reader) (*List, error) {
	root, err := sexprParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}
	return root, nil
}

// Name returns the leading atom of the list (the node type)
func (l *List) Name() string {
	s, _ := l.String(0)
	return s
}

// Find returns the first child list with the given name
// Example: Find("at") finds (at 100 50) in a list
func (l *List) Find(key string) (*List, bool) {
	for _, item := range l.Items {
		if item.List != nil && item.List.Name() == key {
			return item.List, true
		}
	}
	return nil, false
}

// FindAll returns every child list with the given name
func (l *List) FindAll(key string) []*List {
	var out []*List
	for _, item := range l.Items {
		if item.List != nil && item.List.Name() == key {
			out = append(out, item.List)
		}
	}
	return out
}

// String extracts the atom at index. Index 0 is the key.
func (l *List) String(index int) (string, error) {
	if index < 0 || index >= len(l.Items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(l.Items))
	}
	if a := l.Items[index].Atom; a != nil {
		return *a, nil
	}
	return "", fmt.Errorf("expected atom at index %d, got list", index)
}

// Float extracts a numeric atom
func (l *List) Float(index int) (float64, error) {
	s, err := l.String(index)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

// Has reports whether the list contains the atom anywhere after its key
func (l *List) Has(atom string) bool {
	for i, item := range l.Items {
		if i > 0 && item.Atom != nil && *item.Atom == atom {
			return true
		}
	}
	return false
}

// Value returns the first atom of a named child, e.g. "R1" for
// (lib_id "R1"). The second result is false when the child is missing.
func (l *List) Value(key string) (string, bool) {
	child, ok := l.Find(key)
	if !ok {
		return "", false
	}
	s, err := child.String(1)
	return s, err == nil
}

// XY reads the two numbers following the key, as in (xy 1 2) or (at 1 2 90)
func (l *List) XY() (x, y float64, err error) {
	if x, err = l.Float(1); err != nil {
		return 0, 0, err
	}
	if y, err = l.Float(2); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
