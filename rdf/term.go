// Package rdf provides the in-memory triple and quad model used by the
// provenance engine: immutable term value types, a subject-indexed graph,
// a named-graph dataset, and Turtle / N-Quads codecs.
package rdf

import "fmt"

// Kind discriminates the three term categories.
type Kind int

const (
	// KindIRI is an IRI reference.
	KindIRI Kind = iota
	// KindBlank is a blank node with a local label.
	KindBlank
	// KindLiteral is a literal with optional datatype or language tag.
	KindLiteral
)

// XSDString is the implicit datatype of plain literals.
const XSDString = "http://www.w3.org/2001/XMLSchema#string"

// Term is an RDF term. Terms are value types and never mutated after
// construction; they are comparable and safe to use as map keys.
type Term struct {
	Kind     Kind
	Value    string // IRI, blank label, or literal lexical form
	Datatype string // literal datatype IRI; empty for plain/lang literals
	Lang     string // literal language tag
}

// IRI constructs an IRI term.
func IRI(value string) Term {
	return Term{Kind: KindIRI, Value: value}
}

// Blank constructs a blank node term with the given label (without "_:").
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: label}
}

// Literal constructs a plain string literal.
func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// TypedLiteral constructs a literal with an explicit datatype IRI.
func TypedLiteral(value, datatype string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// LangLiteral constructs a language-tagged literal.
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: lang}
}

// IsIRI reports whether the term is an IRI reference.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether the term is a blank node.
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// IsLiteral reports whether the term is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// String returns the N-Triples form of the term.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	default:
		s := `"` + escapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" && t.Datatype != XSDString {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	}
}

// Triple is an immutable (subject, predicate, object) statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// String returns the N-Triples form of the triple.
func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

// Quad is a Triple placed in a named graph.
type Quad struct {
	Triple
	Graph Term
}

// String returns the N-Quads form of the quad.
func (q Quad) String() string {
	return fmt.Sprintf("%s %s %s %s .", q.Subject, q.Predicate, q.Object, q.Graph)
}
