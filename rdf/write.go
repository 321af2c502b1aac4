package rdf

import (
	"fmt"
	"io"
	"strings"
)

// EncodeTurtle serializes a graph as Turtle: prefix declarations first, then
// triples grouped by subject with ";" continuations, subjects in first-seen
// order. IRIs are compacted to prefixed names where a binding applies.
func EncodeTurtle(g *Graph, w io.Writer) error {
	var sb strings.Builder

	prefixes := g.Prefixes()
	for _, p := range prefixes {
		sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", p.Name, p.Namespace))
	}
	if len(prefixes) > 0 {
		sb.WriteString("\n")
	}

	for _, subject := range g.Subjects() {
		triples := g.BySubject(subject)
		sb.WriteString(compactTerm(g, subject))
		for i, t := range triples {
			if i == 0 {
				sb.WriteString(" ")
			} else {
				sb.WriteString(" ;\n    ")
			}
			sb.WriteString(compactTerm(g, t.Predicate))
			sb.WriteString(" ")
			sb.WriteString(compactTerm(g, t.Object))
		}
		sb.WriteString(" .\n\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// EncodeNQuads serializes a dataset as N-Quads, one statement per line,
// graphs in first-seen order. Default-graph quads are written as triples.
func EncodeNQuads(d *Dataset, w io.Writer) error {
	var sb strings.Builder
	for _, q := range d.Quads() {
		if q.Graph == DefaultGraph {
			sb.WriteString(q.Triple.String())
		} else {
			sb.WriteString(q.String())
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// compactTerm renders a term for Turtle output, using a prefixed name when
// the graph binds a matching namespace and the local part is safe.
func compactTerm(g *Graph, t Term) string {
	switch t.Kind {
	case KindIRI:
		if t.Value == "http://www.w3.org/1999/02/22-rdf-syntax-ns#type" {
			return "a"
		}
		best := Prefix{}
		for _, p := range g.Prefixes() {
			if strings.HasPrefix(t.Value, p.Namespace) && len(p.Namespace) > len(best.Namespace) {
				if safeLocalPart(t.Value[len(p.Namespace):]) {
					best = p
				}
			}
		}
		if best.Namespace != "" {
			return best.Name + ":" + t.Value[len(best.Namespace):]
		}
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	default:
		s := `"` + escapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" && t.Datatype != XSDString {
			return s + "^^" + compactTerm(g, IRI(t.Datatype))
		}
		return s
	}
}

// safeLocalPart reports whether a local name can be emitted as a prefixed
// name without escaping. Conservative: anything with separators or an
// empty/leading-dot form falls back to a full IRI reference.
func safeLocalPart(local string) bool {
	if local == "" || strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return false
	}
	for i := 0; i < len(local); i++ {
		c := local[i]
		if !isPNameChar(c) && c != '.' {
			return false
		}
	}
	return true
}

// escapeLiteral escapes special characters for Turtle and N-Quads literals.
func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
