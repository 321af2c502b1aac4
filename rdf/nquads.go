package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultGraph is the graph name used for triples without a graph label.
var DefaultGraph = IRI("")

// DecodeNQuads parses an N-Quads document into a dataset. Triples without a
// graph label are placed under DefaultGraph.
func DecodeNQuads(r io.Reader) (*Dataset, error) {
	d := NewDataset()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		q, err := parseQuadLine(line)
		if err != nil {
			return nil, fmt.Errorf("nquads line %d: %w", lineNo, err)
		}
		d.AddQuad(q)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read nquads input: %w", err)
	}
	return d, nil
}

func parseQuadLine(line string) (Quad, error) {
	pos := 0
	terms := make([]Term, 0, 4)
	for {
		skipSpaces(line, &pos)
		if pos >= len(line) {
			return Quad{}, fmt.Errorf("missing statement terminator")
		}
		if line[pos] == '.' {
			break
		}
		t, err := parseNQTerm(line, &pos)
		if err != nil {
			return Quad{}, err
		}
		terms = append(terms, t)
		if len(terms) > 4 {
			return Quad{}, fmt.Errorf("too many terms")
		}
	}
	if len(terms) < 3 {
		return Quad{}, fmt.Errorf("expected 3 or 4 terms, got %d", len(terms))
	}
	q := Quad{
		Triple: Triple{Subject: terms[0], Predicate: terms[1], Object: terms[2]},
		Graph:  DefaultGraph,
	}
	if len(terms) == 4 {
		q.Graph = terms[3]
	}
	if !q.Predicate.IsIRI() {
		return Quad{}, fmt.Errorf("predicate must be an IRI")
	}
	return q, nil
}

func parseNQTerm(line string, pos *int) (Term, error) {
	switch line[*pos] {
	case '<':
		end := strings.IndexByte(line[*pos+1:], '>')
		if end < 0 {
			return Term{}, fmt.Errorf("unterminated IRI")
		}
		iri := line[*pos+1 : *pos+1+end]
		*pos += end + 2
		return IRI(unescapeUnicode(iri)), nil
	case '_':
		if !strings.HasPrefix(line[*pos:], "_:") {
			return Term{}, fmt.Errorf("unexpected character %q", line[*pos])
		}
		start := *pos + 2
		end := start
		for end < len(line) && isPNameChar(line[end]) {
			end++
		}
		if end == start {
			return Term{}, fmt.Errorf("empty blank node label")
		}
		*pos = end
		return Blank(line[start:end]), nil
	case '"':
		return parseNQLiteral(line, pos)
	}
	return Term{}, fmt.Errorf("unexpected character %q", line[*pos])
}

func parseNQLiteral(line string, pos *int) (Term, error) {
	var sb strings.Builder
	i := *pos + 1
	for i < len(line) {
		c := line[i]
		if c == '\\' && i+1 < len(line) {
			esc, width, err := unescapeAt(line, i)
			if err != nil {
				return Term{}, err
			}
			sb.WriteString(esc)
			i += width
			continue
		}
		if c == '"' {
			i++
			value := sb.String()
			if strings.HasPrefix(line[i:], "@") {
				start := i + 1
				end := start
				for end < len(line) && (isAlpha(line[end]) || isDigit(line[end]) || line[end] == '-') {
					end++
				}
				*pos = end
				return LangLiteral(value, line[start:end]), nil
			}
			if strings.HasPrefix(line[i:], "^^<") {
				end := strings.IndexByte(line[i+3:], '>')
				if end < 0 {
					return Term{}, fmt.Errorf("unterminated datatype IRI")
				}
				dt := line[i+3 : i+3+end]
				*pos = i + 3 + end + 1
				return TypedLiteral(value, dt), nil
			}
			*pos = i
			return Literal(value), nil
		}
		sb.WriteByte(c)
		i++
	}
	return Term{}, fmt.Errorf("unterminated literal")
}

func skipSpaces(line string, pos *int) {
	for *pos < len(line) && (line[*pos] == ' ' || line[*pos] == '\t') {
		*pos++
	}
}
