package rdf

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DecodeTurtle parses a Turtle document into a graph. The parser covers the
// subset of Turtle produced by common RDF tooling: prefix and base
// directives, prefixed names, IRI references, blank node labels and
// anonymous blank node property lists, plain / typed / language-tagged
// literals (short and long quoted forms), numeric and boolean shorthand,
// the "a" keyword, and predicate-object (";") and object (",") lists.
// RDF collections "( ... )" are not supported.
func DecodeTurtle(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read turtle input: %w", err)
	}
	p := &turtleParser{
		lex:   newLexer(string(data)),
		graph: NewGraph(),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.graph, nil
}

type turtleParser struct {
	lex    *lexer
	graph  *Graph
	base   string
	bnodes int
}

func (p *turtleParser) parse() error {
	for {
		tok, err := p.lex.next()
		if err != nil {
			return err
		}
		switch {
		case tok.kind == tokEOF:
			return nil
		case tok.kind == tokKeyword && (tok.text == "@prefix" || tok.text == "PREFIX"):
			if err := p.parsePrefix(tok.text == "@prefix"); err != nil {
				return err
			}
		case tok.kind == tokKeyword && (tok.text == "@base" || tok.text == "BASE"):
			if err := p.parseBase(tok.text == "@base"); err != nil {
				return err
			}
		default:
			subject, err := p.termFromToken(tok)
			if err != nil {
				return err
			}
			if err := p.parsePredicateObjectList(subject, false); err != nil {
				return err
			}
			if err := p.expect(tokDot); err != nil {
				return err
			}
		}
	}
}

func (p *turtleParser) parsePrefix(turtleStyle bool) error {
	name, err := p.lex.next()
	if err != nil {
		return err
	}
	if name.kind != tokPNamePrefix {
		return fmt.Errorf("turtle line %d: expected prefix name, got %q", name.line, name.text)
	}
	iri, err := p.lex.next()
	if err != nil {
		return err
	}
	if iri.kind != tokIRI {
		return fmt.Errorf("turtle line %d: expected namespace IRI, got %q", iri.line, iri.text)
	}
	p.graph.Bind(strings.TrimSuffix(name.text, ":"), p.resolve(iri.text))
	if turtleStyle {
		return p.expect(tokDot)
	}
	return nil
}

func (p *turtleParser) parseBase(turtleStyle bool) error {
	iri, err := p.lex.next()
	if err != nil {
		return err
	}
	if iri.kind != tokIRI {
		return fmt.Errorf("turtle line %d: expected base IRI, got %q", iri.line, iri.text)
	}
	p.base = iri.text
	if turtleStyle {
		return p.expect(tokDot)
	}
	return nil
}

// parsePredicateObjectList consumes "pred obj, obj ; pred obj ..." for the
// given subject. When inBnode is true the list is terminated by "]".
func (p *turtleParser) parsePredicateObjectList(subject Term, inBnode bool) error {
	for {
		tok, err := p.lex.next()
		if err != nil {
			return err
		}
		if inBnode && tok.kind == tokBracketClose {
			return nil
		}
		predicate, err := p.predicateFromToken(tok)
		if err != nil {
			return err
		}
		for {
			objTok, err := p.lex.next()
			if err != nil {
				return err
			}
			object, err := p.objectFromToken(objTok)
			if err != nil {
				return err
			}
			p.graph.Add(Triple{Subject: subject, Predicate: predicate, Object: object})

			sep, err := p.lex.peek()
			if err != nil {
				return err
			}
			if sep.kind == tokComma {
				p.lex.skip()
				continue
			}
			break
		}

		sep, err := p.lex.peek()
		if err != nil {
			return err
		}
		switch sep.kind {
		case tokSemicolon:
			p.lex.skip()
			// Allow a trailing ";" before the list terminator. The dot of
			// the enclosing statement is left for the caller to consume.
			after, err := p.lex.peek()
			if err != nil {
				return err
			}
			if inBnode && after.kind == tokBracketClose {
				p.lex.skip()
				return nil
			}
			if !inBnode && after.kind == tokDot {
				return nil
			}
		case tokBracketClose:
			if !inBnode {
				return fmt.Errorf("turtle line %d: unexpected ]", sep.line)
			}
			p.lex.skip()
			return nil
		default:
			if inBnode {
				return fmt.Errorf("turtle line %d: expected ; or ] in blank node, got %q", sep.line, sep.text)
			}
			return nil
		}
	}
}

func (p *turtleParser) predicateFromToken(tok token) (Term, error) {
	if tok.kind == tokKeyword && tok.text == "a" {
		return IRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"), nil
	}
	term, err := p.termFromToken(tok)
	if err != nil {
		return Term{}, err
	}
	if !term.IsIRI() {
		return Term{}, fmt.Errorf("turtle line %d: predicate must be an IRI, got %q", tok.line, tok.text)
	}
	return term, nil
}

func (p *turtleParser) objectFromToken(tok token) (Term, error) {
	switch tok.kind {
	case tokLiteral:
		return p.literalFromToken(tok)
	case tokInteger:
		return TypedLiteral(tok.text, "http://www.w3.org/2001/XMLSchema#integer"), nil
	case tokDecimal:
		return TypedLiteral(tok.text, "http://www.w3.org/2001/XMLSchema#decimal"), nil
	case tokDouble:
		return TypedLiteral(tok.text, "http://www.w3.org/2001/XMLSchema#double"), nil
	case tokKeyword:
		if tok.text == "true" || tok.text == "false" {
			return TypedLiteral(tok.text, "http://www.w3.org/2001/XMLSchema#boolean"), nil
		}
	}
	return p.termFromToken(tok)
}

func (p *turtleParser) literalFromToken(tok token) (Term, error) {
	next, err := p.lex.peek()
	if err != nil {
		return Term{}, err
	}
	switch next.kind {
	case tokLangTag:
		p.lex.skip()
		return LangLiteral(tok.text, next.text), nil
	case tokDatatypeMarker:
		p.lex.skip()
		dt, err := p.lex.next()
		if err != nil {
			return Term{}, err
		}
		dtTerm, err := p.termFromToken(dt)
		if err != nil {
			return Term{}, err
		}
		if !dtTerm.IsIRI() {
			return Term{}, fmt.Errorf("turtle line %d: datatype must be an IRI", dt.line)
		}
		return TypedLiteral(tok.text, dtTerm.Value), nil
	}
	return Literal(tok.text), nil
}

// termFromToken converts IRI, prefixed name, and blank node tokens,
// including anonymous "[ ... ]" property lists.
func (p *turtleParser) termFromToken(tok token) (Term, error) {
	switch tok.kind {
	case tokIRI:
		return IRI(p.resolve(tok.text)), nil
	case tokPName:
		colon := strings.Index(tok.text, ":")
		prefix, local := tok.text[:colon], tok.text[colon+1:]
		ns, ok := p.lookupPrefix(prefix)
		if !ok {
			return Term{}, fmt.Errorf("turtle line %d: undefined prefix %q", tok.line, prefix)
		}
		return IRI(ns + local), nil
	case tokPNamePrefix:
		// A bare "prefix:" is a valid prefixed name with empty local part.
		prefix := strings.TrimSuffix(tok.text, ":")
		ns, ok := p.lookupPrefix(prefix)
		if !ok {
			return Term{}, fmt.Errorf("turtle line %d: undefined prefix %q", tok.line, prefix)
		}
		return IRI(ns), nil
	case tokBlank:
		return Blank(tok.text), nil
	case tokBracketOpen:
		p.bnodes++
		b := Blank(fmt.Sprintf("b%d", p.bnodes))
		next, err := p.lex.peek()
		if err != nil {
			return Term{}, err
		}
		if next.kind == tokBracketClose {
			p.lex.skip()
			return b, nil
		}
		if err := p.parsePredicateObjectList(b, true); err != nil {
			return Term{}, err
		}
		return b, nil
	case tokParenOpen:
		return Term{}, fmt.Errorf("turtle line %d: RDF collections are not supported", tok.line)
	}
	return Term{}, fmt.Errorf("turtle line %d: unexpected token %q", tok.line, tok.text)
}

func (p *turtleParser) lookupPrefix(prefix string) (string, bool) {
	return p.graph.Namespace(prefix)
}

func (p *turtleParser) resolve(iri string) string {
	if p.base == "" || strings.Contains(iri, "://") || strings.HasPrefix(iri, "urn:") {
		return iri
	}
	return p.base + iri
}

func (p *turtleParser) expect(kind tokKind) error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	if tok.kind != kind {
		return fmt.Errorf("turtle line %d: unexpected token %q", tok.line, tok.text)
	}
	return nil
}

// Lexer.

type tokKind int

const (
	tokEOF tokKind = iota
	tokIRI
	tokPName       // prefix:local
	tokPNamePrefix // prefix:
	tokBlank       // _:label (text holds label)
	tokLiteral     // quoted string (text holds unescaped value)
	tokLangTag
	tokDatatypeMarker // ^^
	tokInteger
	tokDecimal
	tokDouble
	tokKeyword // @prefix, @base, PREFIX, BASE, a, true, false
	tokDot
	tokSemicolon
	tokComma
	tokBracketOpen
	tokBracketClose
	tokParenOpen
	tokParenClose
)

type token struct {
	kind tokKind
	text string
	line int
}

type lexer struct {
	input   string
	pos     int
	line    int
	pending *token
}

func newLexer(input string) *lexer {
	return &lexer{input: input, line: 1}
}

func (l *lexer) peek() (token, error) {
	if l.pending == nil {
		tok, err := l.scan()
		if err != nil {
			return token{}, err
		}
		l.pending = &tok
	}
	return *l.pending, nil
}

func (l *lexer) next() (token, error) {
	if l.pending != nil {
		tok := *l.pending
		l.pending = nil
		return tok, nil
	}
	return l.scan()
}

func (l *lexer) skip() {
	l.pending = nil
}

func (l *lexer) scan() (token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, line: l.line}, nil
	}
	line := l.line
	c := l.input[l.pos]
	switch c {
	case '<':
		return l.scanIRI(line)
	case '"', '\'':
		return l.scanString(line, c)
	case '.':
		// Distinguish statement dot from a leading decimal point.
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			return l.scanNumber(line)
		}
		l.pos++
		return token{kind: tokDot, text: ".", line: line}, nil
	case ';':
		l.pos++
		return token{kind: tokSemicolon, text: ";", line: line}, nil
	case ',':
		l.pos++
		return token{kind: tokComma, text: ",", line: line}, nil
	case '[':
		l.pos++
		return token{kind: tokBracketOpen, text: "[", line: line}, nil
	case ']':
		l.pos++
		return token{kind: tokBracketClose, text: "]", line: line}, nil
	case '(':
		l.pos++
		return token{kind: tokParenOpen, text: "(", line: line}, nil
	case ')':
		l.pos++
		return token{kind: tokParenClose, text: ")", line: line}, nil
	case '^':
		if strings.HasPrefix(l.input[l.pos:], "^^") {
			l.pos += 2
			return token{kind: tokDatatypeMarker, text: "^^", line: line}, nil
		}
		return token{}, fmt.Errorf("turtle line %d: unexpected character %q", line, c)
	case '@':
		return l.scanAtWord(line)
	case '_':
		if strings.HasPrefix(l.input[l.pos:], "_:") {
			return l.scanBlank(line)
		}
		return token{}, fmt.Errorf("turtle line %d: unexpected character %q", line, c)
	}
	if c == '+' || c == '-' || isDigit(c) {
		return l.scanNumber(line)
	}
	return l.scanWord(line)
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) scanIRI(line int) (token, error) {
	end := strings.IndexByte(l.input[l.pos+1:], '>')
	if end < 0 {
		return token{}, fmt.Errorf("turtle line %d: unterminated IRI", line)
	}
	iri := l.input[l.pos+1 : l.pos+1+end]
	l.pos += end + 2
	return token{kind: tokIRI, text: unescapeUnicode(iri), line: line}, nil
}

func (l *lexer) scanString(line int, quote byte) (token, error) {
	long := false
	triple := string([]byte{quote, quote, quote})
	if strings.HasPrefix(l.input[l.pos:], triple) {
		long = true
		l.pos += 3
	} else {
		l.pos++
	}
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '\\' && l.pos+1 < len(l.input) {
			esc, width, err := unescapeAt(l.input, l.pos)
			if err != nil {
				return token{}, fmt.Errorf("turtle line %d: %v", l.line, err)
			}
			sb.WriteString(esc)
			l.pos += width
			continue
		}
		if long {
			if strings.HasPrefix(l.input[l.pos:], triple) {
				l.pos += 3
				return token{kind: tokLiteral, text: sb.String(), line: line}, nil
			}
			if c == '\n' {
				l.line++
			}
			sb.WriteByte(c)
			l.pos++
			continue
		}
		if c == quote {
			l.pos++
			return token{kind: tokLiteral, text: sb.String(), line: line}, nil
		}
		if c == '\n' {
			return token{}, fmt.Errorf("turtle line %d: unterminated string", line)
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, fmt.Errorf("turtle line %d: unterminated string", line)
}

func (l *lexer) scanAtWord(line int) (token, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.input) && (isAlpha(l.input[l.pos]) || l.input[l.pos] == '-') {
		l.pos++
	}
	word := l.input[start:l.pos]
	if word == "@prefix" || word == "@base" {
		return token{kind: tokKeyword, text: word, line: line}, nil
	}
	return token{kind: tokLangTag, text: word[1:], line: line}, nil
}

func (l *lexer) scanBlank(line int) (token, error) {
	start := l.pos + 2
	end := start
	for end < len(l.input) && isPNameChar(l.input[end]) {
		end++
	}
	if end == start {
		return token{}, fmt.Errorf("turtle line %d: empty blank node label", line)
	}
	l.pos = end
	return token{kind: tokBlank, text: l.input[start:end], line: line}, nil
}

func (l *lexer) scanNumber(line int) (token, error) {
	start := l.pos
	if l.input[l.pos] == '+' || l.input[l.pos] == '-' {
		l.pos++
	}
	kind := tokInteger
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case isDigit(c):
			l.pos++
		case c == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]):
			kind = tokDecimal
			l.pos++
		case c == 'e' || c == 'E':
			kind = tokDouble
			l.pos++
			if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
				l.pos++
			}
		default:
			return token{kind: kind, text: l.input[start:l.pos], line: line}, nil
		}
	}
	return token{kind: kind, text: l.input[start:l.pos], line: line}, nil
}

// scanWord reads a bare word: keyword, prefixed name, or prefix declaration
// name. Local parts may contain dots, but a trailing dot terminates the
// statement rather than the name.
func (l *lexer) scanWord(line int) (token, error) {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if isPNameChar(c) || c == ':' || c == '%' {
			l.pos++
			continue
		}
		if c == '.' && l.pos+1 < len(l.input) && isPNameChar(l.input[l.pos+1]) {
			l.pos++
			continue
		}
		break
	}
	word := l.input[start:l.pos]
	if word == "" {
		r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
		return token{}, fmt.Errorf("turtle line %d: unexpected character %q", line, r)
	}
	switch word {
	case "a", "true", "false", "PREFIX", "BASE":
		return token{kind: tokKeyword, text: word, line: line}, nil
	}
	if strings.HasSuffix(word, ":") {
		return token{kind: tokPNamePrefix, text: word, line: line}, nil
	}
	if strings.Contains(word, ":") {
		return token{kind: tokPName, text: word, line: line}, nil
	}
	return token{}, fmt.Errorf("turtle line %d: unexpected word %q", line, word)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isPNameChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_' || c == '-' || c >= utf8.RuneSelf
}

// unescapeAt decodes the escape sequence starting at input[pos] (which must
// be a backslash) and returns the decoded text plus consumed width.
func unescapeAt(input string, pos int) (string, int, error) {
	c := input[pos+1]
	switch c {
	case 't':
		return "\t", 2, nil
	case 'n':
		return "\n", 2, nil
	case 'r':
		return "\r", 2, nil
	case 'b':
		return "\b", 2, nil
	case 'f':
		return "\f", 2, nil
	case '"':
		return `"`, 2, nil
	case '\'':
		return "'", 2, nil
	case '\\':
		return `\`, 2, nil
	case 'u', 'U':
		width := 6
		if c == 'U' {
			width = 10
		}
		if pos+width > len(input) {
			return "", 0, fmt.Errorf("truncated \\%c escape", c)
		}
		var r rune
		for _, h := range input[pos+2 : pos+width] {
			d, ok := hexValue(h)
			if !ok {
				return "", 0, fmt.Errorf("invalid \\%c escape", c)
			}
			r = r<<4 | d
		}
		if !utf8.ValidRune(r) {
			return "", 0, fmt.Errorf("invalid code point in \\%c escape", c)
		}
		return string(r), width, nil
	}
	return "", 0, fmt.Errorf("unknown escape \\%c", c)
}

func hexValue(r rune) (rune, bool) {
	switch {
	case r >= '0' && r <= '9':
		return r - '0', true
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10, true
	case r >= 'A' && r <= 'F':
		return r - 'A' + 10, true
	}
	return 0, false
}

// unescapeUnicode resolves \u and \U escapes inside IRI references.
func unescapeUnicode(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == 'u' || s[i+1] == 'U') {
			if esc, width, err := unescapeAt(s, i); err == nil {
				sb.WriteString(esc)
				i += width
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == unicode.ReplacementChar && size == 1 {
			sb.WriteByte(s[i])
		} else {
			sb.WriteRune(r)
		}
		i += size
	}
	return sb.String()
}
