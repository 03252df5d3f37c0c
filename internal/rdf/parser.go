package rdf

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format identifies a triple document serialization
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
)

// FormatFromPath picks a format from a file extension, defaulting to Turtle
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nt", ".nq":
		return FormatNTriples
	default:
		return FormatTurtle
	}
}

// ParseFormat resolves a user-supplied format name
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "nt", "nquads", "nq":
		return FormatNTriples, nil
	default:
		return "", fmt.Errorf("unknown triple format %q (supported: turtle, ntriples)", name)
	}
}

// SyntaxError reports a document that could not be parsed
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
	}
	return e.Msg
}

// Parse parses a serialized triple document. On failure it returns a
// *SyntaxError and no graph.
func Parse(data []byte, format Format, base string) (*Graph, error) {
	switch format {
	case FormatNTriples:
		return parseNTriples(data)
	case FormatTurtle, "":
		return ParseTurtle(string(data), base)
	default:
		return nil, &SyntaxError{Msg: fmt.Sprintf("unsupported format %q", format)}
	}
}

// checkUTF8 rejects documents that are not valid UTF-8, reporting the
// position of the first bad byte
func checkUTF8(input string) error {
	if utf8.ValidString(input) {
		return nil
	}
	line, col := 1, 1
	for i := 0; i < len(input); {
		r, size := utf8.DecodeRuneInString(input[i:])
		if r == utf8.RuneError && size == 1 {
			return &SyntaxError{Line: line, Column: col, Msg: fmt.Sprintf("invalid UTF-8 byte 0x%02x", input[i])}
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i += size
	}
	return nil
}

// ParseTurtle parses a Turtle document
func ParseTurtle(input, base string) (*Graph, error) {
	if err := checkUTF8(input); err != nil {
		return nil, err
	}
	p := &turtleParser{
		lex:      newLexer(input),
		g:        NewGraph(),
		prefixes: make(map[string]string),
	}
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, &SyntaxError{Msg: fmt.Sprintf("invalid base IRI %q", base)}
		}
		p.base = u
	}

	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.cur.Type != tokenEOF {
		if err := p.statement(); err != nil {
			return nil, err
		}
	}
	return p.g, nil
}

// turtleParser is a recursive descent parser over lexer tokens
type turtleParser struct {
	lex      *lexer
	cur      token
	g        *Graph
	prefixes map[string]string
	base     *url.URL
	bnodes   int
}

func (p *turtleParser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *turtleParser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Line: p.cur.Line, Column: p.cur.Column, Msg: fmt.Sprintf(format, args...)}
}

func (p *turtleParser) unexpected(want string) error {
	found := p.cur.Type.String()
	if p.cur.Value != "" {
		found = fmt.Sprintf("%s %q", found, p.cur.Value)
	}
	return p.errorf("expected %s, found %s", want, found)
}

func (p *turtleParser) expect(t tokenType, want string) error {
	if p.cur.Type != t {
		return p.unexpected(want)
	}
	return p.advance()
}

func (p *turtleParser) emit(s, pred, o Term) {
	p.g.add(Statement{Subject: s, Predicate: pred, Object: o})
}

// freshBlank labels anonymous nodes and collection cells. The ':' keeps
// the label outside the space of document labels.
func (p *turtleParser) freshBlank() Term {
	p.bnodes++
	return Blank(fmt.Sprintf("genid:%d", p.bnodes))
}

func (p *turtleParser) statement() error {
	switch p.cur.Type {
	case tokenPrefixDirective:
		if err := p.prefixDecl(); err != nil {
			return err
		}
		return p.expect(tokenDot, "'.' after @prefix directive")
	case tokenBaseDirective:
		if err := p.baseDecl(); err != nil {
			return err
		}
		return p.expect(tokenDot, "'.' after @base directive")
	case tokenSparqlPrefix:
		return p.prefixDecl()
	case tokenSparqlBase:
		return p.baseDecl()
	default:
		if err := p.triples(); err != nil {
			return err
		}
		return p.expect(tokenDot, "'.' to end statement")
	}
}

func (p *turtleParser) prefixDecl() error {
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.Type != tokenPName || !strings.HasSuffix(p.cur.Value, ":") || strings.Count(p.cur.Value, ":") != 1 {
		return p.unexpected("prefix name ending in ':'")
	}
	prefix := strings.TrimSuffix(p.cur.Value, ":")
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.Type != tokenIRI {
		return p.unexpected("namespace IRI")
	}
	ns := p.resolve(p.cur.Value)
	p.prefixes[prefix] = ns
	p.g.bind(prefix, ns)
	return p.advance()
}

func (p *turtleParser) baseDecl() error {
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.Type != tokenIRI {
		return p.unexpected("base IRI")
	}
	u, err := url.Parse(p.resolve(p.cur.Value))
	if err != nil {
		return p.errorf("invalid base IRI %q", p.cur.Value)
	}
	p.base = u
	return p.advance()
}

func (p *turtleParser) resolve(ref string) string {
	if p.base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return p.base.ResolveReference(u).String()
}

func (p *turtleParser) expandPName(pname string) (Term, error) {
	idx := strings.Index(pname, ":")
	prefix, local := pname[:idx], pname[idx+1:]
	ns, ok := p.prefixes[prefix]
	if !ok {
		return Term{}, p.errorf("undefined prefix %q", prefix)
	}
	return IRI(ns + local), nil
}

func (p *turtleParser) triples() error {
	if p.cur.Type == tokenLBracket {
		subj, err := p.blankNodePropertyList()
		if err != nil {
			return err
		}
		// "[ :p :o ] ." is a complete statement on its own
		if p.cur.Type == tokenDot {
			return nil
		}
		return p.predicateObjectList(subj)
	}

	subj, err := p.subject()
	if err != nil {
		return err
	}
	return p.predicateObjectList(subj)
}

func (p *turtleParser) subject() (Term, error) {
	var t Term
	switch p.cur.Type {
	case tokenIRI:
		t = IRI(p.resolve(p.cur.Value))
	case tokenPName:
		var err error
		if t, err = p.expandPName(p.cur.Value); err != nil {
			return t, err
		}
	case tokenBlankLabel:
		t = Blank(p.cur.Value)
	case tokenLParen:
		return p.collection()
	default:
		return t, p.unexpected("subject")
	}
	return t, p.advance()
}

func (p *turtleParser) verb() (Term, error) {
	var t Term
	switch p.cur.Type {
	case tokenA:
		t = RDFType
	case tokenIRI:
		t = IRI(p.resolve(p.cur.Value))
	case tokenPName:
		var err error
		if t, err = p.expandPName(p.cur.Value); err != nil {
			return t, err
		}
	default:
		return t, p.unexpected("predicate")
	}
	return t, p.advance()
}

func (p *turtleParser) predicateObjectList(subj Term) error {
	for {
		pred, err := p.verb()
		if err != nil {
			return err
		}
		if err := p.objectList(subj, pred); err != nil {
			return err
		}
		if p.cur.Type != tokenSemicolon {
			return nil
		}
		for p.cur.Type == tokenSemicolon {
			if err := p.advance(); err != nil {
				return err
			}
		}
		// trailing ';' before the end of the list
		if p.cur.Type == tokenDot || p.cur.Type == tokenRBracket || p.cur.Type == tokenEOF {
			return nil
		}
	}
}

func (p *turtleParser) objectList(subj, pred Term) error {
	for {
		obj, err := p.object()
		if err != nil {
			return err
		}
		p.emit(subj, pred, obj)
		if p.cur.Type != tokenComma {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

// object parses any object term, consuming it
func (p *turtleParser) object() (Term, error) {
	var t Term
	switch p.cur.Type {
	case tokenIRI:
		t = IRI(p.resolve(p.cur.Value))
	case tokenPName:
		var err error
		if t, err = p.expandPName(p.cur.Value); err != nil {
			return t, err
		}
	case tokenBlankLabel:
		t = Blank(p.cur.Value)
	case tokenLBracket:
		return p.blankNodePropertyList()
	case tokenLParen:
		return p.collection()
	case tokenString:
		return p.literal()
	case tokenInteger:
		t = TypedLiteral(p.cur.Value, XSDInteger.Value)
	case tokenDecimal:
		t = TypedLiteral(p.cur.Value, XSDDecimal.Value)
	case tokenDouble:
		t = TypedLiteral(p.cur.Value, XSDDouble.Value)
	case tokenTrue:
		t = TypedLiteral("true", XSDBoolean.Value)
	case tokenFalse:
		t = TypedLiteral("false", XSDBoolean.Value)
	default:
		return t, p.unexpected("object")
	}
	return t, p.advance()
}

func (p *turtleParser) literal() (Term, error) {
	value := p.cur.Value
	if err := p.advance(); err != nil {
		return Term{}, err
	}
	switch p.cur.Type {
	case tokenLangTag:
		t := LangLiteral(value, p.cur.Value)
		return t, p.advance()
	case tokenCaretCaret:
		if err := p.advance(); err != nil {
			return Term{}, err
		}
		var dt Term
		switch p.cur.Type {
		case tokenIRI:
			dt = IRI(p.resolve(p.cur.Value))
		case tokenPName:
			var err error
			if dt, err = p.expandPName(p.cur.Value); err != nil {
				return Term{}, err
			}
		default:
			return Term{}, p.unexpected("datatype IRI")
		}
		return TypedLiteral(value, dt.Value), p.advance()
	default:
		return Literal(value), nil
	}
}

func (p *turtleParser) blankNodePropertyList() (Term, error) {
	if err := p.advance(); err != nil {
		return Term{}, err
	}
	node := p.freshBlank()
	if p.cur.Type == tokenRBracket {
		return node, p.advance()
	}
	if err := p.predicateObjectList(node); err != nil {
		return Term{}, err
	}
	return node, p.expect(tokenRBracket, "']' to close blank node")
}

func (p *turtleParser) collection() (Term, error) {
	if err := p.advance(); err != nil {
		return Term{}, err
	}
	var items []Term
	for p.cur.Type != tokenRParen {
		if p.cur.Type == tokenEOF {
			return Term{}, p.unexpected("')' to close collection")
		}
		item, err := p.object()
		if err != nil {
			return Term{}, err
		}
		items = append(items, item)
	}
	if err := p.advance(); err != nil {
		return Term{}, err
	}
	if len(items) == 0 {
		return RDFNil, nil
	}

	head := p.freshBlank()
	node := head
	for i, item := range items {
		p.emit(node, RDFFirst, item)
		if i == len(items)-1 {
			p.emit(node, RDFRest, RDFNil)
			break
		}
		next := p.freshBlank()
		p.emit(node, RDFRest, next)
		node = next
	}
	return head, nil
}
