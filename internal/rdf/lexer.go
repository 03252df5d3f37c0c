package rdf

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// tokenType represents the type of a Turtle token
type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIRI           // <...>
	tokenPName         // prefix:local or prefix:
	tokenBlankLabel    // _:label
	tokenString        // quoted literal, Value holds the unescaped text
	tokenLangTag       // @en
	tokenInteger
	tokenDecimal
	tokenDouble
	tokenTrue
	tokenFalse
	tokenA
	tokenPrefixDirective // @prefix
	tokenBaseDirective   // @base
	tokenSparqlPrefix    // PREFIX
	tokenSparqlBase      // BASE
	tokenDot
	tokenSemicolon
	tokenComma
	tokenLBracket
	tokenRBracket
	tokenLParen
	tokenRParen
	tokenCaretCaret
)

var tokenNames = map[tokenType]string{
	tokenEOF:             "end of input",
	tokenIRI:             "IRI",
	tokenPName:           "prefixed name",
	tokenBlankLabel:      "blank node",
	tokenString:          "string literal",
	tokenLangTag:         "language tag",
	tokenInteger:         "integer",
	tokenDecimal:         "decimal",
	tokenDouble:          "double",
	tokenTrue:            "'true'",
	tokenFalse:           "'false'",
	tokenA:               "'a'",
	tokenPrefixDirective: "'@prefix'",
	tokenBaseDirective:   "'@base'",
	tokenSparqlPrefix:    "'PREFIX'",
	tokenSparqlBase:      "'BASE'",
	tokenDot:             "'.'",
	tokenSemicolon:       "';'",
	tokenComma:           "','",
	tokenLBracket:        "'['",
	tokenRBracket:        "']'",
	tokenLParen:          "'('",
	tokenRParen:          "')'",
	tokenCaretCaret:      "'^^'",
}

func (t tokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// token is a lexical token with its source position
type token struct {
	Type   tokenType
	Value  string
	Line   int
	Column int
}

// lexer performs lexical analysis of Turtle documents
type lexer struct {
	input  []rune
	pos    int
	line   int
	column int
}

func newLexer(input string) *lexer {
	return &lexer{
		input:  []rune(input),
		line:   1,
		column: 1,
	}
}

func (l *lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *lexer) advance() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r := l.input[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *lexer) errorf(line, col int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

// skipIgnored skips whitespace and '#' comments
func (l *lexer) skipIgnored() {
	for l.pos < len(l.input) {
		r := l.peek(0)
		switch {
		case r == '#':
			for l.pos < len(l.input) && l.peek(0) != '\n' {
				l.advance()
			}
		case unicode.IsSpace(r):
			l.advance()
		default:
			return
		}
	}
}

// next returns the next token
func (l *lexer) next() (token, error) {
	l.skipIgnored()
	line, col := l.line, l.column
	tok := token{Line: line, Column: col}

	if l.pos >= len(l.input) {
		tok.Type = tokenEOF
		return tok, nil
	}

	r := l.peek(0)
	switch {
	case r == '<':
		l.advance()
		iri, err := l.readIRI(line, col)
		if err != nil {
			return tok, err
		}
		tok.Type, tok.Value = tokenIRI, iri
	case r == '"' || r == '\'':
		s, err := l.readString(line, col)
		if err != nil {
			return tok, err
		}
		tok.Type, tok.Value = tokenString, s
	case r == '@':
		l.advance()
		word := l.readWhile(func(r rune) bool { return isASCIILetter(r) || isDigit(r) || r == '-' })
		switch word {
		case "":
			return tok, l.errorf(line, col, "expected language tag or directive after '@'")
		case "prefix":
			tok.Type = tokenPrefixDirective
		case "base":
			tok.Type = tokenBaseDirective
		default:
			tok.Type, tok.Value = tokenLangTag, word
		}
	case r == '_' && l.peek(1) == ':':
		l.advance()
		l.advance()
		label := l.readBlankLabel()
		if label == "" {
			return tok, l.errorf(line, col, "empty blank node label")
		}
		tok.Type, tok.Value = tokenBlankLabel, label
	case r == '^':
		if l.peek(1) != '^' {
			return tok, l.errorf(line, col, "unexpected character '^'")
		}
		l.advance()
		l.advance()
		tok.Type = tokenCaretCaret
	case r == '.' && isDigit(l.peek(1)):
		return l.readNumber(tok)
	case r == '.':
		l.advance()
		tok.Type = tokenDot
	case r == ';':
		l.advance()
		tok.Type = tokenSemicolon
	case r == ',':
		l.advance()
		tok.Type = tokenComma
	case r == '[':
		l.advance()
		tok.Type = tokenLBracket
	case r == ']':
		l.advance()
		tok.Type = tokenRBracket
	case r == '(':
		l.advance()
		tok.Type = tokenLParen
	case r == ')':
		l.advance()
		tok.Type = tokenRParen
	case isDigit(r) || ((r == '+' || r == '-') && (isDigit(l.peek(1)) || l.peek(1) == '.')):
		return l.readNumber(tok)
	case isNameStart(r) || r == ':':
		name := l.readName()
		if strings.Contains(name, ":") {
			tok.Type, tok.Value = tokenPName, name
			return tok, nil
		}
		switch {
		case name == "a":
			tok.Type = tokenA
		case name == "true":
			tok.Type = tokenTrue
		case name == "false":
			tok.Type = tokenFalse
		case strings.EqualFold(name, "PREFIX"):
			tok.Type = tokenSparqlPrefix
		case strings.EqualFold(name, "BASE"):
			tok.Type = tokenSparqlBase
		default:
			return tok, l.errorf(line, col, "unexpected bare word %q", name)
		}
	default:
		return tok, l.errorf(line, col, "unexpected character %q", r)
	}
	return tok, nil
}

func (l *lexer) readWhile(pred func(rune) bool) string {
	start := l.pos
	for l.pos < len(l.input) && pred(l.peek(0)) {
		l.advance()
	}
	return string(l.input[start:l.pos])
}

// readIRI reads up to the closing '>' (the opening '<' is consumed)
func (l *lexer) readIRI(line, col int) (string, error) {
	var b strings.Builder
	for {
		if l.pos >= len(l.input) {
			return "", l.errorf(line, col, "unterminated IRI")
		}
		r := l.advance()
		switch {
		case r == '>':
			return b.String(), nil
		case r == '\\':
			u, err := l.readUnicodeEscape(line, col)
			if err != nil {
				return "", err
			}
			b.WriteRune(u)
		case r == ' ' || r == '\n' || r == '\t' || r == '<' || r == '"' || r == '{' || r == '}' || r == '|' || r == '`':
			return "", l.errorf(line, col, "invalid character %q in IRI", r)
		default:
			b.WriteRune(r)
		}
	}
}

func (l *lexer) readUnicodeEscape(line, col int) (rune, error) {
	kind := l.advance()
	var n int
	switch kind {
	case 'u':
		n = 4
	case 'U':
		n = 8
	default:
		return 0, l.errorf(line, col, "invalid escape sequence '\\%c'", kind)
	}
	if l.pos+n > len(l.input) {
		return 0, l.errorf(line, col, "truncated unicode escape")
	}
	hex := string(l.input[l.pos : l.pos+n])
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, l.errorf(line, col, "invalid unicode escape %q", hex)
	}
	for i := 0; i < n; i++ {
		l.advance()
	}
	return rune(v), nil
}

// readString reads short or long quoted literals in either quote style
func (l *lexer) readString(line, col int) (string, error) {
	q := l.advance()
	long := false
	if l.peek(0) == q && l.peek(1) == q {
		l.advance()
		l.advance()
		long = true
	} else if l.peek(0) == q {
		l.advance()
		return "", nil
	}

	var b strings.Builder
	for {
		if l.pos >= len(l.input) {
			return "", l.errorf(line, col, "unterminated string literal")
		}
		r := l.advance()
		switch {
		case r == q && !long:
			return b.String(), nil
		case r == q && long && l.peek(0) == q && l.peek(1) == q:
			l.advance()
			l.advance()
			// a long literal may end with up to two extra quote characters
			for l.peek(0) == q {
				b.WriteRune(q)
				l.advance()
			}
			return b.String(), nil
		case r == '\\':
			esc, err := l.readStringEscape(line, col)
			if err != nil {
				return "", err
			}
			b.WriteRune(esc)
		case (r == '\n' || r == '\r') && !long:
			return "", l.errorf(line, col, "newline in short string literal")
		default:
			b.WriteRune(r)
		}
	}
}

func (l *lexer) readStringEscape(line, col int) (rune, error) {
	switch r := l.peek(0); r {
	case 't':
		l.advance()
		return '\t', nil
	case 'b':
		l.advance()
		return '\b', nil
	case 'n':
		l.advance()
		return '\n', nil
	case 'r':
		l.advance()
		return '\r', nil
	case 'f':
		l.advance()
		return '\f', nil
	case '"', '\'', '\\':
		l.advance()
		return r, nil
	case 'u', 'U':
		return l.readUnicodeEscape(line, col)
	default:
		return 0, l.errorf(l.line, l.column, "invalid escape sequence '\\%c'", r)
	}
}

// readNumber reads integer, decimal and double numerals
func (l *lexer) readNumber(tok token) (token, error) {
	start := l.pos
	if r := l.peek(0); r == '+' || r == '-' {
		l.advance()
	}
	l.readWhile(isDigit)
	tok.Type = tokenInteger
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.advance()
		l.readWhile(isDigit)
		tok.Type = tokenDecimal
	}
	if r := l.peek(0); r == 'e' || r == 'E' {
		l.advance()
		if r := l.peek(0); r == '+' || r == '-' {
			l.advance()
		}
		if !isDigit(l.peek(0)) {
			return tok, l.errorf(tok.Line, tok.Column, "malformed exponent in numeric literal")
		}
		l.readWhile(isDigit)
		tok.Type = tokenDouble
	}
	tok.Value = string(l.input[start:l.pos])
	return tok, nil
}

// readName reads a prefixed name, a blank node label or a bare keyword.
// Trailing dots belong to the statement terminator, not the name.
func (l *lexer) readName() string {
	var b strings.Builder
	for l.pos < len(l.input) {
		r := l.peek(0)
		switch {
		case r == '\\' && l.pos+1 < len(l.input):
			l.advance()
			b.WriteRune(l.advance())
		case r == '.':
			n := 1
			for l.peek(n) == '.' {
				n++
			}
			if after := l.peek(n); !isNameChar(after) && after != ':' {
				return b.String()
			}
			b.WriteRune(l.advance())
		case isNameChar(r) || r == ':' || r == '%':
			b.WriteRune(l.advance())
		default:
			return b.String()
		}
	}
	return b.String()
}

// readBlankLabel reads the label after "_:". Labels take no escapes and
// no ':', so they never collide with generated labels.
func (l *lexer) readBlankLabel() string {
	var b strings.Builder
	for l.pos < len(l.input) {
		r := l.peek(0)
		switch {
		case r == '.':
			n := 1
			for l.peek(n) == '.' {
				n++
			}
			if !isNameChar(l.peek(n)) {
				return b.String()
			}
			b.WriteRune(l.advance())
		case isNameChar(r):
			b.WriteRune(l.advance())
		default:
			return b.String()
		}
	}
	return b.String()
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || isDigit(r)
}

func isNameChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) ||
		r == '_' || r == '-' || r == 0xB7
}
