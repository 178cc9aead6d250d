package lexer

import (
	"fmt"
	"strconv"

	"github.com/takoeight0821/shadergraph/token"
)

// Lex scans the whole source and returns its tokens followed by EOF.
// Scanning stops at the first error.
func Lex(source string) ([]token.Token, error) {
	l := New(source)
	tokens := []token.Token{}
	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

// Lexer produces tokens one at a time on demand.
// A Lexer makes a single pass over its source; scan again with a new Lexer.
type Lexer struct {
	source string

	start    int // start of current lexeme
	current  int // current position in source
	line     int // current line number
	column   int // column of the next character
	startLoc token.Location

	err error
}

func New(source string) *Lexer {
	return &Lexer{
		source:  source,
		start:   0,
		current: 0,
		line:    1,
		column:  1,
	}
}

// Next returns the next token.
// Once the source is exhausted it keeps returning EOF; once an error
// occurred it keeps returning that error.
func (l *Lexer) Next() (token.Token, error) {
	if l.err != nil {
		return token.Token{}, l.err
	}
	for !l.isAtEnd() {
		tok, ok, err := l.scanToken()
		if err != nil {
			l.err = err
			return token.Token{}, err
		}
		if ok {
			return tok, nil
		}
	}
	return token.Token{Kind: token.EOF, Lexeme: "", Location: l.location()}, nil
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) advance() byte {
	c := l.source[l.current]
	l.current++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) location() token.Location {
	return token.Location{Line: l.line, Column: l.column}
}

func (l *Lexer) makeToken(kind token.Kind, literal any) token.Token {
	return token.Token{Kind: kind, Lexeme: l.source[l.start:l.current], Location: l.startLoc, Literal: literal}
}

type UnexpectedCharacterError struct {
	token.Location
	Char byte
}

func (e UnexpectedCharacterError) Error() string {
	return fmt.Sprintf("%s: unexpected character %q", e.Location, e.Char)
}

type MalformedNumberError struct {
	token.Location
	Text string
}

func (e MalformedNumberError) Error() string {
	return fmt.Sprintf("%s: malformed number `%s`", e.Location, e.Text)
}

// scanToken scans at most one token. ok is false when only whitespace or a
// comment was consumed.
func (l *Lexer) scanToken() (tok token.Token, ok bool, err error) {
	l.start = l.current
	l.startLoc = l.location()
	c := l.advance()
	switch {
	case isSpace(c):
		return tok, false, nil
	case isDigit(c):
		tok, err = l.number()
		return tok, err == nil, err
	case isAlpha(c):
		return l.word(), true, nil
	}

	if _, isPunct := token.LookupPunctuator(string(c)); isPunct {
		return l.punctuator()
	}

	return tok, false, UnexpectedCharacterError{Location: l.startLoc, Char: c}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func (l *Lexer) number() (token.Token, error) {
	for isDigit(l.peek()) || l.peek() == '.' {
		l.advance()
	}

	text := l.source[l.start:l.current]
	if _, err := strconv.Atoi(text); err == nil {
		return l.makeToken(token.LITERAL, token.Literal{Kind: token.IntLit, Text: text}), nil
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return l.makeToken(token.LITERAL, token.Literal{Kind: token.FloatLit, Text: text}), nil
	}

	return token.Token{}, MalformedNumberError{Location: l.startLoc, Text: text}
}

func (l *Lexer) word() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}

	text := l.source[l.start:l.current]
	if k, ok := token.LookupKeyword(text); ok {
		return l.makeToken(k, nil)
	}
	if t, ok := token.LookupType(text); ok {
		return l.makeToken(token.TYPE, t)
	}
	if text == "true" || text == "false" {
		return l.makeToken(token.LITERAL, token.Literal{Kind: token.BoolLit, Text: text})
	}

	return l.makeToken(token.IDENT, nil)
}

func (l *Lexer) punctuator() (token.Token, bool, error) {
	if !l.isAtEnd() {
		compound := l.source[l.start : l.current+1]
		if compound == token.LineComment {
			for !l.isAtEnd() && l.advance() != '\n' {
			}
			return token.Token{}, false, nil
		}
		if k, ok := token.LookupPunctuator(compound); ok {
			l.advance()
			return l.makeToken(k, nil), true, nil
		}
	}

	k, _ := token.LookupPunctuator(l.source[l.start:l.current])
	return l.makeToken(k, nil), true, nil
}
