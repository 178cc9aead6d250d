package token

import (
	"fmt"
	"strconv"
)

type Kind int

const (
	EOF Kind = iota

	// Literals and identifiers.
	LITERAL
	IDENT
	TYPE

	// Keywords.
	IN
	OUT
	INOUT
	IF
	ELSE
	DO
	WHILE
	CONST
	RETURN

	// Single-character punctuators.
	PLUS         // +
	MINUS        // -
	STAR         // *
	SLASH        // /
	EQ           // =
	SEMICOLON    // ;
	LT           // <
	GT           // >
	COLON        // :
	LEFTPAREN    // (
	RIGHTPAREN   // )
	LEFTBRACE    // {
	RIGHTBRACE   // }
	LEFTBRACKET  // [
	RIGHTBRACKET // ]
	COMMA        // ,
	DOUBLEQUOTE  // "
	SHARP        // #
	AT           // @
	AMPERSAND    // &
	PIPE         // |
	TILDE        // ~
	BANG         // !
	PERCENT      // %

	// Two-character punctuators.
	LT2        // <<
	GT2        // >>
	PIPE2      // ||
	AMPERSAND2 // &&
	EQ2        // ==
	BANGEQ     // !=
)

var kindNames = [...]string{
	EOF:          "EOF",
	LITERAL:      "LITERAL",
	IDENT:        "IDENT",
	TYPE:         "TYPE",
	IN:           "IN",
	OUT:          "OUT",
	INOUT:        "INOUT",
	IF:           "IF",
	ELSE:         "ELSE",
	DO:           "DO",
	WHILE:        "WHILE",
	CONST:        "CONST",
	RETURN:       "RETURN",
	PLUS:         "PLUS",
	MINUS:        "MINUS",
	STAR:         "STAR",
	SLASH:        "SLASH",
	EQ:           "EQ",
	SEMICOLON:    "SEMICOLON",
	LT:           "LT",
	GT:           "GT",
	COLON:        "COLON",
	LEFTPAREN:    "LEFTPAREN",
	RIGHTPAREN:   "RIGHTPAREN",
	LEFTBRACE:    "LEFTBRACE",
	RIGHTBRACE:   "RIGHTBRACE",
	LEFTBRACKET:  "LEFTBRACKET",
	RIGHTBRACKET: "RIGHTBRACKET",
	COMMA:        "COMMA",
	DOUBLEQUOTE:  "DOUBLEQUOTE",
	SHARP:        "SHARP",
	AT:           "AT",
	AMPERSAND:    "AMPERSAND",
	PIPE:         "PIPE",
	TILDE:        "TILDE",
	BANG:         "BANG",
	PERCENT:      "PERCENT",
	LT2:          "LT2",
	GT2:          "GT2",
	PIPE2:        "PIPE2",
	AMPERSAND2:   "AMPERSAND2",
	EQ2:          "EQ2",
	BANGEQ:       "BANGEQ",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Location is a 1-based position in the source text.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Token is a classified lexeme.
// Literal holds a [Literal] for LITERAL tokens and a [TypeKind] for TYPE tokens.
type Token struct {
	Kind    Kind
	Lexeme  string
	Location
	Literal any
}

func (t Token) String() string {
	return t.Lexeme
}

// Debug formats the token for raw token dumps.
func (t Token) Debug() string {
	switch lit := t.Literal.(type) {
	case Literal:
		return fmt.Sprintf("%s %v %q %v", t.Location, t.Kind, t.Lexeme, lit.Kind)
	case TypeKind:
		return fmt.Sprintf("%s %v %q %v", t.Location, t.Kind, t.Lexeme, lit)
	default:
		return fmt.Sprintf("%s %v %q", t.Location, t.Kind, t.Lexeme)
	}
}

var keywords = map[string]Kind{
	"if":     IF,
	"else":   ELSE,
	"do":     DO,
	"while":  WHILE,
	"const":  CONST,
	"return": RETURN,
	"in":     IN,
	"out":    OUT,
	"inout":  INOUT,
}

// LookupKeyword reports the keyword kind spelled by word.
func LookupKeyword(word string) (Kind, bool) {
	k, ok := keywords[word]
	return k, ok
}

var punctuators = map[string]Kind{
	"+":  PLUS,
	"-":  MINUS,
	"*":  STAR,
	"/":  SLASH,
	"=":  EQ,
	";":  SEMICOLON,
	"<":  LT,
	">":  GT,
	":":  COLON,
	"(":  LEFTPAREN,
	")":  RIGHTPAREN,
	"{":  LEFTBRACE,
	"}":  RIGHTBRACE,
	"[":  LEFTBRACKET,
	"]":  RIGHTBRACKET,
	",":  COMMA,
	"\"": DOUBLEQUOTE,
	"#":  SHARP,
	"@":  AT,
	"&":  AMPERSAND,
	"|":  PIPE,
	"~":  TILDE,
	"!":  BANG,
	"%":  PERCENT,
	"<<": LT2,
	">>": GT2,
	"&&": AMPERSAND2,
	"||": PIPE2,
	"==": EQ2,
	"!=": BANGEQ,
}

// LookupPunctuator reports the punctuator kind spelled by s.
// s is either a single character or a two-character compound.
func LookupPunctuator(s string) (Kind, bool) {
	k, ok := punctuators[s]
	return k, ok
}

// LineComment starts a comment running to the end of the line.
const LineComment = "//"
