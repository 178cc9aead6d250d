package token

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeKind is a built-in type of the shading language.
// VEC4 also stands for a colour.
type TypeKind int

const (
	VOID TypeKind = iota
	INT
	FLOAT
	BOOL
	VEC2
	VEC3
	VEC4
	MAT2
	MAT3
	MAT4
)

var typeNames = [...]string{
	VOID:  "void",
	INT:   "int",
	FLOAT: "float",
	BOOL:  "bool",
	VEC2:  "vec2",
	VEC3:  "vec3",
	VEC4:  "vec4",
	MAT2:  "mat2",
	MAT3:  "mat3",
	MAT4:  "mat4",
}

func (t TypeKind) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "TypeKind(" + strconv.Itoa(int(t)) + ")"
}

func (t TypeKind) IsVector() bool {
	return t == VEC2 || t == VEC3 || t == VEC4
}

// LookupType reports the type named by word.
func LookupType(word string) (TypeKind, bool) {
	for t, name := range typeNames {
		if name == word {
			return TypeKind(t), true
		}
	}
	return VOID, false
}

type LiteralKind int

const (
	IntLit LiteralKind = iota
	FloatLit
	BoolLit
)

func (k LiteralKind) String() string {
	switch k {
	case IntLit:
		return "INT"
	case FloatLit:
		return "FLOAT"
	case BoolLit:
		return "BOOL"
	default:
		return "LiteralKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Literal keeps the source spelling of a constant.
// The numeric value is parsed on demand by Float.
type Literal struct {
	Kind LiteralKind
	Text string
}

type NotNumericError struct {
	Literal Literal
}

func (e NotNumericError) Error() string {
	return fmt.Sprintf("%s literal `%s` is not numeric", e.Literal.Kind, e.Literal.Text)
}

// Float reinterprets an INT or FLOAT literal as a float64.
func (l Literal) Float() (float64, error) {
	if l.Kind == BoolLit {
		return 0, NotNumericError{Literal: l}
	}
	v, err := strconv.ParseFloat(l.Text, 64)
	if err != nil {
		return 0, fmt.Errorf("literal `%s`: %w", l.Text, err)
	}
	return v, nil
}

// FormatFloat spells v the way a FLOAT literal is written in source,
// always with a decimal point.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// FloatLiteral builds the LITERAL token for v located at loc.
func FloatLiteral(v float64, loc Location) Token {
	text := FormatFloat(v)
	return Token{Kind: LITERAL, Lexeme: text, Location: loc, Literal: Literal{Kind: FloatLit, Text: text}}
}
