package token_test

import (
	"errors"
	"testing"

	"github.com/takoeight0821/shadergraph/token"
)

func TestFormatFloat(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input    float64
		expected string
	}{
		{3, "3.0"},
		{3.5, "3.5"},
		{-0.75, "-0.75"},
		{0, "0.0"},
		{1e21, "1000000000000000000000.0"},
	}

	for _, testcase := range testcases {
		if actual := token.FormatFloat(testcase.input); actual != testcase.expected {
			t.Errorf("FormatFloat(%v) = %q, expected %q", testcase.input, actual, testcase.expected)
		}
	}
}

func TestFloatLiteral(t *testing.T) {
	t.Parallel()

	loc := token.Location{Line: 2, Column: 4}
	tok := token.FloatLiteral(6, loc)
	if tok.Kind != token.LITERAL || tok.Lexeme != "6.0" || tok.Location != loc {
		t.Errorf("unexpected token %v", tok.Debug())
	}
	if got := tok.Debug(); got != `2:4 LITERAL "6.0" FLOAT` {
		t.Errorf("unexpected dump %q", got)
	}

	lit, ok := tok.Literal.(token.Literal)
	if !ok {
		t.Fatalf("expected a token.Literal payload, got %T", tok.Literal)
	}
	if v, err := lit.Float(); err != nil || v != 6 {
		t.Errorf("Float() = %v, %v", v, err)
	}
}

func TestBoolIsNotNumeric(t *testing.T) {
	t.Parallel()

	_, err := token.Literal{Kind: token.BoolLit, Text: "true"}.Float()
	var notNumeric token.NotNumericError
	if !errors.As(err, &notNumeric) {
		t.Errorf("expected NotNumericError, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	if typ, ok := token.LookupType("vec4"); !ok || typ != token.VEC4 || !typ.IsVector() {
		t.Errorf("LookupType(vec4) = %v, %v", typ, ok)
	}
	if typ, ok := token.LookupType("float"); !ok || typ.IsVector() {
		t.Errorf("LookupType(float) = %v, %v", typ, ok)
	}
	if _, ok := token.LookupType("vec5"); ok {
		t.Error("vec5 is not a type")
	}
	if kind, ok := token.LookupKeyword("inout"); !ok || kind != token.INOUT {
		t.Errorf("LookupKeyword(inout) = %v, %v", kind, ok)
	}
	if _, ok := token.LookupKeyword("float"); ok {
		t.Error("type names are not keywords")
	}
	if kind, ok := token.LookupPunctuator("!="); !ok || kind != token.BANGEQ {
		t.Errorf("LookupPunctuator(!=) = %v, %v", kind, ok)
	}
	if _, ok := token.LookupPunctuator("=!"); ok {
		t.Error("=! is not a punctuator")
	}
}
