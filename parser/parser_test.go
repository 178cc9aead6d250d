package parser_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/takoeight0821/shadergraph/ast"
	"github.com/takoeight0821/shadergraph/lexer"
	"github.com/takoeight0821/shadergraph/parser"
	"github.com/takoeight0821/shadergraph/token"
	"github.com/takoeight0821/shadergraph/utils"
)

func show(nodes []ast.Node) string {
	var b strings.Builder
	for _, node := range nodes {
		b.WriteString(node.String())
		b.WriteString("\n")
	}
	return b.String()
}

func TestParseFromTestData(t *testing.T) {
	t.Parallel()
	s, err := os.ReadFile("../testdata/testcase.yaml")
	if err != nil {
		panic(err)
	}
	testcases := utils.ReadTestData(s)
	for _, testcase := range testcases {
		expected, ok := testcase.Expected["parser"]
		if !ok {
			continue
		}
		nodes, err := parser.New(lexer.New(testcase.Input)).ParseDecl()
		if err != nil {
			t.Errorf("%s: ParseDecl returned error: %v", testcase.Label, err)
			continue
		}
		if diff := cmp.Diff(expected, show(nodes)); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", testcase.Label, diff)
		}
	}
}

func TestSliceAndStreamAgree(t *testing.T) {
	t.Parallel()

	source := "float a = 1.0 + 2.0;\nvoid f(in vec3 p, out vec3 q) { q = p * 2.0; }"
	tokens, err := lexer.Lex(source)
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	fromSlice, err := parser.NewParser(tokens).ParseDecl()
	if err != nil {
		t.Fatalf("ParseDecl returned error: %v", err)
	}
	fromStream, err := parser.New(lexer.New(source)).ParseDecl()
	if err != nil {
		t.Fatalf("ParseDecl returned error: %v", err)
	}
	if diff := cmp.Diff(show(fromSlice), show(fromStream)); diff != "" {
		t.Errorf("mismatch (-slice +stream):\n%s", diff)
	}
}

func TestFunctionShape(t *testing.T) {
	t.Parallel()

	nodes, err := parser.New(lexer.New("void f(in vec3 p, inout vec2 q, float s) { p; }")).ParseDecl()
	if err != nil {
		t.Fatalf("ParseDecl returned error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected one declaration, got %d", len(nodes))
	}
	fn, ok := nodes[0].(*ast.FnDef)
	if !ok {
		t.Fatalf("expected *ast.FnDef, got %T", nodes[0])
	}

	type arg struct {
		Name      string
		Type      token.TypeKind
		Direction ast.Direction
	}
	expected := []arg{
		{"p", token.VEC3, ast.In},
		{"q", token.VEC2, ast.InOut},
		{"s", token.FLOAT, ast.NoDirection},
	}
	actual := make([]arg, len(fn.Sig.Args))
	for i, a := range fn.Sig.Args {
		actual[i] = arg{a.Name.Lexeme, a.Type, a.Direction}
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("arguments mismatch (-want +got):\n%s", diff)
	}
	if fn.Sig.Return != token.VOID {
		t.Errorf("expected return type void, got %v", fn.Sig.Return)
	}
	if fn.Sig.Name.Lexeme != "f" {
		t.Errorf("expected name f, got %s", fn.Sig.Name.Lexeme)
	}
}

func TestParseExpr(t *testing.T) {
	t.Parallel()

	node, err := parser.New(lexer.New("(1 + 2) * a")).ParseExpr()
	if err != nil {
		t.Fatalf("ParseExpr returned error: %v", err)
	}
	expected := "(binary (binary (literal 1) + (literal 2)) * (ident a))"
	if diff := cmp.Diff(expected, node.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err := parser.New(lexer.New("1 2")).ParseExpr(); err == nil {
		t.Error("expected an error for trailing tokens")
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input  string
		target any
	}{
		{"a + 1 = 2;", &parser.AssignTargetError{}},
		{"float a;", &parser.DeclarationError{}},
		{"float a = 1.0 + b;", nil},
		{"float a = 1.0 == 2.0;", &parser.InitializerError{}},
		{"float a, b;", &parser.DeclarationError{}},
		{"void f() { void g() { } }", &parser.NestedFunctionError{}},
		{"a + ;", &parser.UnexpectedTokenError{}},
		{"return a;", &parser.UnexpectedTokenError{}},
		{"void f(vec3) { }", &parser.UnexpectedTokenError{}},
		{"float a = (1.0;", &parser.UnexpectedTokenError{}},
		{"float a = $;", &lexer.UnexpectedCharacterError{}},
		{"float a = 1.2.3;", &lexer.MalformedNumberError{}},
	}

	for _, testcase := range testcases {
		_, err := parser.New(lexer.New(testcase.input)).ParseDecl()
		if testcase.target == nil {
			if err != nil {
				t.Errorf("%q: unexpected error: %v", testcase.input, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("%q: expected an error", testcase.input)
			continue
		}
		if !errors.As(err, testcase.target) {
			t.Errorf("%q: expected %T, got %v", testcase.input, testcase.target, err)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	_, err := parser.New(lexer.New("float a;")).ParseDecl()
	expected := "1:7: `a`, declaration without initializer is not supported"
	if err == nil || err.Error() != expected {
		t.Errorf("expected %q, got %v", expected, err)
	}

	_, err = parser.New(lexer.New("float a = 1.0 == 2.0;")).ParseDecl()
	var initializer parser.InitializerError
	if !errors.As(err, &initializer) {
		t.Errorf("expected InitializerError, got %v", err)
	} else if strings.Contains(err.Error(), "without initializer") {
		t.Errorf("a present initializer must not be reported as missing, got %q", err.Error())
	}

	_, err = parser.New(lexer.New("a +")).ParseDecl()
	var pos utils.PosError
	if !errors.As(err, &pos) || pos.Where.Kind != token.EOF {
		t.Errorf("expected an error at the end of input, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "at end") {
		t.Errorf("expected the message to mention the end of input, got %q", err.Error())
	}
}

func TestPartialProgram(t *testing.T) {
	t.Parallel()

	nodes, err := parser.New(lexer.New("float a = 1.0; b c;")).ParseDecl()
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(nodes) == 0 || nodes[0].String() != "(decl float (assign a (literal 1.0)))" {
		t.Errorf("expected the first declaration to survive, got %q", show(nodes))
	}
}

// failingSource yields its tokens and then fails. It counts the calls made
// after the failure.
type failingSource struct {
	tokens []token.Token
	after  int
}

var errBroken = errors.New("broken source")

func (s *failingSource) Next() (token.Token, error) {
	if len(s.tokens) == 0 {
		s.after++
		return token.Token{}, errBroken
	}
	tok := s.tokens[0]
	s.tokens = s.tokens[1:]
	return tok, nil
}

func TestSourceErrorStopsReading(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex("a = 1.0")
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	// Drop EOF so the source fails instead of ending.
	src := &failingSource{tokens: tokens[:len(tokens)-1]}

	_, err = parser.New(src).ParseDecl()
	if !errors.Is(err, errBroken) {
		t.Errorf("expected the source error, got %v", err)
	}
	if src.after != 1 {
		t.Errorf("expected exactly one failing call, got %d", src.after)
	}
}
