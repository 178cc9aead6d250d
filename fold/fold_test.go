package fold_test

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/takoeight0821/shadergraph/ast"
	"github.com/takoeight0821/shadergraph/driver"
	"github.com/takoeight0821/shadergraph/fold"
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

func parse(t *testing.T, source string) []ast.Node {
	t.Helper()
	nodes, err := parser.New(lexer.New(source)).ParseDecl()
	if err != nil {
		t.Fatalf("ParseDecl(%q) returned error: %v", source, err)
	}
	return nodes
}

func TestFoldFromTestData(t *testing.T) {
	t.Parallel()
	s, err := os.ReadFile("../testdata/testcase.yaml")
	if err != nil {
		panic(err)
	}
	testcases := utils.ReadTestData(s)
	for _, testcase := range testcases {
		expected, ok := testcase.Expected["fold"]
		if !ok {
			continue
		}
		runner := driver.NewPassRunner()
		runner.AddPass(fold.Folder{})
		nodes, err := runner.RunSource(testcase.Input)
		if err != nil {
			t.Errorf("%s: RunSource returned error: %v", testcase.Label, err)
			continue
		}
		if diff := cmp.Diff(expected, show(nodes)); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", testcase.Label, diff)
		}
	}
}

func TestArithmetic(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input    string
		expected float64
	}{
		{"1.5 + 2.25;", 3.75},
		{"1.5 - 2.25;", -0.75},
		{"1.5 * 2.0;", 3},
		{"1.0 / 4.0;", 0.25},
		{"10 / 4;", 2.5},
		{"1 + 2.5;", 3.5},
		{"1.0 * (1.0 + 2.0) * (3.0 - 1.0);", 6},
		{"1.0 + 2.0 * 3.0 - 4.0 / 2.0;", 5},
	}

	for _, testcase := range testcases {
		folded, err := fold.Fold(parse(t, testcase.input))
		if err != nil {
			t.Errorf("Fold(%q) returned error: %v", testcase.input, err)
			continue
		}
		lit, ok := folded[0].(*ast.Literal)
		if !ok {
			t.Errorf("Fold(%q) returned %v, expected a literal", testcase.input, folded[0])
			continue
		}
		if lit.Value().Kind != token.FloatLit {
			t.Errorf("Fold(%q) returned a %v literal, expected FLOAT", testcase.input, lit.Value().Kind)
		}
		value, err := lit.Value().Float()
		if err != nil {
			t.Errorf("Fold(%q): %v", testcase.input, err)
			continue
		}
		if math.Abs(value-testcase.expected) > 1e-12 {
			t.Errorf("Fold(%q) = %v, expected %v", testcase.input, value, testcase.expected)
		}
	}
}

func TestIdempotent(t *testing.T) {
	t.Parallel()

	program := parse(t, "float a = 1.0 + 2.0 * b; void f(out vec3 c) { c = 3.0 * 2.0; } x = -(1.0 + 2.0);")
	once, err := fold.Fold(program)
	if err != nil {
		t.Fatalf("Fold returned error: %v", err)
	}
	twice, err := fold.Fold(once)
	if err != nil {
		t.Fatalf("Fold returned error: %v", err)
	}
	if diff := cmp.Diff(show(once), show(twice)); diff != "" {
		t.Errorf("second fold changed the program (-once +twice):\n%s", diff)
	}
}

func TestInputUnchanged(t *testing.T) {
	t.Parallel()

	program := parse(t, "float a = 1.0 + 2.0; void f() { float t = 2.0 * 3.0; }")
	before := show(program)
	if _, err := fold.Fold(program); err != nil {
		t.Fatalf("Fold returned error: %v", err)
	}
	if diff := cmp.Diff(before, show(program)); diff != "" {
		t.Errorf("Fold modified its input (-before +after):\n%s", diff)
	}
}

func TestFoldedLocation(t *testing.T) {
	t.Parallel()

	folded, err := fold.Fold(parse(t, "x = 1.0 +\n 2.0;"))
	if err != nil {
		t.Fatalf("Fold returned error: %v", err)
	}
	assign, ok := folded[0].(*ast.Assign)
	if !ok {
		t.Fatalf("expected *ast.Assign, got %T", folded[0])
	}
	lit, ok := assign.Init.(*ast.Literal)
	if !ok {
		t.Fatalf("expected a literal initializer, got %v", assign.Init)
	}
	if diff := cmp.Diff(token.Location{Line: 1, Column: 9}, lit.Location); diff != "" {
		t.Errorf("location mismatch (-want +got):\n%s", diff)
	}
}

// huge is an integer literal near 1e200; the square of it overflows float64.
var huge = "1" + strings.Repeat("0", 200)

func TestErrors(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input  string
		target any
	}{
		{"float a = 1.0 / 0.0;", &fold.DivisionByZeroError{}},
		{"float a = 1.0 / (2.0 - 2.0);", &fold.DivisionByZeroError{}},
		{"float a = true + 1.0;", &fold.UnsupportedOperationError{}},
		{"float a = 1.0 < 2.0;", &fold.UnsupportedOperationError{}},
		{"void f() { float t = 1 == 1; }", &fold.UnsupportedOperationError{}},
		{"float a = " + huge + " * " + huge + ";", &fold.NonFiniteError{}},
		{"float a = 0.0 - " + huge + " * " + huge + ";", &fold.NonFiniteError{}},
	}

	for _, testcase := range testcases {
		program := parse(t, testcase.input)
		folded, err := fold.Fold(program)
		if !errors.As(err, testcase.target) {
			t.Errorf("Fold(%q): expected %T, got %v", testcase.input, testcase.target, err)
		}
		var pos utils.PosError
		if !errors.As(err, &pos) {
			t.Errorf("Fold(%q): expected a positioned error, got %v", testcase.input, err)
		}
		if diff := cmp.Diff(show(program), show(folded)); diff != "" {
			t.Errorf("Fold(%q) must return the original program on error (-want +got):\n%s", testcase.input, diff)
		}
	}
}

func TestNonFiniteMessage(t *testing.T) {
	t.Parallel()

	_, err := fold.Fold(parse(t, "float a = "+huge+" * "+huge+";"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if strings.Contains(err.Error(), "Inf") {
		t.Errorf("the error must not spell an infinite literal, got %q", err.Error())
	}
}

func TestUnfoldableKept(t *testing.T) {
	t.Parallel()

	// Only literal pairs fold; a comparison with an identifier stays.
	source := "a < 1.0; b = 2.0 / c;"
	folded, err := fold.Fold(parse(t, source))
	if err != nil {
		t.Fatalf("Fold returned error: %v", err)
	}
	expected := "(binary (ident a) < (literal 1.0))\n(assign b (binary (literal 2.0) / (ident c)))\n"
	if diff := cmp.Diff(expected, show(folded)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
