// Constant folding for arithmetic over literals.
package fold

import (
	"fmt"
	"math"

	"github.com/takoeight0821/shadergraph/ast"
	"github.com/takoeight0821/shadergraph/token"
	"github.com/takoeight0821/shadergraph/utils"
)

// Folder runs [Fold] as a compiler pass.
type Folder struct{}

func (Folder) Name() string {
	return "fold.Folder"
}

func (Folder) Init([]ast.Node) error {
	return nil
}

func (Folder) Run(program []ast.Node) ([]ast.Node, error) {
	return Fold(program)
}

// Fold replaces every binary expression over two numeric literals with the
// FLOAT literal of its value. The input is not modified.
//
// Function bodies, declaration and assignment initializers and binary
// operands are folded; call arguments and unary operands are left as they are.
func Fold(program []ast.Node) ([]ast.Node, error) {
	folded := make([]ast.Node, len(program))
	for i, node := range program {
		var err error
		folded[i], err = fold(node)
		if err != nil {
			return program, err
		}
	}
	return folded, nil
}

func fold(node ast.Node) (ast.Node, error) {
	switch n := node.(type) {
	case *ast.FnDef:
		body, err := Fold(n.Body)
		if err != nil {
			return n, err
		}
		return &ast.FnDef{Sig: n.Sig, Body: body}, nil
	case *ast.Decl:
		assign, err := foldAssign(n.Expr)
		if err != nil {
			return n, err
		}
		return &ast.Decl{Type: n.Type, Expr: assign}, nil
	case *ast.Assign:
		return foldAssign(n)
	case *ast.Binary:
		return foldBinary(n)
	case *ast.Unary, *ast.Call, *ast.Ident, *ast.Literal, *ast.FnSig, *ast.FnArg:
		return n, nil
	default:
		return n, fmt.Errorf("fold: unexpected node %v", n)
	}
}

func foldAssign(n *ast.Assign) (*ast.Assign, error) {
	init, err := fold(n.Init)
	if err != nil {
		return n, err
	}
	return &ast.Assign{Name: n.Name, Init: init}, nil
}

func foldBinary(n *ast.Binary) (ast.Node, error) {
	left, err := fold(n.Left)
	if err != nil {
		return n, err
	}
	right, err := fold(n.Right)
	if err != nil {
		return n, err
	}

	l, lok := left.(*ast.Literal)
	r, rok := right.(*ast.Literal)
	if !lok || !rok {
		return &ast.Binary{Left: left, Op: n.Op, Right: right}, nil
	}

	value, err := evalBinary(n.Op, l.Value(), r.Value())
	if err != nil {
		return n, err
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return n, foldError(n.Op, NonFiniteError{Left: l.Value(), Right: r.Value()})
	}
	return &ast.Literal{Token: token.FloatLiteral(value, n.Op.Location)}, nil
}

type DivisionByZeroError struct{}

func (DivisionByZeroError) Error() string {
	return "division by zero"
}

// NonFiniteError reports a folded value that has no FLOAT literal spelling.
type NonFiniteError struct {
	Left, Right token.Literal
}

func (e NonFiniteError) Error() string {
	return fmt.Sprintf("result of `%s` and `%s` is not a finite number", e.Left.Text, e.Right.Text)
}

type UnsupportedOperationError struct {
	Left, Right token.Literal
}

func (e UnsupportedOperationError) Error() string {
	return fmt.Sprintf("cannot fold %s `%s` and %s `%s`", e.Left.Kind, e.Left.Text, e.Right.Kind, e.Right.Text)
}

func evalBinary(op token.Token, lhs, rhs token.Literal) (float64, error) {
	if lhs.Kind == token.BoolLit || rhs.Kind == token.BoolLit {
		return 0, foldError(op, UnsupportedOperationError{Left: lhs, Right: rhs})
	}
	l, err := lhs.Float()
	if err != nil {
		return 0, foldError(op, err)
	}
	r, err := rhs.Float()
	if err != nil {
		return 0, foldError(op, err)
	}

	//exhaustive:ignore
	switch op.Kind {
	case token.PLUS:
		return l + r, nil
	case token.MINUS:
		return l - r, nil
	case token.STAR:
		return l * r, nil
	case token.SLASH:
		if r == 0 {
			return 0, foldError(op, DivisionByZeroError{})
		}
		return l / r, nil
	default:
		return 0, foldError(op, UnsupportedOperationError{Left: lhs, Right: rhs})
	}
}

func foldError(where token.Token, err error) error {
	return utils.ErrorAt(where, fmt.Errorf("[fold] %w", err))
}
