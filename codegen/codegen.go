package codegen

import (
	"errors"
	"fmt"

	"github.com/takoeight0821/shadergraph/ast"
	"github.com/takoeight0821/shadergraph/graph"
	"github.com/takoeight0821/shadergraph/token"
	"github.com/takoeight0821/shadergraph/utils"
)

// Builder is the graph backend the generator writes to.
// graph.Memory is an in-memory Builder.
type Builder interface {
	CreateScope(name string) (graph.ScopeID, error)
	// DeclareInput adds an input socket and returns the node reading it.
	DeclareInput(s graph.ScopeID, name string) (graph.NodeID, error)
	DeclareOutput(s graph.ScopeID, name string) error
	CreateValueNode(s graph.ScopeID, value float64) (graph.NodeID, error)
	CreateOperatorNode(s graph.ScopeID, op graph.OpKind, left, right graph.Operand) (graph.NodeID, error)
	Bind(s graph.ScopeID, name string, node graph.NodeID) error
	Lookup(s graph.ScopeID, name string) (graph.NodeID, bool)
	// Clear removes everything previously emitted into the scope.
	Clear(s graph.ScopeID) error
}

// Generator emits node graphs for a program: one graph for the top-level
// statements and one graph per function definition.
type Generator struct {
	builder Builder
	root    string
	// scopes is the stack of graphs being emitted; the innermost is last.
	scopes  []graph.ScopeID
	// defined holds the graph names opened by the current generation.
	defined map[string]bool
	stop    bool
}

func New(builder Builder, root string) *Generator {
	return &Generator{builder: builder, root: root}
}

// Generate clears the root graph and emits the program into it.
// Generation stops at the first error. Nodes emitted before the error are
// kept.
func (g *Generator) Generate(program []ast.Node) error {
	g.stop = false
	g.scopes = g.scopes[:0]
	g.defined = map[string]bool{g.root: true}
	root, err := g.openScope(g.root)
	if err != nil {
		return err
	}
	g.scopes = append(g.scopes, root)
	defer g.popScope()

	return g.emit(program)
}

func (g *Generator) openScope(name string) (graph.ScopeID, error) {
	s, err := g.builder.CreateScope(name)
	if err != nil {
		return s, fmt.Errorf("create scope %s: %w", name, err)
	}
	if err := g.builder.Clear(s); err != nil {
		return s, fmt.Errorf("clear scope %s: %w", name, err)
	}
	return s, nil
}

func (g *Generator) current() graph.ScopeID {
	return g.scopes[len(g.scopes)-1]
}

func (g *Generator) popScope() {
	g.scopes = g.scopes[:len(g.scopes)-1]
}

func (g *Generator) emit(nodes []ast.Node) error {
	for _, node := range nodes {
		if g.stop {
			break
		}
		if err := g.statement(node); err != nil {
			g.stop = true
			return err
		}
	}
	return nil
}

func (g *Generator) statement(node ast.Node) error {
	switch n := node.(type) {
	case *ast.FnDef:
		return g.fnDef(n)
	case *ast.Decl:
		return g.bindTo(n.Expr.Name, n.Expr.Init)
	case *ast.Assign:
		if _, ok := g.builder.Lookup(g.current(), n.Name.Lexeme); !ok {
			return genError(n.Name, UndeclaredIdentifierError{Name: n.Name.Lexeme})
		}
		return g.bindTo(n.Name, n.Init)
	default:
		if err := g.check(n); err != nil {
			return err
		}
		_, err := g.expr(n)
		return err
	}
}

func (g *Generator) fnDef(n *ast.FnDef) error {
	name := n.Sig.Name.Lexeme
	if g.defined[name] {
		return genError(n.Sig.Name, RedefinitionError{Name: name, Root: name == g.root})
	}
	g.defined[name] = true

	s, err := g.openScope(name)
	if err != nil {
		return genError(n.Sig.Name, err)
	}
	g.scopes = append(g.scopes, s)
	defer g.popScope()

	for _, arg := range n.Sig.Args {
		if err := g.declareArg(arg); err != nil {
			return err
		}
	}

	return g.emit(n.Body)
}

// declareArg exposes a vector argument as an input socket, and also as an
// output socket when the function writes it back.
func (g *Generator) declareArg(arg *ast.FnArg) error {
	if !arg.Type.IsVector() {
		return nil
	}
	name := arg.Name.Lexeme
	node, err := g.builder.DeclareInput(g.current(), name)
	if err != nil {
		return genError(arg.Name, err)
	}
	if err := g.builder.Bind(g.current(), name, node); err != nil {
		return genError(arg.Name, err)
	}
	if arg.Direction.Writes() {
		if err := g.builder.DeclareOutput(g.current(), name); err != nil {
			return genError(arg.Name, err)
		}
	}
	return nil
}

func (g *Generator) bindTo(name token.Token, init ast.Node) error {
	if err := g.check(init); err != nil {
		return err
	}
	v, err := g.expr(init)
	if err != nil {
		return err
	}
	if err := g.builder.Bind(g.current(), name.Lexeme, v.node); err != nil {
		return genError(name, err)
	}
	return nil
}

// check rejects an expression before anything is emitted for it, so that a
// failing statement leaves no nodes behind.
func (g *Generator) check(expr ast.Node) error {
	var errs error
	for _, n := range ast.Universe(expr) {
		switch n := n.(type) {
		case *ast.Literal:
			if _, err := n.Value().Float(); err != nil {
				errs = errors.Join(errs, genError(n.Token, err))
			}
		case *ast.Ident:
			if _, ok := g.builder.Lookup(g.current(), n.Name.Lexeme); !ok {
				errs = errors.Join(errs, genError(n.Name, UndeclaredIdentifierError{Name: n.Name.Lexeme}))
			}
		case *ast.Binary:
			if _, ok := opKind(n.Op); !ok {
				errs = errors.Join(errs, genError(n.Op, UnsupportedNodeError{Node: n}))
			}
		default:
			errs = errors.Join(errs, genError(n.Base(), UnsupportedNodeError{Node: n}))
		}
	}
	return errs
}

// value is the result of an expression: a node, or a constant that has not
// been materialized as a node yet.
type value struct {
	node    graph.NodeID
	isConst bool
	num     float64
}

func (v value) operand() graph.Operand {
	if v.isConst {
		return graph.Const(v.num)
	}
	return graph.Link(v.node)
}

func (g *Generator) expr(expr ast.Node) (value, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		num, err := n.Value().Float()
		if err != nil {
			return value{}, genError(n.Token, err)
		}
		id, err := g.builder.CreateValueNode(g.current(), num)
		if err != nil {
			return value{}, genError(n.Token, err)
		}
		return value{node: id}, nil
	case *ast.Ident:
		id, ok := g.builder.Lookup(g.current(), n.Name.Lexeme)
		if !ok {
			return value{}, genError(n.Name, UndeclaredIdentifierError{Name: n.Name.Lexeme})
		}
		return value{node: id}, nil
	case *ast.Binary:
		return g.binary(n)
	default:
		return value{}, genError(expr.Base(), UnsupportedNodeError{Node: expr})
	}
}

func (g *Generator) binary(n *ast.Binary) (value, error) {
	op, ok := opKind(n.Op)
	if !ok {
		return value{}, genError(n.Op, UnsupportedNodeError{Node: n})
	}
	left, err := g.operand(n.Left)
	if err != nil {
		return value{}, err
	}
	right, err := g.operand(n.Right)
	if err != nil {
		return value{}, err
	}
	id, err := g.builder.CreateOperatorNode(g.current(), op, left.operand(), right.operand())
	if err != nil {
		return value{}, genError(n.Op, err)
	}
	return value{node: id}, nil
}

// operand evaluates an operator input. A literal is embedded into the socket
// instead of getting its own node.
func (g *Generator) operand(expr ast.Node) (value, error) {
	if lit, ok := expr.(*ast.Literal); ok {
		num, err := lit.Value().Float()
		if err != nil {
			return value{}, genError(lit.Token, err)
		}
		return value{isConst: true, num: num}, nil
	}
	return g.expr(expr)
}

func opKind(op token.Token) (graph.OpKind, bool) {
	//exhaustive:ignore
	switch op.Kind {
	case token.PLUS:
		return graph.Add, true
	case token.MINUS:
		return graph.Subtract, true
	case token.STAR:
		return graph.Multiply, true
	case token.SLASH:
		return graph.Divide, true
	default:
		return 0, false
	}
}

type UndeclaredIdentifierError struct {
	Name string
}

func (e UndeclaredIdentifierError) Error() string {
	return fmt.Sprintf("undeclared identifier `%s`", e.Name)
}

// RedefinitionError reports a function whose graph name is already taken,
// either by an earlier function or by the root graph.
type RedefinitionError struct {
	Name string
	Root bool
}

func (e RedefinitionError) Error() string {
	if e.Root {
		return fmt.Sprintf("function `%s` has the name of the root graph", e.Name)
	}
	return fmt.Sprintf("function `%s` is already defined", e.Name)
}

type UnsupportedNodeError struct {
	Node ast.Node
}

func (e UnsupportedNodeError) Error() string {
	return fmt.Sprintf("not implemented: %v", e.Node)
}

func genError(where token.Token, err error) error {
	return utils.ErrorAt(where, fmt.Errorf("[codegen] %w", err))
}
