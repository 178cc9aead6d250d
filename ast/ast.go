package ast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/takoeight0821/shadergraph/token"
)

// AST

// Node is one of the node types declared in this package.
type Node interface {
	fmt.Stringer
	Base() token.Token
	// Plate applies the given function to each child node and returns a copy
	// of the receiver holding the results. The receiver is left untouched.
	// If f returns an error, f also must return the original argument n.
	// FYI: https://hackage.haskell.org/package/lens-5.2.3/docs/Control-Lens-Plated.html
	Plate(error, func(Node, error) (Node, error)) (Node, error)
	node()
}

// Direction is the data-flow role of a function argument.
type Direction int

const (
	NoDirection Direction = iota
	In
	Out
	InOut
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "inout"
	default:
		return ""
	}
}

// Writes reports whether the argument is passed back to the caller.
func (d Direction) Writes() bool {
	return d == Out || d == InOut
}

type FnArg struct {
	Name      token.Token
	Type      token.TypeKind
	Direction Direction
}

func (a FnArg) String() string {
	return parenthesize("arg", a.Direction, a.Type, a.Name).String()
}

func (a *FnArg) Base() token.Token {
	return a.Name
}

func (a *FnArg) Plate(err error, _ func(Node, error) (Node, error)) (Node, error) {
	return a, err
}

func (*FnArg) node() {}

var _ Node = &FnArg{}

type FnSig struct {
	Name   token.Token
	Args   []*FnArg
	Return token.TypeKind
}

func (s FnSig) String() string {
	return parenthesize("sig", s.Name, s.Return, concat(s.Args)).String()
}

func (s *FnSig) Base() token.Token {
	return s.Name
}

func (s *FnSig) Plate(err error, f func(Node, error) (Node, error)) (Node, error) {
	c := *s
	c.Args = make([]*FnArg, len(s.Args))
	for i, arg := range s.Args {
		var a Node
		a, err = f(arg, err)
		c.Args[i] = a.(*FnArg)
	}
	return &c, err
}

func (*FnSig) node() {}

var _ Node = &FnSig{}

type FnDef struct {
	Sig  *FnSig
	Body []Node
}

func (d FnDef) String() string {
	return parenthesize("fn", d.Sig, concat(d.Body)).String()
}

func (d *FnDef) Base() token.Token {
	return d.Sig.Base()
}

func (d *FnDef) Plate(err error, f func(Node, error) (Node, error)) (Node, error) {
	c := *d
	var sig Node
	sig, err = f(d.Sig, err)
	c.Sig = sig.(*FnSig)
	c.Body = make([]Node, len(d.Body))
	for i, stmt := range d.Body {
		c.Body[i], err = f(stmt, err)
	}
	return &c, err
}

func (*FnDef) node() {}

var _ Node = &FnDef{}

type Binary struct {
	Left  Node
	Op    token.Token
	Right Node
}

func (b Binary) String() string {
	return parenthesize("binary", b.Left, b.Op, b.Right).String()
}

func (b *Binary) Base() token.Token {
	return b.Op
}

func (b *Binary) Plate(err error, f func(Node, error) (Node, error)) (Node, error) {
	c := *b
	c.Left, err = f(b.Left, err)
	c.Right, err = f(b.Right, err)
	return &c, err
}

func (*Binary) node() {}

var _ Node = &Binary{}

type Unary struct {
	Op      token.Token
	Operand Node
}

func (u Unary) String() string {
	return parenthesize("unary", u.Op, u.Operand).String()
}

func (u *Unary) Base() token.Token {
	return u.Op
}

func (u *Unary) Plate(err error, f func(Node, error) (Node, error)) (Node, error) {
	c := *u
	c.Operand, err = f(u.Operand, err)
	return &c, err
}

func (*Unary) node() {}

var _ Node = &Unary{}

// Decl is a typed variable declaration. A declaration always carries its
// initializing assignment.
type Decl struct {
	Type token.TypeKind
	Expr *Assign
}

func (d Decl) String() string {
	return parenthesize("decl", d.Type, d.Expr).String()
}

func (d *Decl) Base() token.Token {
	return d.Expr.Base()
}

func (d *Decl) Plate(err error, f func(Node, error) (Node, error)) (Node, error) {
	c := *d
	var expr Node
	expr, err = f(d.Expr, err)
	c.Expr = expr.(*Assign)
	return &c, err
}

func (*Decl) node() {}

var _ Node = &Decl{}

type Assign struct {
	Name token.Token
	Init Node
}

func (a Assign) String() string {
	return parenthesize("assign", a.Name, a.Init).String()
}

func (a *Assign) Base() token.Token {
	return a.Name
}

func (a *Assign) Plate(err error, f func(Node, error) (Node, error)) (Node, error) {
	c := *a
	c.Init, err = f(a.Init, err)
	return &c, err
}

func (*Assign) node() {}

var _ Node = &Assign{}

type Ident struct {
	Name token.Token
}

func (i Ident) String() string {
	return parenthesize("ident", i.Name).String()
}

func (i *Ident) Base() token.Token {
	return i.Name
}

func (i *Ident) Plate(err error, _ func(Node, error) (Node, error)) (Node, error) {
	return i, err
}

func (*Ident) node() {}

var _ Node = &Ident{}

// Call is a function call or a type constructor such as `vec3(1.0)`.
type Call struct {
	Name token.Token
	Args []Node
}

func (c Call) String() string {
	return parenthesize("call", c.Name, concat(c.Args)).String()
}

func (c *Call) Base() token.Token {
	return c.Name
}

func (c *Call) Plate(err error, f func(Node, error) (Node, error)) (Node, error) {
	cp := *c
	cp.Args = make([]Node, len(c.Args))
	for i, arg := range c.Args {
		cp.Args[i], err = f(arg, err)
	}
	return &cp, err
}

func (*Call) node() {}

var _ Node = &Call{}

type Literal struct {
	token.Token
}

func (l Literal) String() string {
	return parenthesize("literal", l.Token).String()
}

func (l *Literal) Base() token.Token {
	return l.Token
}

func (l *Literal) Plate(err error, _ func(Node, error) (Node, error)) (Node, error) {
	return l, err
}

func (*Literal) node() {}

var _ Node = &Literal{}

// Value returns the literal payload of the token.
func (l *Literal) Value() token.Literal {
	lit, _ := l.Token.Literal.(token.Literal)
	return lit
}

// parenthesize takes a head string and a variadic number of nodes that implement the fmt.Stringer interface.
// It returns a fmt.Stringer that represents a string where each node is parenthesized and separated by a space.
// If the head string is not empty, it is added at the beginning of the string.
//
//tool:ignore
func parenthesize(head string, elems ...fmt.Stringer) fmt.Stringer {
	var b strings.Builder
	b.WriteString("(")
	elemsStr := concat(elems).String()
	if head != "" {
		b.WriteString(head)
	}
	if elemsStr != "" {
		if head != "" {
			b.WriteString(" ")
		}
		b.WriteString(elemsStr)
	}
	b.WriteString(")")
	return &b
}

// concat takes a slice of nodes that implement the fmt.Stringer interface.
// It returns a fmt.Stringer that represents a string where each non-empty node is separated by a space.
//
//tool:ignore
func concat[T fmt.Stringer](elems []T) fmt.Stringer {
	var b strings.Builder
	for _, elem := range elems {
		// ignore empty string
		// e.g. concat({}) == ""
		str := elem.String()
		if str == "" {
			continue
		}
		if b.Len() != 0 {
			b.WriteString(" ")
		}
		b.WriteString(str)
	}
	return &b
}

// Traverse the [Node] in depth-first order.
// f is called for each node.
// If f returns an error, f also must return the original argument n.
// Children are rebuilt before n is passed to f; the input tree is not modified.
//
//tool:ignore
func Traverse(n Node, f func(Node, error) (Node, error)) (Node, error) {
	n, err := n.Plate(nil, func(n Node, err error) (Node, error) {
		m, childErr := Traverse(n, f)
		return m, errors.Join(err, childErr)
	})
	return f(n, err)
}

//tool:ignore
func Universe(n Node) []Node {
	var nodes []Node
	_, err := Traverse(n, func(n Node, _ error) (Node, error) {
		nodes = append(nodes, n)
		return n, nil
	})
	if err != nil {
		panic(fmt.Errorf("unexpected error: %w", err))
	}
	return nodes
}
