package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/takoeight0821/shadergraph/ast"
	"github.com/takoeight0821/shadergraph/token"
	"github.com/takoeight0821/shadergraph/utils"
)

// TokenSource yields tokens in source order. *lexer.Lexer is a TokenSource.
type TokenSource interface {
	Next() (token.Token, error)
}

type sliceSource struct {
	tokens []token.Token
}

func (s *sliceSource) Next() (token.Token, error) {
	if len(s.tokens) == 0 {
		return token.Token{Kind: token.EOF}, nil
	}
	tok := s.tokens[0]
	if tok.Kind != token.EOF {
		s.tokens = s.tokens[1:]
	}
	return tok, nil
}

// Parser builds the AST from a token stream with one token of lookahead.
type Parser struct {
	src  TokenSource
	curr token.Token
	next token.Token
	err  error
	// fatal is set when the token source failed; no more tokens can be read.
	fatal bool
}

// New creates a parser reading tokens from src on demand.
func New(src TokenSource) *Parser {
	p := &Parser{src: src}
	p.curr = p.pull()
	p.next = p.pull()
	return p
}

// NewParser creates a parser over an already scanned token list.
func NewParser(tokens []token.Token) *Parser {
	return New(&sliceSource{tokens: tokens})
}

// ParseDecl parses top-level declarations until the end of input or the
// first error. On error the returned declarations are partial and must not
// be compiled further.
func (p *Parser) ParseDecl() ([]ast.Node, error) {
	nodes := []ast.Node{}
	for p.keepParsing() {
		if p.match(token.TYPE) {
			nodes = appendNode(nodes, p.item(true))
		} else {
			nodes = append(nodes, p.statement()...)
		}
	}

	return nodes, p.err
}

// ParseExpr parses a single expression.
func (p *Parser) ParseExpr() (ast.Node, error) {
	node := p.expr()
	if !p.IsAtEnd() {
		p.recover(unexpectedToken(p.peek(), "end of input"))
	}

	return node, p.err
}

func appendNode(nodes []ast.Node, n ast.Node) []ast.Node {
	if n == nil {
		return nodes
	}
	return append(nodes, n)
}

func (p *Parser) keepParsing() bool {
	return !p.IsAtEnd() && p.err == nil
}

// item = fnDef | varDecl | constructorStmt ;
// constructorStmt = TYPE "(" (expr ("," expr)*)? ")" ";" ;
// Function definitions are only allowed at top level.
func (p *Parser) item(topLevel bool) ast.Node {
	typ := p.advance()
	switch {
	case p.match(token.IDENT) && p.matchNext(token.LEFTPAREN):
		if !topLevel {
			p.recover(utils.ErrorAt(p.peek(), NestedFunctionError{}))
			return nil
		}
		return p.fnDef(typ)
	case p.match(token.IDENT):
		return p.varDecl(typ)
	case p.match(token.LEFTPAREN):
		call := p.callArgs(typ)
		p.consume(token.SEMICOLON)
		return call
	default:
		p.recover(unexpectedToken(p.peek(), "identifier", "`(`"))
		p.advance()
		return nil
	}
}

type NestedFunctionError struct{}

func (NestedFunctionError) Error() string {
	return "function definitions are only allowed at top level"
}

// fnDef = TYPE IDENT "(" (fnArg ("," fnArg)*)? ")" block ;
func (p *Parser) fnDef(ret token.Token) *ast.FnDef {
	name := p.consume(token.IDENT)
	p.consume(token.LEFTPAREN)
	args := []*ast.FnArg{}
	for p.keepParsing() && !p.match(token.RIGHTPAREN) {
		args = append(args, p.fnArg())
		if !p.match(token.COMMA) {
			break
		}
		p.advance()
	}
	p.consume(token.RIGHTPAREN)

	sig := &ast.FnSig{Name: name, Args: args, Return: typeOf(ret)}
	body := p.block()

	return &ast.FnDef{Sig: sig, Body: body}
}

// fnArg = ("in" | "out" | "inout")? TYPE IDENT ;
func (p *Parser) fnArg() *ast.FnArg {
	dir := ast.NoDirection
	//exhaustive:ignore
	switch p.peek().Kind {
	case token.IN:
		dir = ast.In
		p.advance()
	case token.OUT:
		dir = ast.Out
		p.advance()
	case token.INOUT:
		dir = ast.InOut
		p.advance()
	case token.TYPE:
	default:
		p.recover(unexpectedToken(p.peek(), "`in`", "`out`", "`inout`", "type"))
		p.advance()
		return &ast.FnArg{}
	}
	typ := p.consume(token.TYPE)
	name := p.consume(token.IDENT)

	return &ast.FnArg{Name: name, Type: typeOf(typ), Direction: dir}
}

// block = "{" statement* "}" ;
func (p *Parser) block() []ast.Node {
	p.consume(token.LEFTBRACE)
	body := []ast.Node{}
	for p.keepParsing() && !p.match(token.RIGHTBRACE) {
		if p.match(token.TYPE) {
			body = appendNode(body, p.item(false))
		} else {
			body = append(body, p.statement()...)
		}
	}
	p.consume(token.RIGHTBRACE)

	return body
}

type DeclarationError struct{}

func (DeclarationError) Error() string {
	return "declaration without initializer is not supported"
}

// InitializerError reports a declaration whose expression is not a single
// assignment to the declared name, as in `float a = 1.0 == 2.0;`.
type InitializerError struct {
	Expr ast.Node
}

func (e InitializerError) Error() string {
	return fmt.Sprintf("declaration initializer is not an assignment: %v", e.Expr)
}

// varDecl = TYPE IDENT "=" expr ";" ;
func (p *Parser) varDecl(typ token.Token) ast.Node {
	name := p.peek()
	expr := p.expr()
	p.consume(token.SEMICOLON)

	switch e := expr.(type) {
	case *ast.Assign:
		return &ast.Decl{Type: typeOf(typ), Expr: e}
	case *ast.Ident, nil:
		p.recover(utils.ErrorAt(name, DeclarationError{}))
	default:
		p.recover(utils.ErrorAt(name, InitializerError{Expr: e}))
	}

	return nil
}

// statement = exprStmt ;
func (p *Parser) statement() []ast.Node {
	if p.match(token.IDENT) || p.match(token.LITERAL) {
		return p.exprStmt()
	}
	p.recover(unexpectedToken(p.peek(), "identifier", "literal", "type"))
	p.advance()

	return nil
}

// exprStmt = expr ("," expr)* ";" ;
func (p *Parser) exprStmt() []ast.Node {
	exprs := []ast.Node{}
	for p.keepParsing() {
		exprs = appendNode(exprs, p.expr())
		if !p.match(token.COMMA) {
			break
		}
		p.advance()
	}
	p.consume(token.SEMICOLON)

	return exprs
}

// expr = equality ;
func (p *Parser) expr() ast.Node {
	if p.IsAtEnd() {
		p.recover(unexpectedToken(p.peek(), "expression"))

		return nil
	}

	return p.equality()
}

// binary parses `next (op next)*` for any op in ops, associating to the left.
func (p *Parser) binary(next func() ast.Node, ops ...token.Kind) ast.Node {
	left := next()
	for p.err == nil && p.matchAny(ops...) {
		op := p.advance()
		right := next()
		left = &ast.Binary{Left: left, Op: op, Right: right}
	}

	return left
}

// equality = assign (("==" | "!=") assign)* ;
func (p *Parser) equality() ast.Node {
	return p.binary(p.assign, token.EQ2, token.BANGEQ)
}

type AssignTargetError struct {
	Target ast.Node
}

func (e AssignTargetError) Error() string {
	return fmt.Sprintf("assignment target must be an identifier, got %v", e.Target)
}

// assign = comparison ("=" assign)? ;
func (p *Parser) assign() ast.Node {
	left := p.comparison()
	if !p.match(token.EQ) {
		return left
	}
	eq := p.advance()
	init := p.assign()
	if ident, ok := left.(*ast.Ident); ok {
		return &ast.Assign{Name: ident.Name, Init: init}
	}
	p.recover(utils.ErrorAt(eq, AssignTargetError{Target: left}))

	return left
}

// comparison = term (("<" | ">") term)* ;
func (p *Parser) comparison() ast.Node {
	return p.binary(p.term, token.LT, token.GT)
}

// term = factor (("+" | "-") factor)* ;
func (p *Parser) term() ast.Node {
	return p.binary(p.factor, token.PLUS, token.MINUS)
}

// factor = unary (("*" | "/") unary)* ;
func (p *Parser) factor() ast.Node {
	return p.binary(p.unary, token.STAR, token.SLASH)
}

// unary = ("-" | "!") unary | primary ;
func (p *Parser) unary() ast.Node {
	if p.matchAny(token.MINUS, token.BANG) {
		op := p.advance()
		return &ast.Unary{Op: op, Operand: p.unary()}
	}

	return p.primary()
}

// primary = IDENT | call | LITERAL | "(" expr ")" ;
// call = (IDENT | TYPE) "(" (expr ("," expr)*)? ")" ;
func (p *Parser) primary() ast.Node {
	//exhaustive:ignore
	switch tok := p.peek(); tok.Kind {
	case token.IDENT:
		if p.matchNext(token.LEFTPAREN) {
			return p.call()
		}
		p.advance()
		return &ast.Ident{Name: tok}
	case token.TYPE:
		return p.call()
	case token.LITERAL:
		p.advance()
		return &ast.Literal{Token: tok}
	case token.LEFTPAREN:
		p.advance()
		expr := p.expr()
		p.consume(token.RIGHTPAREN)
		return expr
	default:
		p.recover(unexpectedToken(tok, "identifier", "literal", "`(`"))
		p.advance()
		return &ast.Ident{Name: tok}
	}
}

func (p *Parser) call() *ast.Call {
	return p.callArgs(p.advance())
}

func (p *Parser) callArgs(name token.Token) *ast.Call {
	p.consume(token.LEFTPAREN)
	args := []ast.Node{}
	for p.keepParsing() && !p.match(token.RIGHTPAREN) {
		args = appendNode(args, p.expr())
		if !p.match(token.COMMA) {
			break
		}
		p.advance()
	}
	p.consume(token.RIGHTPAREN)

	return &ast.Call{Name: name, Args: args}
}

func typeOf(t token.Token) token.TypeKind {
	typ, _ := t.Literal.(token.TypeKind)
	return typ
}

func (p *Parser) recover(err error) {
	p.err = errors.Join(p.err, err)
}

func (p *Parser) pull() token.Token {
	if p.fatal {
		return token.Token{Kind: token.EOF, Location: p.curr.Location}
	}
	tok, err := p.src.Next()
	if err != nil {
		p.fatal = true
		p.recover(err)
		return token.Token{Kind: token.EOF, Location: p.curr.Location}
	}
	return tok
}

func (p *Parser) peek() token.Token {
	return p.curr
}

func (p *Parser) advance() token.Token {
	tok := p.curr
	if !p.IsAtEnd() {
		p.curr = p.next
		p.next = p.pull()
	}

	return tok
}

func (p *Parser) IsAtEnd() bool {
	return p.curr.Kind == token.EOF
}

func (p *Parser) match(kind token.Kind) bool {
	if p.IsAtEnd() {
		return false
	}

	return p.curr.Kind == kind
}

func (p *Parser) matchAny(kinds ...token.Kind) bool {
	for _, kind := range kinds {
		if p.match(kind) {
			return true
		}
	}

	return false
}

func (p *Parser) matchNext(kind token.Kind) bool {
	return p.next.Kind == kind
}

// consume advances past a token of the given kind. Otherwise it records an
// error and still advances so that a broken token cannot stall the parser.
func (p *Parser) consume(kind token.Kind) token.Token {
	if p.match(kind) {
		return p.advance()
	}

	tok := p.peek()
	p.recover(unexpectedToken(tok, kind.String()))
	p.advance()

	return tok
}

type UnexpectedTokenError struct {
	Expected []string
}

func (e UnexpectedTokenError) Error() string {
	return "unexpected token: expected " + strings.Join(e.Expected, ", ")
}

func unexpectedToken(t token.Token, expected ...string) error {
	return utils.ErrorAt(t, UnexpectedTokenError{Expected: expected})
}
