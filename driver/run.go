package driver

import (
	"errors"
	"fmt"
	"io"

	"github.com/takoeight0821/shadergraph/ast"
	"github.com/takoeight0821/shadergraph/lexer"
	"github.com/takoeight0821/shadergraph/parser"
	"github.com/takoeight0821/shadergraph/token"
)

type Pass interface {
	Name() string
	Init([]ast.Node) error
	Run([]ast.Node) ([]ast.Node, error)
}

type PassRunner struct {
	passes []Pass

	// TokenDump receives the raw token list when set.
	TokenDump io.Writer
	// ASTDump receives the parsed program when set.
	ASTDump io.Writer
}

func NewPassRunner() *PassRunner {
	return &PassRunner{}
}

// AddPass adds a pass to the end of the pass list.
func (r *PassRunner) AddPass(pass Pass) {
	r.passes = append(r.passes, pass)
}

// Run executes passes in order.
// If an error occurs, it stops the execution and returns the current program.
func (r *PassRunner) Run(program []ast.Node) ([]ast.Node, error) {
	for _, pass := range r.passes {
		err := pass.Init(program)
		if err != nil {
			return program, fmt.Errorf("init %s: %w", pass.Name(), err)
		}
		program, err = pass.Run(program)
		if err != nil {
			return program, fmt.Errorf("run %s: %w", pass.Name(), err)
		}
	}

	return program, nil
}

// Parse scans and parses source. A lexical error aborts immediately; parse
// errors are collected and returned together with the partial program.
// Source that is not a list of declarations is retried as a single
// expression, so that a prompt line like `1.0 + 2.0` needs no `;`.
func (r *PassRunner) Parse(source string) ([]ast.Node, error) {
	newParser := func() *parser.Parser {
		return parser.New(lexer.New(source))
	}
	if r.TokenDump != nil {
		tokens, err := lexer.Lex(source)
		if err != nil {
			return nil, fmt.Errorf("lex: %w", err)
		}
		if err := dumpTokens(r.TokenDump, tokens); err != nil {
			return nil, err
		}
		newParser = func() *parser.Parser {
			return parser.NewParser(tokens)
		}
	}

	program, err := newParser().ParseDecl()
	if err != nil {
		if isLexError(err) {
			return nil, fmt.Errorf("lex: %w", err)
		}
		expr, exprErr := newParser().ParseExpr()
		if exprErr != nil {
			return program, fmt.Errorf("parse:\n%w", err)
		}
		program = []ast.Node{expr}
	}

	if r.ASTDump != nil {
		if err := dumpAST(r.ASTDump, program); err != nil {
			return program, err
		}
	}

	return program, nil
}

// RunSource parses the source code and executes passes in order.
func (r *PassRunner) RunSource(source string) ([]ast.Node, error) {
	program, err := r.Parse(source)
	if err != nil {
		return program, err
	}

	return r.Run(program)
}

func isLexError(err error) bool {
	var unexpected lexer.UnexpectedCharacterError
	var malformed lexer.MalformedNumberError
	return errors.As(err, &unexpected) || errors.As(err, &malformed)
}

func dumpTokens(w io.Writer, tokens []token.Token) error {
	for _, tok := range tokens {
		if _, err := fmt.Fprintln(w, tok.Debug()); err != nil {
			return fmt.Errorf("dump tokens: %w", err)
		}
	}
	return nil
}

func dumpAST(w io.Writer, program []ast.Node) error {
	for _, node := range program {
		if _, err := fmt.Fprintln(w, node); err != nil {
			return fmt.Errorf("dump ast: %w", err)
		}
	}
	return nil
}
