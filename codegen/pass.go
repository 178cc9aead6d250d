package codegen

import "github.com/takoeight0821/shadergraph/ast"

// Pass runs a Generator as the last compiler pass. The program is passed
// through unchanged.
type Pass struct {
	*Generator
}

func NewPass(builder Builder, root string) Pass {
	return Pass{Generator: New(builder, root)}
}

func (Pass) Name() string {
	return "codegen.Pass"
}

func (Pass) Init([]ast.Node) error {
	return nil
}

func (p Pass) Run(program []ast.Node) ([]ast.Node, error) {
	return program, p.Generate(program)
}
