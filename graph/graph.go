// Package graph is the node-graph representation produced by code generation,
// together with an in-memory graph backend.
package graph

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type ScopeID int

type NodeID int

// OpKind is the operation of a math node.
type OpKind int

const (
	Add OpKind = iota
	Subtract
	Multiply
	Divide
)

func (o OpKind) String() string {
	switch o {
	case Add:
		return "ADD"
	case Subtract:
		return "SUBTRACT"
	case Multiply:
		return "MULTIPLY"
	case Divide:
		return "DIVIDE"
	default:
		return fmt.Sprintf("OpKind(%d)", int(o))
	}
}

func (o OpKind) MarshalYAML() (any, error) {
	return o.String(), nil
}

type NodeKind int

const (
	ValueNode NodeKind = iota
	OperatorNode
	// InputNode reads one input socket of the graph.
	InputNode
)

func (k NodeKind) String() string {
	switch k {
	case ValueNode:
		return "VALUE"
	case OperatorNode:
		return "OPERATOR"
	case InputNode:
		return "INPUT"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

func (k NodeKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Operand feeds one input socket of an operator node: either a link from
// another node or an embedded default value.
type Operand struct {
	Node   NodeID
	Linked bool
	Value  float64
}

// Link is an operand produced by node.
func Link(node NodeID) Operand {
	return Operand{Node: node, Linked: true}
}

// Const is an operand embedded as a socket default.
func Const(value float64) Operand {
	return Operand{Value: value}
}

func (o Operand) String() string {
	if o.Linked {
		return fmt.Sprintf("#%d", o.Node)
	}
	return fmt.Sprintf("%g", o.Value)
}

// Socket is an input socket of an operator node.
type Socket struct {
	Link    *NodeID  `yaml:"link,omitempty"`
	Default *float64 `yaml:"default,omitempty"`
}

type Node struct {
	ID     NodeID   `yaml:"id"`
	Kind   NodeKind `yaml:"kind"`
	Name   string   `yaml:"name,omitempty"`
	Label  string   `yaml:"label,omitempty"`
	Value  *float64 `yaml:"value,omitempty"`
	Op     *OpKind  `yaml:"op,omitempty"`
	Inputs []Socket `yaml:"inputs,omitempty"`
	Socket string   `yaml:"socket,omitempty"`
}

// Graph is the node graph of one function, or of the top-level statements.
type Graph struct {
	Name     string   `yaml:"name"`
	Inputs   []string `yaml:"inputs,omitempty"`
	Outputs  []string `yaml:"outputs,omitempty"`
	Nodes    []*Node  `yaml:"nodes"`
	bindings map[string]NodeID
}

func (g *Graph) node(id NodeID) (*Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) *Node {
	n, _ := g.node(id)
	return n
}

// Bound returns the node bound to name.
func (g *Graph) Bound(name string) (*Node, bool) {
	id, ok := g.bindings[name]
	if !ok {
		return nil, false
	}
	return g.node(id)
}

var (
	ErrUnknownScope = errors.New("unknown scope")
	ErrUnknownNode  = errors.New("unknown node")
)

// Memory keeps graphs in memory. It is the backend used by the command line
// tool and by tests.
type Memory struct {
	graphs []*Graph
	scopes map[string]ScopeID
	nextID NodeID
}

func NewMemory() *Memory {
	return &Memory{scopes: make(map[string]ScopeID)}
}

// Graphs returns the graphs in creation order.
func (m *Memory) Graphs() []*Graph {
	return m.graphs
}

// Graph returns the graph named name.
func (m *Memory) Graph(name string) (*Graph, bool) {
	id, ok := m.scopes[name]
	if !ok {
		return nil, false
	}
	return m.graphs[id], true
}

// CreateScope returns the graph named name, creating it if needed.
// An existing graph keeps its contents; call Clear before regenerating it.
func (m *Memory) CreateScope(name string) (ScopeID, error) {
	if id, ok := m.scopes[name]; ok {
		return id, nil
	}
	id := ScopeID(len(m.graphs))
	m.graphs = append(m.graphs, &Graph{Name: name, Nodes: []*Node{}, bindings: make(map[string]NodeID)})
	m.scopes[name] = id
	return id, nil
}

func (m *Memory) graph(s ScopeID) (*Graph, error) {
	if s < 0 || int(s) >= len(m.graphs) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScope, s)
	}
	return m.graphs[s], nil
}

func (m *Memory) add(g *Graph, n *Node) NodeID {
	n.ID = m.nextID
	m.nextID++
	g.Nodes = append(g.Nodes, n)
	return n.ID
}

// DeclareInput adds an input socket to the graph and returns the node that
// reads it.
func (m *Memory) DeclareInput(s ScopeID, name string) (NodeID, error) {
	g, err := m.graph(s)
	if err != nil {
		return 0, err
	}
	g.Inputs = append(g.Inputs, name)
	return m.add(g, &Node{Kind: InputNode, Socket: name}), nil
}

func (m *Memory) DeclareOutput(s ScopeID, name string) error {
	g, err := m.graph(s)
	if err != nil {
		return err
	}
	g.Outputs = append(g.Outputs, name)
	return nil
}

func (m *Memory) CreateValueNode(s ScopeID, value float64) (NodeID, error) {
	g, err := m.graph(s)
	if err != nil {
		return 0, err
	}
	return m.add(g, &Node{Kind: ValueNode, Value: &value}), nil
}

func (m *Memory) CreateOperatorNode(s ScopeID, op OpKind, left, right Operand) (NodeID, error) {
	g, err := m.graph(s)
	if err != nil {
		return 0, err
	}
	inputs := make([]Socket, 2)
	for i, operand := range []Operand{left, right} {
		if !operand.Linked {
			value := operand.Value
			inputs[i].Default = &value
			continue
		}
		if _, ok := g.node(operand.Node); !ok {
			return 0, fmt.Errorf("%w: #%d in graph %s", ErrUnknownNode, operand.Node, g.Name)
		}
		from := operand.Node
		inputs[i].Link = &from
	}
	return m.add(g, &Node{Kind: OperatorNode, Op: &op, Inputs: inputs}), nil
}

// Bind names a node. The node takes the name and label of the binding.
func (m *Memory) Bind(s ScopeID, name string, node NodeID) error {
	g, err := m.graph(s)
	if err != nil {
		return err
	}
	n, ok := g.node(node)
	if !ok {
		return fmt.Errorf("%w: #%d in graph %s", ErrUnknownNode, node, g.Name)
	}
	n.Name = name
	n.Label = name
	g.bindings[name] = node
	return nil
}

func (m *Memory) Lookup(s ScopeID, name string) (NodeID, bool) {
	g, err := m.graph(s)
	if err != nil {
		return 0, false
	}
	id, ok := g.bindings[name]
	return id, ok
}

// Clear removes every node, socket and binding of the graph.
func (m *Memory) Clear(s ScopeID) error {
	g, err := m.graph(s)
	if err != nil {
		return err
	}
	g.Inputs = nil
	g.Outputs = nil
	g.Nodes = []*Node{}
	g.bindings = make(map[string]NodeID)
	return nil
}

// WriteYAML encodes graphs as a YAML document.
func WriteYAML(w io.Writer, graphs []*Graph) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(graphs); err != nil {
		return fmt.Errorf("encode graphs: %w", err)
	}
	return enc.Close()
}
