package tinycl

import (
	"bytes"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ToYAML returns the document node of `n`.  Every node is a mapping
// whose first key is its `kind`.
func ToYAML(n Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{yamlNode(n)}}
}

// MarshalYAML renders the tree rooted at `n` as a YAML document
func MarshalYAML(n Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ToYAML(n)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type yamlMapping struct{ node *yaml.Node }

func newYAMLMapping(kind string) *yamlMapping {
	m := &yamlMapping{node: &yaml.Node{Kind: yaml.MappingNode}}
	return m.str("kind", kind)
}

func (m *yamlMapping) add(key string, value *yaml.Node) *yamlMapping {
	m.node.Content = append(m.node.Content, scalar("!!str", key), value)
	return m
}

func (m *yamlMapping) str(key, value string) *yamlMapping {
	return m.add(key, scalar("!!str", value))
}

func (m *yamlMapping) child(key string, n Node) *yamlMapping {
	return m.add(key, yamlNode(n))
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func sequence[T Node](nodes []T) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, n := range nodes {
		seq.Content = append(seq.Content, yamlNode(n))
	}
	return seq
}

func yamlNode(n Node) *yaml.Node {
	switch n := n.(type) {
	case *Program:
		return newYAMLMapping("Program").add("statements", sequence(n.Statements)).node
	case *Block:
		return newYAMLMapping("Block").add("statements", sequence(n.Statements)).node
	case *VariableDecl:
		return newYAMLMapping("VariableDecl").str("name", n.Name).child("value", n.Value).node
	case *ConstantDecl:
		return newYAMLMapping("ConstantDecl").str("name", n.Name).child("value", n.Value).node
	case *Assignment:
		return newYAMLMapping("Assignment").str("name", n.Name).child("value", n.Value).node
	case *If:
		m := newYAMLMapping("If").child("cond", n.Cond).child("then", n.Then)
		if n.Else != nil {
			m.child("else", n.Else)
		}
		return m.node
	case *While:
		return newYAMLMapping("While").child("cond", n.Cond).child("body", n.Body).node
	case *Print:
		return newYAMLMapping("Print").child("value", n.Value).node
	case *Return:
		m := newYAMLMapping("Return")
		if n.Value != nil {
			m.child("value", n.Value)
		}
		return m.node
	case *Comment:
		return newYAMLMapping("Comment").str("text", n.Text).node
	case *FunctionDecl:
		params := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, p := range n.Params {
			params.Content = append(params.Content, scalar("!!str", p))
		}
		return newYAMLMapping("FunctionDecl").str("name", n.Name).add("params", params).child("body", n.Body).node
	case *FunctionCallStmt:
		return newYAMLMapping("FunctionCallStmt").str("name", n.Name).add("args", sequence(n.Args)).node
	case *FunctionCallExpr:
		return newYAMLMapping("FunctionCall").str("name", n.Name).add("args", sequence(n.Args)).node
	case *BinaryOp:
		return newYAMLMapping("BinaryOp").str("op", n.Op).child("left", n.Left).child("right", n.Right).node
	case *UnaryOp:
		return newYAMLMapping("UnaryOp").str("op", n.Op).child("operand", n.Operand).node
	case *ArrayLiteral:
		return newYAMLMapping("ArrayLiteral").add("elements", sequence(n.Elements)).node
	case *ArrayAccess:
		return newYAMLMapping("ArrayAccess").child("array", n.Array).child("index", n.Index).node
	case *Number:
		return newYAMLMapping("Number").add("value", scalar("!!int", strconv.FormatInt(n.Value, 10))).node
	case *String:
		return newYAMLMapping("String").str("value", n.Value).node
	case *Character:
		return newYAMLMapping("Character").str("value", string(n.Value)).node
	case *Boolean:
		return newYAMLMapping("Boolean").add("value", scalar("!!bool", strconv.FormatBool(n.Value))).node
	case *Identifier:
		return newYAMLMapping("Identifier").str("name", n.Name).node
	}
	return scalar("!!null", "null")
}
