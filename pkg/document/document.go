// Package document defines the format-neutral tree every theme decoder
// produces. Map keys keep their source order and nodes remember where they
// came from so schema problems can point at a line.
package document

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindMap
	KindList
	KindString
	KindNumber
	KindBool
	// KindExpr is an expression the decoder could not reduce to data,
	// such as a require() call or a reference to an imported module.
	KindExpr
)

// String returns the name used in schema messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindMap:
		return "mapping"
	case KindList:
		return "sequence"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindExpr:
		return "expression"
	default:
		return "unknown"
	}
}

// Pos is a 1-based source position. The zero value means unknown.
type Pos struct {
	Line   int
	Column int
}

// IsZero reports whether the position is unknown.
func (p Pos) IsZero() bool { return p.Line == 0 }

func (p Pos) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is one value in a decoded document.
type Node struct {
	Kind Kind
	Pos  Pos

	// Scalar holds the text of String, Number and Bool nodes, and the raw
	// source of Expr nodes.
	Scalar string

	// Ref is the module id of a require()/import expression.
	Ref string

	// Keys preserves insertion order for Map nodes; Fields holds the values.
	Keys   []string
	Fields map[string]*Node

	Items []*Node
}

// NewMap returns an empty Map node.
func NewMap(pos Pos) *Node {
	return &Node{Kind: KindMap, Pos: pos, Fields: make(map[string]*Node)}
}

// NewList returns a List node holding items.
func NewList(pos Pos, items ...*Node) *Node {
	return &Node{Kind: KindList, Pos: pos, Items: items}
}

// NewScalar returns a String, Number or Bool node.
func NewScalar(kind Kind, text string, pos Pos) *Node {
	return &Node{Kind: kind, Scalar: text, Pos: pos}
}

// NewNull returns a Null node.
func NewNull(pos Pos) *Node {
	return &Node{Kind: KindNull, Pos: pos}
}

// NewExpr returns an opaque expression node.
func NewExpr(source, ref string, pos Pos) *Node {
	return &Node{Kind: KindExpr, Scalar: source, Ref: ref, Pos: pos}
}

// Set adds or replaces a key on a Map node. Replacing keeps the original
// position of the key in Keys.
func (n *Node) Set(key string, value *Node) {
	if n.Fields == nil {
		n.Fields = make(map[string]*Node)
	}
	if _, exists := n.Fields[key]; !exists {
		n.Keys = append(n.Keys, key)
	}
	n.Fields[key] = value
}

// Get returns the value stored under key. It is nil-safe and returns false
// for non-map nodes.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMap {
		return nil, false
	}
	v, ok := n.Fields[key]
	return v, ok
}

// Lookup follows a dotted path through nested maps.
func (n *Node) Lookup(path string) (*Node, bool) {
	cur := n
	for _, part := range strings.Split(path, ".") {
		next, ok := cur.Get(part)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// IsScalar reports whether the node is a String, Number or Bool.
func (n *Node) IsScalar() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindString, KindNumber, KindBool:
		return true
	}
	return false
}

// Merge copies every field of src into dst, recursing into maps that exist
// on both sides. Lists and scalars from src replace those in dst. Both
// nodes must be maps.
func Merge(dst, src *Node) {
	if dst == nil || src == nil || dst.Kind != KindMap || src.Kind != KindMap {
		return
	}
	for _, key := range src.Keys {
		sv := src.Fields[key]
		if dv, ok := dst.Fields[key]; ok && dv.Kind == KindMap && sv.Kind == KindMap {
			Merge(dv, sv)
			continue
		}
		dst.Set(key, sv)
	}
}
