// Package ast holds syntax trees as an index-based arena over a file's
// token slice.
package ast

import (
	"fmt"

	"github.com/phobologic/mcheck/internal/token"
)

type nodeData struct {
	typ      Type
	parent   int32
	children []int32
	// Token range [first, last]. Nodes that matched no input have last < first.
	first int32
	last  int32
}

// Tree is an immutable syntax tree. Nodes are stored in pre-order, so a
// parent always precedes its children.
type Tree struct {
	nodes  []nodeData
	tokens []token.Token
}

// NewTree returns an empty tree over tokens.
func NewTree(tokens []token.Token) *Tree {
	return &Tree{tokens: tokens}
}

// Append adds a node spanning tokens [first, last] under parent and returns
// its index. The first node appended, with parent -1, is the root.
func (t *Tree) Append(typ Type, parent, first, last int) int {
	id := int32(len(t.nodes))
	t.nodes = append(t.nodes, nodeData{typ: typ, parent: int32(parent), first: int32(first), last: int32(last)})
	if parent >= 0 {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	return int(id)
}

// Root returns the root node, or a nil Node for an empty tree.
func (t *Tree) Root() Node {
	if len(t.nodes) == 0 {
		return Node{}
	}
	return Node{tree: t}
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node at index i.
func (t *Tree) Node(i int) Node { return Node{tree: t, id: int32(i)} }

// Tokens returns the token slice the tree was built over.
func (t *Tree) Tokens() []token.Token { return t.tokens }

// Node is a lightweight handle into a Tree. The zero value is the nil node;
// navigation from it yields nil nodes.
type Node struct {
	tree *Tree
	id   int32
}

func (n Node) data() *nodeData { return &n.tree.nodes[n.id] }

// IsNil reports whether n refers to no node.
func (n Node) IsNil() bool { return n.tree == nil }

// ID returns the arena index of n.
func (n Node) ID() int { return int(n.id) }

// Type returns the node type, or 0 for the nil node.
func (n Node) Type() Type {
	if n.IsNil() {
		return 0
	}
	return n.data().typ
}

// Is reports whether n has one of the given types.
func (n Node) Is(types ...Type) bool {
	if n.IsNil() {
		return false
	}
	typ := n.data().typ
	for _, t := range types {
		if typ == t {
			return true
		}
	}
	return false
}

// Parent returns the parent of n, or nil for the root.
func (n Node) Parent() Node {
	if n.IsNil() || n.data().parent < 0 {
		return Node{}
	}
	return Node{tree: n.tree, id: n.data().parent}
}

// NumChildren returns the number of direct children.
func (n Node) NumChildren() int {
	if n.IsNil() {
		return 0
	}
	return len(n.data().children)
}

// Child returns the i-th direct child.
func (n Node) Child(i int) Node {
	return Node{tree: n.tree, id: n.data().children[i]}
}

// Children returns the direct children of the given types, or all of them
// when no type is given.
func (n Node) Children(types ...Type) []Node {
	if n.IsNil() {
		return nil
	}
	var out []Node
	for _, id := range n.data().children {
		c := Node{tree: n.tree, id: id}
		if len(types) == 0 || c.Is(types...) {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first direct child of one of the given types, or
// the first child at all when no type is given.
func (n Node) FirstChild(types ...Type) Node {
	if n.IsNil() {
		return Node{}
	}
	for _, id := range n.data().children {
		c := Node{tree: n.tree, id: id}
		if len(types) == 0 || c.Is(types...) {
			return c
		}
	}
	return Node{}
}

// LastChild is FirstChild searching from the end.
func (n Node) LastChild(types ...Type) Node {
	if n.IsNil() {
		return Node{}
	}
	ids := n.data().children
	for i := len(ids) - 1; i >= 0; i-- {
		c := Node{tree: n.tree, id: ids[i]}
		if len(types) == 0 || c.Is(types...) {
			return c
		}
	}
	return Node{}
}

// HasDirectChildren reports whether n has a direct child of one of types.
func (n Node) HasDirectChildren(types ...Type) bool {
	return !n.FirstChild(types...).IsNil()
}

func (n Node) siblingIndex() int {
	p := n.Parent()
	if p.IsNil() {
		return -1
	}
	for i, id := range p.data().children {
		if id == n.id {
			return i
		}
	}
	return -1
}

// NextSibling returns the node after n under the same parent.
func (n Node) NextSibling() Node {
	i := n.siblingIndex()
	if i < 0 || i+1 >= n.Parent().NumChildren() {
		return Node{}
	}
	return n.Parent().Child(i + 1)
}

// PreviousSibling returns the node before n under the same parent.
func (n Node) PreviousSibling() Node {
	i := n.siblingIndex()
	if i <= 0 {
		return Node{}
	}
	return n.Parent().Child(i - 1)
}

// Descendants returns, in pre-order, every node below n of the given types.
func (n Node) Descendants(types ...Type) []Node {
	if n.IsNil() {
		return nil
	}
	var out []Node
	for _, c := range n.Children() {
		if c.Is(types...) {
			out = append(out, c)
		}
		out = append(out, c.Descendants(types...)...)
	}
	return out
}

// Token returns the first token of n. A node that matched no input returns
// the token that follows its position.
func (n Node) Token() token.Token {
	if n.IsNil() {
		return token.Token{}
	}
	first := n.data().first
	if int(first) >= len(n.tree.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return n.tree.tokens[first]
}

// LastToken returns the last token of n.
func (n Node) LastToken() token.Token {
	if n.IsNil() || n.data().last < n.data().first {
		return n.Token()
	}
	return n.tree.tokens[n.data().last]
}

// Tokens returns the tokens covered by n.
func (n Node) Tokens() []token.Token {
	if n.IsNil() || n.data().last < n.data().first {
		return nil
	}
	d := n.data()
	return n.tree.tokens[d.first : d.last+1]
}

// Line returns the line of the first token of n.
func (n Node) Line() int { return n.Token().Line }

// TokenText returns the text of the first token of n.
func (n Node) TokenText() string { return n.Token().Text }

func (n Node) String() string {
	if n.IsNil() {
		return "<nil>"
	}
	return fmt.Sprintf("%s@%d", n.Type(), n.Line())
}

// Shape is a pointer-free view of a subtree, convenient for comparing
// trees structurally.
type Shape struct {
	Type     string
	Text     string
	Children []Shape
}

// Shape returns the structural view of the subtree rooted at n.
func (n Node) Shape() Shape {
	if n.IsNil() {
		return Shape{}
	}
	s := Shape{Type: n.Type().String()}
	if n.Type().IsToken() {
		s.Text = n.TokenText()
		return s
	}
	for _, c := range n.Children() {
		s.Children = append(s.Children, c.Shape())
	}
	return s
}
