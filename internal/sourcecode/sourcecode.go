// Package sourcecode models the Project/File/Class/Function hierarchy that
// metrics are attributed to.
package sourcecode

import (
	"fmt"
	"slices"
)

// Kind is the level of a node in the hierarchy.
type Kind int

const (
	Project Kind = iota
	File
	Class
	Function
)

func (k Kind) String() string {
	switch k {
	case Project:
		return "project"
	case File:
		return "file"
	case Class:
		return "class"
	case Function:
		return "function"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Metric identifies a measure.
type Metric int

const (
	Files Metric = iota
	Lines
	LinesOfCode
	Statements
	Functions
	Classes
	Complexity
	CommentLines

	numMetrics
)

var metricNames = [numMetrics]string{
	Files:        "files",
	Lines:        "lines",
	LinesOfCode:  "ncloc",
	Statements:   "statements",
	Functions:    "functions",
	Classes:      "classes",
	Complexity:   "complexity",
	CommentLines: "comment_lines",
}

// Metrics lists every metric in display order.
func Metrics() []Metric {
	out := make([]Metric, numMetrics)
	for i := range out {
		out[i] = Metric(i)
	}
	return out
}

func (m Metric) String() string {
	if m >= 0 && m < numMetrics {
		return metricNames[m]
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// Aggregated reports whether a child's value is added to its parent when
// the child's scope closes. Line-based metrics are measured per file.
func (m Metric) Aggregated() bool {
	switch m {
	case Statements, Functions, Classes, Complexity:
		return true
	}
	return false
}

// Node is one entry of the hierarchy.
type Node struct {
	Kind      Kind
	Key       string
	StartLine int
	EndLine   int
	Children  []*Node

	metrics map[Metric]int
}

// New returns a node with no metrics.
func New(kind Kind, key string, line int) *Node {
	return &Node{Kind: kind, Key: key, StartLine: line, metrics: make(map[Metric]int)}
}

// Key formats the key of a class or function node.
func Key(name string, line int) string {
	return fmt.Sprintf("%s:%d", name, line)
}

// Add increments metric m by v.
func (n *Node) Add(m Metric, v int) { n.metrics[m] += v }

// Set overwrites metric m.
func (n *Node) Set(m Metric, v int) { n.metrics[m] = v }

// Get returns the value of metric m.
func (n *Node) Get(m Metric) int { return n.metrics[m] }

// Values returns a copy of all metrics keyed by name.
func (n *Node) Values() map[string]int {
	out := make(map[string]int, len(n.metrics))
	for m, v := range n.metrics {
		out[m.String()] = v
	}
	return out
}

// AddChild attaches c and folds its aggregated metrics into n.
func (n *Node) AddChild(c *Node) {
	n.Children = append(n.Children, c)
	for m, v := range c.metrics {
		if m.Aggregated() {
			n.metrics[m] += v
		}
	}
}

// Merge folds every metric of a file into a project node and counts the
// file. The file itself is kept as a child.
func (n *Node) Merge(file *Node) {
	n.Children = append(n.Children, file)
	for m, v := range file.metrics {
		n.metrics[m] += v
	}
	n.metrics[Files]++
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Functions returns every function node below n, ordered by start line.
func (n *Node) Functions() []*Node {
	var out []*Node
	n.Walk(func(c *Node) {
		if c.Kind == Function {
			out = append(out, c)
		}
	})
	slices.SortStableFunc(out, func(a, b *Node) int { return a.StartLine - b.StartLine })
	return out
}
