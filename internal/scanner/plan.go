package scanner

import (
	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/check"
)

// plan maps node types and events to the indices of the visitors that
// receive them. Indices refer to the per-file visitor slice, metric
// visitors first and rule checks after them in rule set order.
type plan struct {
	byType       [][]int
	tokens       []int
	fileVisitors []int
	fileLeavers  []int
}

func newPlan(prototypes []check.Check) *plan {
	p := &plan{byType: make([][]int, ast.NumTypes)}
	for i, c := range prototypes {
		if v, ok := c.(check.NodeVisitor); ok {
			seen := make(map[ast.Type]bool)
			for _, t := range v.Subscriptions() {
				if int(t) >= len(p.byType) || seen[t] {
					continue
				}
				seen[t] = true
				p.byType[t] = append(p.byType[t], i)
			}
		}
		if _, ok := c.(check.TokenVisitor); ok {
			p.tokens = append(p.tokens, i)
		}
		if _, ok := c.(check.FileVisitor); ok {
			p.fileVisitors = append(p.fileVisitors, i)
		}
		if _, ok := c.(check.FileLeaver); ok {
			p.fileLeavers = append(p.fileLeavers, i)
		}
	}
	return p
}

// subscribed returns the visitor indices for type t.
func (p *plan) subscribed(t ast.Type) []int {
	if int(t) >= len(p.byType) {
		return nil
	}
	return p.byType[t]
}
