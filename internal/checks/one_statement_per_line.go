package checks

import (
	"maps"
	"slices"

	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/check"
)

func init() {
	check.Register(&check.Definition{
		Rule: check.Rule{
			Key:         "OneStatementPerLine",
			Name:        "Statements should be on separate lines",
			Description: "Putting several statements on one line makes code harder to read.",
			Priority:    check.Major,
			Default:     true,
		},
		New: func(check.Values) check.Check { return &oneStatementPerLine{} },
	})
}

// oneStatementPerLine counts simple statements and suites by first line and
// reports once the whole file has been seen.
type oneStatementPerLine struct {
	perLine map[int]int
}

func (*oneStatementPerLine) Subscriptions() []ast.Type {
	return []ast.Type{ast.SimpleStmt, ast.Suite}
}

func (c *oneStatementPerLine) VisitFile(*check.Context) {
	c.perLine = make(map[int]int)
}

func (c *oneStatementPerLine) VisitNode(_ *check.Context, n ast.Node) {
	c.perLine[n.Line()]++
}

func (c *oneStatementPerLine) LeaveFile(ctx *check.Context) {
	for _, line := range slices.Sorted(maps.Keys(c.perLine)) {
		if n := c.perLine[line]; n > 1 {
			ctx.ReportLine(line, "At most one statement is allowed per line, but {0} statements were found on this line.", n)
		}
	}
}
