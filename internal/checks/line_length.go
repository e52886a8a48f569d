package checks

import (
	"github.com/mattn/go-runewidth"

	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/lexer"
)

func init() {
	check.Register(&check.Definition{
		Rule: check.Rule{
			Key:         "LineLength",
			Name:        "Lines should not be too long",
			Description: "Lines wider than the limit, with tabs expanded, are flagged.",
			Priority:    check.Minor,
			Params: []check.Param{{
				Key:         "maximumLineLength",
				Type:        check.Int,
				Default:     "80",
				Description: "Maximum authorized line width",
			}},
		},
		New: func(v check.Values) check.Check { return lineLength{max: v.Int("maximumLineLength")} },
	})
}

type lineLength struct {
	max int
}

func (c lineLength) VisitFile(ctx *check.Context) {
	for i, line := range ctx.File().Lines {
		if w := renderedWidth(line); w > c.max {
			ctx.ReportLine(i+1, "The line contains {0} characters which is greater than {1} authorized.", w, c.max)
		}
	}
}

// renderedWidth measures line as a terminal would show it: tabs advance to
// the next tab stop and wide runes take two cells.
func renderedWidth(line string) int {
	w := 0
	for _, r := range line {
		if r == '\t' {
			w += lexer.TabSize - w%lexer.TabSize
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}
