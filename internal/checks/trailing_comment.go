package checks

import (
	"regexp"

	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/token"
)

const legalTrailingCommentPattern = `^#\s*[^\s]+$`

func init() {
	check.Register(&check.Definition{
		Rule: check.Rule{
			Key:         "S139",
			Name:        "Comments should not be located at the end of lines of code",
			Description: "Trailing comments are allowed only when they match the legal pattern, by default a single word.",
			Priority:    check.Info,
			Default:     true,
			Params: []check.Param{{
				Key:         "legalTrailingCommentPattern",
				Type:        check.Regexp,
				Default:     legalTrailingCommentPattern,
				Description: "Pattern a trailing comment must match to be accepted",
			}},
		},
		New: func(v check.Values) check.Check {
			return &trailingComment{legal: fullMatch(v.Regexp("legalTrailingCommentPattern")), previousLine: -1}
		},
	})
}

type trailingComment struct {
	legal        *regexp.Regexp
	previousLine int
}

func (c *trailingComment) VisitToken(ctx *check.Context, tok token.Token) {
	for _, tr := range tok.Comments() {
		if tr.Line != c.previousLine {
			continue
		}
		if c.legal == nil || !c.legal.MatchString(tr.Text) {
			ctx.ReportLine(c.previousLine, "Move this trailing comment on the previous empty line.")
		}
	}
	c.previousLine = tok.Line
}

// fullMatch anchors re at both ends of the input.
func fullMatch(re *regexp.Regexp) *regexp.Regexp {
	if re == nil {
		return nil
	}
	return regexp.MustCompile(`^(?:` + re.String() + `)$`)
}
