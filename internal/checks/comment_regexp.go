package checks

import (
	"regexp"

	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/token"
)

func init() {
	check.Register(&check.Definition{
		Rule: check.Rule{
			Key:         "CommentRegularExpression",
			Name:        "Regular expression on comment",
			Description: "Flags every comment matching a configured regular expression. Inactive while the expression is empty.",
			Priority:    check.Major,
			Params: []check.Param{
				{Key: "regularExpression", Type: check.Regexp, Description: "Regular expression a whole comment is matched against"},
				{Key: "message", Type: check.String, Default: "The regular expression matches this comment", Description: "Violation message"},
			},
		},
		New: func(v check.Values) check.Check {
			return commentRegexp{re: fullMatch(v.Regexp("regularExpression")), message: v.String("message")}
		},
	})
}

type commentRegexp struct {
	re      *regexp.Regexp
	message string
}

func (c commentRegexp) VisitToken(ctx *check.Context, tok token.Token) {
	if c.re == nil {
		return
	}
	for _, tr := range tok.Comments() {
		if c.re.MatchString(tr.Text) {
			ctx.ReportLine(tr.Line, c.message)
		}
	}
}
