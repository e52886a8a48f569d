package checks

import (
	"github.com/phobologic/mcheck/internal/ast"
	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/parse"
)

func init() {
	check.Register(&check.Definition{
		Rule: check.Rule{
			Key:         "S107",
			Name:        "Functions, methods and lambdas should not have too many parameters",
			Description: "A long parameter list is a sign that a function does too much.",
			Priority:    check.Major,
			Default:     true,
			Params: []check.Param{{
				Key:         "max",
				Type:        check.Int,
				Default:     "7",
				Description: "Maximum authorized number of parameters",
			}},
		},
		New: func(v check.Values) check.Check { return tooManyParameters{max: v.Int("max")} },
	})
}

type tooManyParameters struct {
	max int
}

func (tooManyParameters) Subscriptions() []ast.Type {
	return []ast.Type{ast.Funcdef, ast.Lambdef, ast.LambdefNocond}
}

func (c tooManyParameters) VisitNode(ctx *check.Context, n ast.Node) {
	count := len(n.FirstChild(ast.Varargslist).Children(ast.Fpdef, ast.Name))
	if count <= c.max {
		return
	}
	if !n.Is(ast.Funcdef) {
		ctx.ReportNode(n, "Lambda has {0} parameters, which is greater than the {1} authorized.", count, c.max)
		return
	}
	kind := "Function"
	if parse.IsMethod(n) {
		kind = "Method"
	}
	name := n.FirstChild(ast.Funcname)
	ctx.ReportNode(name, kind+` "{0}" has {1} parameters, which is greater than the {2} authorized.`, name.TokenText(), count, c.max)
}
