// Package report turns scanner results into a model.Report and writes it
// in one of the supported formats.
package report

import (
	"strings"

	"github.com/google/uuid"

	"github.com/phobologic/mcheck/internal/check"
	"github.com/phobologic/mcheck/internal/model"
	"github.com/phobologic/mcheck/internal/scanner"
	"github.com/phobologic/mcheck/internal/sourcecode"
)

// Collector is a scanner.Sink that accumulates file results.
// It is not safe for concurrent use; scanner.Run calls it from one goroutine.
type Collector struct {
	severities map[string]model.Severity
	languages  map[string]string
	files      []model.FileReport
	summary    model.Summary
}

var _ scanner.Sink = (*Collector)(nil)

// NewCollector returns a collector for results produced by rules.
// languages maps file paths to their dialect name and may be nil.
func NewCollector(rules *check.RuleSet, languages map[string]string) *Collector {
	c := &Collector{
		severities: make(map[string]model.Severity, rules.Len()),
		languages:  languages,
	}
	for _, r := range rules.Rules() {
		c.severities[r.Key] = model.Severity(r.Priority.String())
	}
	return c
}

// File records one file result.
func (c *Collector) File(res *scanner.FileResult) {
	fr := model.FileReport{
		Path:       res.Path,
		Language:   c.languages[res.Path],
		Violations: []model.Violation{},
	}
	c.summary.Files++

	if res.Err != nil {
		fr.Error = res.Err.Error()
		c.summary.FailedFiles++
		c.files = append(c.files, fr)
		return
	}

	if res.Metrics != nil {
		fr.Metrics = res.Metrics.Values()
		for _, child := range res.Metrics.Children {
			child.Walk(func(n *sourcecode.Node) {
				fr.Scopes = append(fr.Scopes, scope(n))
			})
		}
	}
	for _, v := range res.Violations {
		fr.Violations = append(fr.Violations, model.Violation{
			Rule:     v.RuleKey,
			Severity: c.severities[v.RuleKey],
			Line:     v.Line,
			Message:  v.Text(),
		})
	}
	for _, ce := range res.CheckErrors {
		fr.CheckErrors = append(fr.CheckErrors, model.CheckError{
			Rule:    ce.RuleKey,
			Message: checkErrorMessage(ce),
		})
	}
	c.summary.Violations += len(fr.Violations)
	c.summary.CheckErrors += len(fr.CheckErrors)
	c.files = append(c.files, fr)
}

// Report builds the report. project holds the merged metrics returned by
// scanner.Run and may be nil.
func (c *Collector) Report(root string, project *sourcecode.Node) *model.Report {
	metrics := map[string]int{}
	if project != nil {
		metrics = project.Values()
	}
	return &model.Report{
		RunID:   uuid.NewString(),
		Root:    root,
		Summary: c.summary,
		Metrics: metrics,
		Files:   c.files,
	}
}

// HasFindings reports whether any file of r failed or carries violations
// or check errors. It looks at the files left in r, so a filtered report
// only counts what survived the filters.
func HasFindings(r *model.Report) bool {
	for _, f := range r.Files {
		if f.Error != "" || len(f.Violations) > 0 || len(f.CheckErrors) > 0 {
			return true
		}
	}
	return false
}

func scope(n *sourcecode.Node) model.Scope {
	name := n.Key
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	return model.Scope{
		Kind:      n.Kind.String(),
		Name:      name,
		StartLine: n.StartLine,
		EndLine:   n.EndLine,
		Metrics:   n.Values(),
	}
}

func checkErrorMessage(ce *check.CheckError) string {
	if ce.Err == nil {
		return "failed"
	}
	return ce.Err.Error()
}
