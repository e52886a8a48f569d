// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/phobologic/mcheck/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a Report into TOON format.
func Encode(r *model.Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("run_id: %s", encodeValue(r.RunID)))
	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(r.Root)))

	s := r.Summary
	parts = append(parts, formatTabular("summary", []string{"files", "failed_files", "violations", "check_errors"}, [][]string{{
		strconv.Itoa(s.Files),
		strconv.Itoa(s.FailedFiles),
		strconv.Itoa(s.Violations),
		strconv.Itoa(s.CheckErrors),
	}}))

	var metricRows [][]string
	for _, name := range slices.Sorted(maps.Keys(r.Metrics)) {
		metricRows = append(metricRows, []string{name, strconv.Itoa(r.Metrics[name])})
	}
	parts = append(parts, formatTabular("metrics", []string{"metric", "value"}, metricRows))

	var fileRows [][]string
	for i := range r.Files {
		fi := &r.Files[i]
		fileRows = append(fileRows, []string{
			fi.Path,
			fi.Language,
			strconv.Itoa(fi.Metrics["lines"]),
			strconv.Itoa(fi.Metrics["ncloc"]),
			strconv.Itoa(fi.Complexity()),
			strconv.Itoa(fi.ViolationCount()),
			fi.Error,
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "language", "lines", "ncloc", "complexity", "violations", "error"}, fileRows))

	var violationRows [][]string
	for i := range r.Files {
		fi := &r.Files[i]
		for j := range fi.Violations {
			v := &fi.Violations[j]
			violationRows = append(violationRows, []string{
				fi.Path,
				strconv.Itoa(v.Line),
				v.Rule,
				string(v.Severity),
				v.Message,
			})
		}
	}
	parts = append(parts, formatTabular("violations", []string{"file", "line", "rule", "severity", "message"}, violationRows))

	var scopeRows [][]string
	for i := range r.Files {
		fi := &r.Files[i]
		for j := range fi.Scopes {
			sc := &fi.Scopes[j]
			scopeRows = append(scopeRows, []string{
				fi.Path,
				sc.Kind,
				sc.Name,
				strconv.Itoa(sc.StartLine),
				strconv.Itoa(sc.EndLine),
				strconv.Itoa(sc.Metrics["complexity"]),
			})
		}
	}
	parts = append(parts, formatTabular("scopes", []string{"file", "kind", "name", "start_line", "end_line", "complexity"}, scopeRows))

	var errorRows [][]string
	for i := range r.Files {
		fi := &r.Files[i]
		for j := range fi.CheckErrors {
			ce := &fi.CheckErrors[j]
			errorRows = append(errorRows, []string{fi.Path, ce.Rule, ce.Message})
		}
	}
	if len(errorRows) > 0 {
		parts = append(parts, formatTabular("check_errors", []string{"file", "rule", "message"}, errorRows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
