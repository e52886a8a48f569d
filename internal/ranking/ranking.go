// Package ranking implements hotspot selection over an analysis report.
package ranking

import (
	"slices"
	"strings"

	"github.com/phobologic/mcheck/internal/model"
)

// Hotspots orders files so that the ones most in need of attention come
// first: files that failed to analyze, then by violation count, then by
// complexity, then by path.
func Hotspots(files []model.FileReport) []model.FileReport {
	out := slices.Clone(files)
	slices.SortStableFunc(out, func(a, b model.FileReport) int {
		if fa, fb := a.Error != "", b.Error != ""; fa != fb {
			if fa {
				return -1
			}
			return 1
		}
		if d := b.ViolationCount() - a.ViolationCount(); d != 0 {
			return d
		}
		if d := b.Complexity() - a.Complexity(); d != 0 {
			return d
		}
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

// SelectFiles returns a new Report with only the top maxFiles hotspots,
// listed in their original order. If maxFiles is <= 0 or >= len(files),
// the report is returned unchanged. The summary and project metrics still
// describe the whole run.
func SelectFiles(r *model.Report, maxFiles int) *model.Report {
	if maxFiles <= 0 || maxFiles >= len(r.Files) {
		return r
	}

	selectedPaths := make(map[string]struct{}, maxFiles)
	for _, f := range Hotspots(r.Files)[:maxFiles] {
		selectedPaths[f.Path] = struct{}{}
	}

	files := make([]model.FileReport, 0, maxFiles)
	for i := range r.Files {
		if _, ok := selectedPaths[r.Files[i].Path]; ok {
			files = append(files, r.Files[i])
		}
	}

	out := *r
	out.Files = files
	return &out
}

// FilterByFile returns a new Report containing only files whose path
// contains substr (case-insensitive).
func FilterByFile(r *model.Report, substr string) *model.Report {
	lower := strings.ToLower(substr)

	var files []model.FileReport
	for i := range r.Files {
		if strings.Contains(strings.ToLower(r.Files[i].Path), lower) {
			files = append(files, r.Files[i])
		}
	}

	out := *r
	out.Files = files
	return &out
}

// FilterByRule returns a new Report whose files keep only the violations of
// the given rule keys. Files left without violations are kept so that the
// metrics stay visible.
func FilterByRule(r *model.Report, keys []string) *model.Report {
	if len(keys) == 0 {
		return r
	}
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}

	files := make([]model.FileReport, len(r.Files))
	for i := range r.Files {
		fi := r.Files[i]
		var kept []model.Violation
		for _, v := range fi.Violations {
			if _, ok := want[v.Rule]; ok {
				kept = append(kept, v)
			}
		}
		fi.Violations = kept
		files[i] = fi
	}

	out := *r
	out.Files = files
	return &out
}
