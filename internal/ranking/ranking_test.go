package ranking

import (
	"testing"

	"github.com/phobologic/mcheck/internal/model"
)

func violations(rules ...string) []model.Violation {
	var out []model.Violation
	for i, r := range rules {
		out = append(out, model.Violation{Rule: r, Line: i + 1})
	}
	return out
}

func makeReport() *model.Report {
	return &model.Report{
		RunID: "run",
		Root:  "test",
		Files: []model.FileReport{
			{Path: "a.m", Metrics: map[string]int{"complexity": 2}, Violations: violations("S108")},
			{Path: "b.m", Metrics: map[string]int{"complexity": 9}, Violations: violations("S108")},
			{Path: "c.m", Metrics: map[string]int{"complexity": 1}, Violations: violations("S108", "S1066", "S139")},
			{Path: "d.m", Error: "syntax error"},
		},
		Summary: model.Summary{Files: 4, FailedFiles: 1, Violations: 5},
	}
}

func paths(files []model.FileReport) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestHotspots(t *testing.T) {
	t.Parallel()

	rep := makeReport()
	got := paths(Hotspots(rep.Files))
	want := []string{"d.m", "c.m", "b.m", "a.m"}
	if !equal(got, want) {
		t.Errorf("Hotspots = %v, want %v", got, want)
	}
	if rep.Files[0].Path != "a.m" {
		t.Error("Hotspots must not reorder its input")
	}
}

func TestSelectFilesAll(t *testing.T) {
	t.Parallel()

	rep := makeReport()
	if got := SelectFiles(rep, 0); got != rep {
		t.Error("maxFiles=0 should return original")
	}
	if got := SelectFiles(rep, 5); got != rep {
		t.Error("maxFiles > len should return original")
	}
	if got := SelectFiles(rep, 4); got != rep {
		t.Error("maxFiles == len should return original")
	}
}

func TestSelectFilesSubset(t *testing.T) {
	t.Parallel()

	rep := makeReport()
	got := SelectFiles(rep, 2)

	if want := []string{"c.m", "d.m"}; !equal(paths(got.Files), want) {
		t.Errorf("files = %v, want %v", paths(got.Files), want)
	}
	if got.Summary != rep.Summary {
		t.Errorf("summary changed: %+v", got.Summary)
	}
	if len(rep.Files) != 4 {
		t.Error("input report was modified")
	}
}

func TestFilterByFile(t *testing.T) {
	t.Parallel()

	got := FilterByFile(makeReport(), "B.M")
	if want := []string{"b.m"}; !equal(paths(got.Files), want) {
		t.Errorf("files = %v, want %v", paths(got.Files), want)
	}

	got = FilterByFile(makeReport(), "zzz")
	if len(got.Files) != 0 {
		t.Errorf("expected no files, got %v", paths(got.Files))
	}
}

func TestFilterByRule(t *testing.T) {
	t.Parallel()

	rep := makeReport()
	if got := FilterByRule(rep, nil); got != rep {
		t.Error("no keys should return original")
	}

	got := FilterByRule(rep, []string{"S1066", "S139"})
	if len(got.Files) != 4 {
		t.Fatalf("expected 4 files, got %d", len(got.Files))
	}
	if n := len(got.Files[0].Violations); n != 0 {
		t.Errorf("a.m: expected 0 violations, got %d", n)
	}
	c := got.Files[2].Violations
	if len(c) != 2 || c[0].Rule != "S1066" || c[1].Rule != "S139" {
		t.Errorf("c.m: unexpected violations %+v", c)
	}
	if len(rep.Files[2].Violations) != 3 {
		t.Error("input report was modified")
	}
}
