package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/mcheck/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/main.py", "src/main.py"},
		{"rule key", "S1066", "S1066"},
		{"message", "Either remove or fill this block of code.", "Either remove or fill this block of code."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	r := &model.Report{
		RunID:   "r1",
		Root:    "proj",
		Summary: model.Summary{Files: 2, FailedFiles: 1, Violations: 2},
		Metrics: map[string]int{"lines": 5, "files": 2},
		Files: []model.FileReport{
			{
				Path:     "a.m",
				Language: "matlab",
				Metrics:  map[string]int{"lines": 5, "ncloc": 4, "complexity": 2},
				Scopes: []model.Scope{
					{Kind: "function", Name: "f", StartLine: 1, EndLine: 3, Metrics: map[string]int{"complexity": 2}},
				},
				Violations: []model.Violation{
					{Rule: "S107", Severity: model.Major, Line: 1, Message: `Function "f" has 8 parameters, which is greater than the 7 authorized.`},
					{Rule: "S108", Severity: model.Major, Line: 3, Message: "Either remove or fill this block of code."},
				},
			},
			{
				Path:     "b.m",
				Language: "matlab",
				Error:    "line 2: unexpected token",
			},
		},
	}

	want := []string{
		"run_id: r1",
		"root: proj",
		"summary[1]{files,failed_files,violations,check_errors}:",
		"  2,1,2,0",
		"metrics[2]{metric,value}:",
		"  files,2",
		"  lines,5",
		"files[2]{path,language,lines,ncloc,complexity,violations,error}:",
		`  a.m,matlab,5,4,2,2,""`,
		`  b.m,matlab,0,0,0,0,"line 2: unexpected token"`,
		"violations[2]{file,line,rule,severity,message}:",
		`  a.m,1,S107,major,"Function \"f\" has 8 parameters, which is greater than the 7 authorized."`,
		"  a.m,3,S108,major,Either remove or fill this block of code.",
		"scopes[1]{file,kind,name,start_line,end_line,complexity}:",
		"  a.m,function,f,1,3,2",
	}

	lines := strings.Split(Encode(r), "\n")
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEncodeCheckErrors(t *testing.T) {
	t.Parallel()

	r := &model.Report{
		Files: []model.FileReport{{
			Path:        "a.m",
			CheckErrors: []model.CheckError{{Rule: "S1066", Message: "boom"}},
		}},
	}
	got := Encode(r)
	if !strings.HasSuffix(got, "check_errors[1]{file,rule,message}:\n  a.m,S1066,boom") {
		t.Errorf("expected check_errors section, got:\n%s", got)
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode(&model.Report{RunID: "r", Root: "empty"})
	for _, section := range []string{
		"metrics[0]{metric,value}:",
		"files[0]{path,language,lines,ncloc,complexity,violations,error}:",
		"violations[0]{file,line,rule,severity,message}:",
	} {
		if !strings.Contains(got, section) {
			t.Errorf("expected %q, got:\n%s", section, got)
		}
	}
	if strings.Contains(got, "check_errors") {
		t.Errorf("unexpected check_errors section:\n%s", got)
	}
}
