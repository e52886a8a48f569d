// Package model defines the analysis report that mcheck serializes.
package model

// Severity mirrors a rule priority in reports.
type Severity string

const (
	Info     Severity = "info"
	Minor    Severity = "minor"
	Major    Severity = "major"
	Critical Severity = "critical"
	Blocker  Severity = "blocker"
)

// Violation is one finding in a file. Line is 0 for file-level findings.
type Violation struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line"`
	Message  string   `json:"message"`
}

// Scope is a class or function inside a file with its own metrics.
type Scope struct {
	Kind      string         `json:"kind"`
	Name      string         `json:"name"`
	StartLine int            `json:"start_line"`
	EndLine   int            `json:"end_line"`
	Metrics   map[string]int `json:"metrics"`
}

// CheckError is a rule that failed on a file.
type CheckError struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// FileReport holds the results for a single source file. Error is set when
// the file could not be analyzed; Metrics and Scopes are then empty.
type FileReport struct {
	Path        string         `json:"path"`
	Language    string         `json:"language"`
	Error       string         `json:"error,omitempty"`
	Metrics     map[string]int `json:"metrics,omitempty"`
	Scopes      []Scope        `json:"scopes,omitempty"`
	Violations  []Violation    `json:"violations"`
	CheckErrors []CheckError   `json:"check_errors,omitempty"`
}

// Summary totals a run.
type Summary struct {
	Files       int `json:"files"`
	FailedFiles int `json:"failed_files"`
	Violations  int `json:"violations"`
	CheckErrors int `json:"check_errors"`
}

// Report is the complete analysis of a run, ready for serialization.
type Report struct {
	RunID   string         `json:"run_id"`
	Root    string         `json:"root"`
	Summary Summary        `json:"summary"`
	Metrics map[string]int `json:"metrics"`
	Files   []FileReport   `json:"files"`
}

// ViolationCount returns the number of violations in the file.
func (f *FileReport) ViolationCount() int { return len(f.Violations) }

// Complexity returns the file's complexity metric, 0 if it has none.
func (f *FileReport) Complexity() int { return f.Metrics["complexity"] }
