package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/phobologic/mcheck/internal/model"
	"github.com/phobologic/mcheck/internal/toon"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown report format")

// Format is an output format.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	TOON Format = "toon"
)

// Formats lists the supported formats.
var Formats = []Format{Text, JSON, TOON}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// Options controls rendering.
type Options struct {
	// Color enables ANSI colors in the text format.
	Color bool
}

// Write renders r to w in format f.
func Write(w io.Writer, r *model.Report, f Format, opts Options) error {
	switch f {
	case Text:
		return writeText(w, r, opts)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case TOON:
		_, err := fmt.Fprintln(w, toon.Encode(r))
		return err
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, f)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type palette struct {
	path, err, warn, dim *color.Color
	severity             map[model.Severity]*color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		path: color.New(color.Bold),
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow),
		dim:  color.New(color.Faint),
		severity: map[model.Severity]*color.Color{
			model.Info:     color.New(color.FgCyan),
			model.Minor:    color.New(color.FgBlue),
			model.Major:    color.New(color.FgYellow),
			model.Critical: color.New(color.FgRed),
			model.Blocker:  color.New(color.FgRed, color.Bold),
		},
	}
	all := []*color.Color{p.path, p.err, p.warn, p.dim}
	for _, c := range p.severity {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *palette) sev(s model.Severity) string {
	if c, ok := p.severity[s]; ok {
		return c.Sprint(string(s))
	}
	return string(s)
}

func writeText(w io.Writer, r *model.Report, opts Options) error {
	p := newPalette(opts.Color)
	var b strings.Builder

	for i := range r.Files {
		fi := &r.Files[i]
		if fi.Error == "" && len(fi.Violations) == 0 && len(fi.CheckErrors) == 0 {
			continue
		}
		b.WriteString(p.path.Sprint(fi.Path))
		b.WriteByte('\n')
		if fi.Error != "" {
			fmt.Fprintf(&b, "  %s %s\n", p.err.Sprint("error:"), fi.Error)
		}
		for _, v := range fi.Violations {
			fmt.Fprintf(&b, "  %d: [%s] %s (%s)\n", v.Line, v.Rule, v.Message, p.sev(v.Severity))
		}
		for _, ce := range fi.CheckErrors {
			fmt.Fprintf(&b, "  %s rule %s: %s\n", p.warn.Sprint("check failed:"), ce.Rule, ce.Message)
		}
	}

	s := r.Summary
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(p.dim.Sprintf("%d files analyzed, %d violations, %d failed, %d check errors",
		s.Files, s.Violations, s.FailedFiles, s.CheckErrors))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}
