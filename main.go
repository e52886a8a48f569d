// mcheck analyzes source files of an indentation-sensitive, Python-like
// dialect and reports rule violations and code metrics.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cobra"

	"github.com/phobologic/mcheck/internal/discover"
	"github.com/phobologic/mcheck/internal/lang"
	"github.com/phobologic/mcheck/internal/logging"
	"github.com/phobologic/mcheck/internal/profile"
	"github.com/phobologic/mcheck/internal/ranking"
	"github.com/phobologic/mcheck/internal/report"
	"github.com/phobologic/mcheck/internal/scanner"
)

var version = "dev"

const (
	defaultMaxFileSize = 1_000_000 // 1 MB
	defaultProfileName = ".mcheck.yaml"
)

// errFindings is returned in strict mode when the analysis found problems.
var errFindings = errors.New("violations found")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

type analyzeOptions struct {
	profilePath string
	charset     string
	jobs        int
	format      string
	maxFiles    int
	maxFileSize int
	cachePath   string
	langs       string
	skipTests   bool
	fileFilter  string
	ruleFilter  []string
	noColor     bool
	strict      bool
	logLevel    string
	logFormat   string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "mcheck [path]",
		Short: "Static analysis for an indentation-sensitive dialect",
		Long: `mcheck lexes and parses every source file under path (a directory or a
single file, default ".") and reports rule violations and code metrics.

Rules come from --profile, from ` + defaultProfileName + ` in the analyzed directory,
or from the built-in default profile.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return analyze(cmd.Context(), path, opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("mcheck {{.Version}}\n")

	f := cmd.Flags()
	f.StringVarP(&opts.profilePath, "profile", "p", "", "rule profile (YAML or TOML)")
	f.StringVar(&opts.charset, "charset", "", "source charset, overriding the profile")
	f.IntVarP(&opts.jobs, "jobs", "j", 0, "number of parallel workers (default GOMAXPROCS)")
	f.StringVarP(&opts.format, "format", "f", string(report.Text), "output format: text, json or toon")
	f.IntVarP(&opts.maxFiles, "max-files", "n", 0, "report only the top N hotspot files")
	f.IntVar(&opts.maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	f.StringVar(&opts.cachePath, "cache", "", "cache file path")
	f.StringVarP(&opts.langs, "langs", "l", "", "comma-separated dialects to include")
	f.BoolVar(&opts.skipTests, "skip-tests", false, "skip files that look like tests")
	f.StringVar(&opts.fileFilter, "file", "", "report only files whose path contains this substring")
	f.StringSliceVar(&opts.ruleFilter, "rule", nil, "report only violations of these rule keys")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	f.BoolVar(&opts.strict, "strict", false, "exit non-zero when violations or failures are found")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	f.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(
		newInitCmd(stdout, stderr),
		newRulesCmd(stdout),
		newTokensCmd(stdout),
		newCrosscheckCmd(stdout, stderr),
	)
	return cmd
}

func newLogger(level, format string, stderr io.Writer) (*logging.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logging.New(logging.Config{
		Level:   lvl,
		JSON:    format == "json",
		Output:  stderr,
		Service: "mcheck",
	}), nil
}

func analyze(ctx context.Context, path string, opts analyzeOptions, stdout, stderr io.Writer) error {
	logger, err := newLogger(opts.logLevel, opts.logFormat, stderr)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	langFilter, err := parseLangs(opts.langs)
	if err != nil {
		return err
	}

	root, files, err := discover.Resolve(path, discover.Options{Languages: langFilter, SkipTests: opts.skipTests})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no source files found")
	}
	logger.Debug("discovered files", "root", root, "count", len(files))

	prof, profilePath, err := loadProfile(root, opts.profilePath)
	if err != nil {
		return err
	}
	if opts.charset != "" {
		prof.Charset = opts.charset
	}
	rules, err := prof.RuleSet()
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	logger.Debug("rules configured", "profile", profilePath, "rules", rules.Len())

	filtered := opts.fileFilter != "" || len(opts.ruleFilter) > 0
	useCache := opts.cachePath != "" && !filtered

	var key string
	if useCache {
		key = cacheKey(root, files, profilePath, opts)
		if cacheIsFresh(opts.cachePath, root, files, profilePath) {
			if body, findings, ok := readCache(opts.cachePath, key); ok {
				logger.Debug("serving cached report", "cache", opts.cachePath)
				_, _ = stdout.Write(body)
				if opts.strict && findings {
					return errFindings
				}
				return nil
			}
		}
	}

	files = filterBySize(root, files, opts.maxFileSize, logger)
	if len(files) == 0 {
		return fmt.Errorf("no source files found (all exceeded size limit)")
	}

	s, err := scanner.New(rules, prof.ScannerConfig(), scanner.WithLogger(logger))
	if err != nil {
		return err
	}

	paths := make([]string, len(files))
	languages := make(map[string]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
		languages[f.Path] = f.Language
	}

	collector := report.NewCollector(rules, languages)
	project, err := s.Run(ctx, paths, scanner.DirReader{Root: root}, collector, opts.jobs)
	if err != nil {
		return err
	}

	rep := collector.Report(filepath.Base(root), project)
	if opts.fileFilter != "" {
		rep = ranking.FilterByFile(rep, opts.fileFilter)
	}
	rep = ranking.FilterByRule(rep, opts.ruleFilter)
	findings := report.HasFindings(rep)
	if opts.maxFiles > 0 {
		rep = ranking.SelectFiles(rep, opts.maxFiles)
	}

	var buf bytes.Buffer
	color := !opts.noColor && !useCache && report.IsTerminal(stdout)
	if err := report.Write(&buf, rep, format, report.Options{Color: color}); err != nil {
		return err
	}

	if useCache {
		if err := writeCache(opts.cachePath, key, findings, buf.Bytes()); err != nil {
			logger.Warn("writing cache", "cache", opts.cachePath, "error", err)
		}
	}

	_, _ = stdout.Write(buf.Bytes())

	if opts.strict && findings {
		return errFindings
	}
	return nil
}

func parseLangs(langs string) ([]string, error) {
	if langs == "" {
		return nil, nil
	}
	var out []string
	for _, name := range strings.Split(langs, ",") {
		name = strings.TrimSpace(name)
		if _, ok := lang.Languages[name]; !ok {
			return nil, fmt.Errorf("unsupported dialect %q", name)
		}
		out = append(out, name)
	}
	return out, nil
}

// loadProfile returns the profile to analyze with and the file it came
// from, "" for the built-in default.
func loadProfile(root, explicit string) (*profile.Profile, string, error) {
	path := explicit
	if path == "" {
		candidate := filepath.Join(root, defaultProfileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path == "" {
		return profile.Default(), "", nil
	}
	p, err := profile.Load(path)
	if err != nil {
		return nil, "", err
	}
	return p, path, nil
}

// cacheIsFresh reports whether the cache is newer than every analyzed file
// and than the profile, when there is one.
func cacheIsFresh(cachePath, root string, files []discover.FileEntry, profilePath string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	deps := make([]string, 0, len(files)+1)
	for _, f := range files {
		deps = append(deps, filepath.Join(root, f.Path))
	}
	if profilePath != "" {
		deps = append(deps, profilePath)
	}

	for _, p := range deps {
		fi, err := os.Stat(p)
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}

const cacheMagic = "mcheck-cache"

// cacheKey identifies the inputs that shape a report besides file contents:
// the file set, the profile and every option that changes the output.
func cacheKey(root string, files []discover.FileEntry, profilePath string, opts analyzeOptions) string {
	d := xxhash.New()
	_, _ = fmt.Fprintf(d, "%s\x00%s\x00%s\x00%s\x00%s\x00%d\x00%d\x00%s\x00%t\n",
		version, root, profilePath, opts.format, opts.charset, opts.maxFiles, opts.maxFileSize, opts.langs, opts.skipTests)
	for _, f := range files {
		_, _ = fmt.Fprintf(d, "%s\x00%s\n", f.Path, f.Language)
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

// readCache returns the cached report body and whether the cached run had
// findings. ok is false when the cache is unreadable or was written under
// another key.
func readCache(path, key string) (body []byte, findings bool, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, false
	}
	header, body, found := bytes.Cut(data, []byte("\n"))
	if !found {
		return nil, false, false
	}
	fields := strings.Fields(string(header))
	if len(fields) != 3 || fields[0] != cacheMagic || fields[1] != key {
		return nil, false, false
	}
	return body, fields[2] == "1", true
}

func writeCache(path, key string, findings bool, body []byte) error {
	flag := "0"
	if findings {
		flag = "1"
	}
	data := make([]byte, 0, len(body)+64)
	data = fmt.Appendf(data, "%s %s %s\n", cacheMagic, key, flag)
	data = append(data, body...)
	return os.WriteFile(path, data, 0o644)
}

func filterBySize(root string, files []discover.FileEntry, maxSize int, logger *logging.Logger) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			logger.Warn("skipping file", "path", f.Path, "size", fi.Size(), "limit", maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
