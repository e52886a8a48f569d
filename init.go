package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/mcheck/internal/profile"
)

const (
	sentinelStart = "# mcheck:start"
	sentinelEnd   = "# mcheck:end"
)

// newInitCmd implements `mcheck init`, which writes (or updates) the default
// profile in a YAML profile file.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path-to-profile]",
		Short: "Write the default rule profile",
		Long: `Write the default rule profile to a YAML file. The profile is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-profile defaults to ./` + defaultProfileName + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args, dryRun, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

func runInit(args []string, dryRun bool, stdout, stderr io.Writer) error {
	section, err := generateSection()
	if err != nil {
		return err
	}

	// --dry-run with no path: just print the section itself.
	if dryRun && len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := defaultProfileName
	if len(args) > 0 {
		path = args[0]
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote default profile to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped default profile.
func generateSection() (string, error) {
	body, err := profile.Default().Encode(profile.YAML)
	if err != nil {
		return "", fmt.Errorf("encoding default profile: %w", err)
	}
	header := "# Generated by `mcheck init`. Rules listed here are active; see `mcheck rules`\n" +
		"# for every rule and its parameters.\n"
	return sentinelStart + "\n" + header + strings.TrimRight(string(body), "\n") + "\n" + sentinelEnd, nil
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if content == "" {
		return section + "\n"
	}
	return content + "\n" + section + "\n"
}
