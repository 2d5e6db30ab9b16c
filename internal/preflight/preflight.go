package preflight

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/railyard-labs/railyard/internal/recipe"
	"github.com/railyard-labs/railyard/internal/shell"
)

// Status is the outcome of one tool check.
type Status string

const (
	StatusOK      Status = "ok"
	StatusMissing Status = "missing"
	StatusOld     Status = "old"
	// StatusUnknown means the tool exists but its version could not be read.
	StatusUnknown Status = "unknown"
)

// ToolResult describes one checked tool.
type ToolResult struct {
	Name       string
	Path       string
	Version    string
	MinVersion string
	Status     Status
	Detail     string
}

// Report collects the results of a preflight run.
type Report struct {
	Results []ToolResult
}

// Failed returns the tools that are missing or too old.
func (r *Report) Failed() []ToolResult {
	var out []ToolResult
	for _, res := range r.Results {
		if res.Status == StatusMissing || res.Status == StatusOld {
			out = append(out, res)
		}
	}
	return out
}

// Err returns a *ToolError when any tool failed.
func (r *Report) Err() error {
	if failed := r.Failed(); len(failed) > 0 {
		return &ToolError{Failed: failed}
	}
	return nil
}

// Print writes one line per tool in the doctor format.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "Tool check:")
	if len(r.Results) == 0 {
		fmt.Fprintln(w, "  [ OK ] No tools declared")
		return
	}
	for _, res := range r.Results {
		switch res.Status {
		case StatusOK:
			if res.Version != "" {
				fmt.Fprintf(w, "  [ OK ] %s %s found at %s\n", res.Name, res.Version, res.Path)
			} else {
				fmt.Fprintf(w, "  [ OK ] %s found at %s\n", res.Name, res.Path)
			}
		case StatusMissing:
			fmt.Fprintf(w, "  [MISS] %s not found\n", res.Name)
		case StatusOld:
			fmt.Fprintf(w, "  [OLD ] %s %s is older than %s\n", res.Name, res.Version, res.MinVersion)
		case StatusUnknown:
			fmt.Fprintf(w, "  [WARN] %s found at %s, version unknown: %s\n", res.Name, res.Path, res.Detail)
		}
	}
	if failed := r.Failed(); len(failed) > 0 {
		fmt.Fprintf(w, "\n  %d tool(s) missing or outdated.\n", len(failed))
	}
}

// ToolError reports tools that failed the check.
type ToolError struct {
	Failed []ToolResult
}

func (e *ToolError) Error() string {
	names := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		names[i] = f.Name
		if f.Status == StatusOld {
			names[i] = fmt.Sprintf("%s (%s < %s)", f.Name, f.Version, f.MinVersion)
		}
	}
	return "missing or outdated tools: " + strings.Join(names, ", ")
}

// Checker runs tool checks.
type Checker struct {
	Runner shell.Runner
	// LookPath defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

// Check inspects every tool in order.
func (c *Checker) Check(ctx context.Context, tools []recipe.Tool) *Report {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	report := &Report{}
	for _, tool := range tools {
		res := ToolResult{Name: tool.Name, MinVersion: tool.MinVersion}
		path, err := lookPath(tool.Name)
		if err != nil {
			res.Status = StatusMissing
			report.Results = append(report.Results, res)
			continue
		}
		res.Path = path
		res.Status = StatusOK

		if tool.MinVersion != "" {
			c.checkVersion(ctx, tool, &res)
		}
		report.Results = append(report.Results, res)
	}
	return report
}

func (c *Checker) checkVersion(ctx context.Context, tool recipe.Tool, res *ToolResult) {
	args := tool.VersionArgs
	if len(args) == 0 {
		args = []string{"--version"}
	}
	cmd := shell.Command{Name: tool.Name, Args: args}
	out, err := c.Runner.Run(ctx, cmd)
	if err == nil {
		err = out.Err(cmd)
	}
	if err != nil {
		res.Status = StatusUnknown
		res.Detail = err.Error()
		return
	}

	v, err := ParseVersion(out.Stdout + "\n" + out.Stderr)
	if err != nil {
		res.Status = StatusUnknown
		res.Detail = err.Error()
		return
	}
	res.Version = v.String()

	ok, err := Satisfies(v, tool.MinVersion)
	if err != nil {
		res.Status = StatusUnknown
		res.Detail = err.Error()
		return
	}
	if !ok {
		res.Status = StatusOld
	}
}

var versionPattern = regexp.MustCompile(`v?\d+\.\d+(\.\d+)?`)

// ParseVersion extracts the first version number from tool output such as
// "ruby 2.7.2p137 (2020-10-01 revision 5445e04352)" or "Rails 6.1.3".
func ParseVersion(output string) (*semver.Version, error) {
	m := versionPattern.FindString(output)
	if m == "" {
		return nil, fmt.Errorf("no version in %q", strings.TrimSpace(output))
	}
	return parseSemver(m)
}

// Satisfies reports whether v is at least min.
func Satisfies(v *semver.Version, min string) (bool, error) {
	mv, err := parseSemver(min)
	if err != nil {
		return false, fmt.Errorf("parsing minimum version %q: %w", min, err)
	}
	return !v.LessThan(mv), nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
