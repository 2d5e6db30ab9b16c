package runner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
	"github.com/railyard-labs/railyard/internal/config"
	"github.com/railyard-labs/railyard/internal/project"
	"github.com/railyard-labs/railyard/internal/recipe"
	"github.com/railyard-labs/railyard/internal/scaffold"
	"github.com/railyard-labs/railyard/internal/shell"
	"github.com/railyard-labs/railyard/internal/source"
	"github.com/railyard-labs/railyard/internal/style"
)

// Config holds everything a run needs to know about its environment.
type Config struct {
	// TargetDir is the Rails project root.
	TargetDir string
	// AppName is the directory-style application name used in messages
	// (e.g., "my_shop"). Defaults to the base name of TargetDir.
	AppName string
	// Sources is where copy steps read template files from.
	Sources *source.Sources
	// SkipGit skips steps marked unless: skip_git.
	SkipGit bool
	// DryRun announces every step and sends commands to the shell runner
	// without touching files.
	DryRun bool
	// RailsBin runs generators and tasks. Defaults to "bin/rails".
	RailsBin string
	// Out receives progress lines and say output. Defaults to os.Stdout.
	Out io.Writer
	// LockDir holds per-target lock files. Defaults to config.LockDir().
	LockDir string
}

// Runner executes recipes.
type Runner struct {
	cfg   Config
	sh    shell.Runner
	log   *slog.Logger
	out   *style.Printer
	data  *scaffold.Data
	gems  []recipe.Gem
	files []string
}

// New returns a Runner. A nil shell runner means commands are only recorded,
// and a nil logger discards log output.
func New(cfg Config, sh shell.Runner, logger *slog.Logger) *Runner {
	if cfg.RailsBin == "" {
		cfg.RailsBin = "bin/rails"
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.LockDir == "" {
		cfg.LockDir = config.LockDir()
	}
	if abs, err := filepath.Abs(cfg.TargetDir); err == nil {
		cfg.TargetDir = abs
	}
	if cfg.AppName == "" {
		cfg.AppName = filepath.Base(cfg.TargetDir)
	}
	if sh == nil {
		sh = &shell.DryRunner{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		cfg: cfg,
		sh:  sh,
		log: logger,
		out: style.New(cfg.Out),
	}
}

// Run executes every step of rec in order.
func (r *Runner) Run(ctx context.Context, rec *recipe.Recipe) (*Report, error) {
	info, err := os.Stat(r.cfg.TargetDir)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", r.cfg.TargetDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("target %s is not a directory", r.cfg.TargetDir)
	}

	if !r.cfg.DryRun {
		unlock, err := r.lock()
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	report := &Report{RunID: newRunID(time.Now()), Recipe: rec.Name}
	log := r.log.With("run", report.RunID, "recipe", rec.Name, "target", r.cfg.TargetDir)
	r.data = scaffold.NewData(r.cfg.AppName, project.AppName(r.cfg.TargetDir))
	r.gems = rec.Gems
	r.files = nil

	log.Info("run started", "steps", len(rec.Steps), "dry_run", r.cfg.DryRun, "skip_git", r.cfg.SkipGit)
	start := time.Now()

	plan := r.Plan(rec)
	for _, p := range plan {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("run canceled before step %d: %w", p.Index, err)
		}

		s := p.Step
		outcome := StepOutcome{ID: s.ID, Action: s.Action}
		stepLog := log.With("step", s.ID, "index", p.Index)

		if p.Skipped {
			outcome.Status = StatusSkipped
			report.Steps = append(report.Steps, outcome)
			r.out.Skip("%s (%s)", s.ID, p.Reason)
			stepLog.Debug("step skipped", "reason", p.Reason)
			continue
		}

		if s.Action != recipe.ActionSay {
			r.out.Step(p.Index, len(plan), s.ID, p.Detail)
		}

		stepStart := time.Now()
		err := r.exec(ctx, s)
		outcome.Duration = time.Since(stepStart)

		switch {
		case err == nil:
			outcome.Status = StatusDone
			if r.cfg.DryRun {
				outcome.Status = StatusPlanned
			}
			stepLog.Debug("step finished", "action", s.Action, "duration", outcome.Duration)
		case s.Warns():
			outcome.Status = StatusWarned
			outcome.Err = err.Error()
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", s.ID, err))
			r.out.Warn("%s failed, continuing: %v", s.ID, err)
			stepLog.Warn("step failed, continuing", "action", s.Action, "error", err)
		default:
			outcome.Status = StatusFailed
			outcome.Err = err.Error()
			report.Steps = append(report.Steps, outcome)
			report.Files = r.files
			r.out.Fail("%s: %v", s.ID, err)
			stepLog.Error("step failed", "action", s.Action, "error", err)
			return report, &StepError{Step: s, Index: p.Index, Err: err}
		}
		report.Steps = append(report.Steps, outcome)
	}

	report.Files = r.files
	done := report.Count(StatusDone) + report.Count(StatusPlanned)
	r.out.OK("%s: %d step(s) done, %d skipped, %d warning(s)",
		rec.Name, done, report.Count(StatusSkipped), len(report.Warnings))
	log.Info("run finished",
		"duration", time.Since(start),
		"done", report.Count(StatusDone),
		"skipped", report.Count(StatusSkipped),
		"warnings", len(report.Warnings))
	return report, nil
}

// lock takes the per-target lock without blocking.
func (r *Runner) lock() (func(), error) {
	if err := os.MkdirAll(r.cfg.LockDir, 0755); err != nil {
		return nil, fmt.Errorf("creating lock dir: %w", err)
	}
	path := LockPath(r.cfg.LockDir, r.cfg.TargetDir)
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, r.cfg.TargetDir)
	}
	return func() { _ = fl.Unlock() }, nil
}

// LockPath returns the lock file for target inside dir.
func LockPath(dir, target string) string {
	sum := sha256.Sum256([]byte(target))
	return filepath.Join(dir, hex.EncodeToString(sum[:8])+".lock")
}

func newRunID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
