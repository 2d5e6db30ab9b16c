package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Command is one external program invocation.
type Command struct {
	Name string
	Args []string
	Dir  string            // working directory (optional)
	Env  map[string]string // extra environment variables (overlay)
}

// String renders the command the way a user would type it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Name))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.ContainsAny(s, " \t\n'\"$`\\*?[]#&;|<>()") {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return s
}

// Result captures a finished process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Err returns an *ExitError when the process exited non-zero, nil otherwise.
func (r Result) Err(cmd Command) error {
	if r.ExitCode == 0 {
		return nil
	}
	return &ExitError{Command: cmd, Result: r}
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Command Command
	Result  Result
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.Result.ExitCode)
	if tail := lastLine(e.Result.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Runner executes commands.
//
// Run returns a Result with ExitCode set whenever the process ran, even if it
// exited non-zero. The error is reserved for failures to run at all: binary
// not found, context canceled, I/O errors.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec, streaming output to Stdout and
// Stderr while also capturing it.
type ExecRunner struct {
	// Stdout and Stderr can be set for testing; defaults to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes cmd.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		c.Env = c.Environ()
		for k, v := range cmd.Env {
			c.Env = append(c.Env, k+"="+v)
		}
	}

	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var outBuf, errBuf bytes.Buffer
	c.Stdout = io.MultiWriter(stdout, &outBuf)
	c.Stderr = io.MultiWriter(stderr, &errBuf)

	err := c.Run()

	res := Result{
		Stdout: outBuf.String(),
		Stderr: errBuf.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("running %s: %w", cmd.Name, err)
	}
	return res, nil
}

// DryRunner records commands and reports success without executing them.
type DryRunner struct {
	mu       sync.Mutex
	commands []Command
}

// Run records cmd.
func (r *DryRunner) Run(_ context.Context, cmd Command) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
	return Result{}, nil
}

// Commands returns the recorded commands in order.
func (r *DryRunner) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}
