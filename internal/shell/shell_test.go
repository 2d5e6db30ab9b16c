package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping")
	}
}

func TestExecRunnerCapturesAndStreams(t *testing.T) {
	requireSh(t)
	var out, errOut bytes.Buffer
	r := &ExecRunner{Stdout: &out, Stderr: &errOut}

	res, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `echo "hello $GREETING"; echo oops >&2`},
		Env:  map[string]string{"GREETING": "yard"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello yard\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, res.Stdout, out.String())
	assert.Equal(t, res.Stderr, errOut.String())
}

func TestExecRunnerDir(t *testing.T) {
	requireSh(t)
	dir := t.TempDir()
	r := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "pwd -P"}, Dir: dir})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Stdout)
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	requireSh(t)
	r := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	cmd := Command{Name: "sh", Args: []string{"-c", "echo 'nothing to commit' >&2; exit 1"}}

	res, err := r.Run(context.Background(), cmd)
	require.NoError(t, err, "non-zero exit is not a run failure")
	assert.Equal(t, 1, res.ExitCode)

	exitErr := res.Err(cmd)
	var ee *ExitError
	require.True(t, errors.As(exitErr, &ee))
	assert.Contains(t, ee.Error(), "exited with status 1: nothing to commit")
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	_, err := r.Run(context.Background(), Command{Name: "railyard-definitely-missing-binary"})
	assert.Error(t, err)
}

func TestDryRunnerRecords(t *testing.T) {
	r := &DryRunner{}
	cmds := []Command{
		{Name: "bin/rails", Args: []string{"generate", "devise:install"}},
		{Name: "git", Args: []string{"init"}},
	}
	for _, c := range cmds {
		res, err := r.Run(context.Background(), c)
		require.NoError(t, err)
		assert.NoError(t, res.Err(c))
	}
	assert.Equal(t, cmds, r.Commands())
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{Command{Name: "git", Args: []string{"add", "."}}, "git add ."},
		{Command{Name: "git", Args: []string{"commit", "-m", "Initial commit"}}, "git commit -m 'Initial commit'"},
		{Command{Name: "bin/rails", Args: []string{"generate", "model", "Announcement", "published_at:datetime"}}, "bin/rails generate model Announcement published_at:datetime"},
		{Command{Name: "echo", Args: []string{"it's"}}, `echo 'it'\''s'`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}
