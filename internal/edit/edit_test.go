package edit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userDashboard = `require "administrate/base_dashboard"

class UserDashboard < Administrate::BaseDashboard
  ATTRIBUTE_TYPES = {
    id: Field::Number,
    email: Field::String,
    admin: Field::Boolean,
  }.freeze

  FORM_ATTRIBUTES = [
    :email,
    :admin,
  ].freeze
end
`

func TestApplyModes(t *testing.T) {
	tests := []struct {
		name string
		text string
		edit Edit
		want string
	}{
		{
			name: "before",
			text: "a\nmodule.exports = environment\n",
			edit: Edit{Anchor: "module.exports = environment", Mode: Before, Content: "x\n"},
			want: "a\nx\nmodule.exports = environment\n",
		},
		{
			name: "after",
			text: "Rails.application.routes.draw do\nend\n",
			edit: Edit{Anchor: "Rails.application.routes.draw do\n", Mode: After, Content: "  root to: 'home#index'\n"},
			want: "Rails.application.routes.draw do\n  root to: 'home#index'\nend\n",
		},
		{
			name: "replace literal",
			text: "t.boolean :admin\n",
			edit: Edit{Anchor: ":admin", Mode: Replace, Content: ":admin, default: false"},
			want: "t.boolean :admin, default: false\n",
		},
		{
			name: "replace regexp",
			text: "  # config.secret_key = 'abc123'\n  config.x = 1\n",
			edit: Edit{Anchor: `  # config.secret_key = .+`, Regexp: true, Mode: Replace, Content: "  config.secret_key = KEY"},
			want: "  config.secret_key = KEY\n  config.x = 1\n",
		},
		{
			name: "after migration class",
			text: "class CreateFriendlyIdSlugs < ActiveRecord::Migration\n",
			edit: Edit{Anchor: `ActiveRecord::Migration`, Mode: After, Content: "[5.2]"},
			want: "class CreateFriendlyIdSlugs < ActiveRecord::Migration[5.2]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.text, tt.edit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyFormAttributes(t *testing.T) {
	got, err := Apply(userDashboard, Edit{
		Anchor:  "FORM_ATTRIBUTES = [",
		Mode:    Replace,
		Content: "FORM_ATTRIBUTES = [\n    :password,",
	})
	require.NoError(t, err)
	assert.Contains(t, got, "  FORM_ATTRIBUTES = [\n    :password,\n    :email,\n")
}

func TestApplyAnchorNotFound(t *testing.T) {
	_, err := Apply("nothing here", Edit{Anchor: "FORM_ATTRIBUTES = [", Mode: Replace, Content: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPrecondition))

	var pe *PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, AnchorNotFound, pe.Kind)
	assert.Equal(t, 0, pe.Matches)
}

func TestApplyAnchorAmbiguous(t *testing.T) {
	tests := []struct {
		name string
		edit Edit
	}{
		{"literal", Edit{Anchor: "do", Mode: After, Content: "x"}},
		{"regexp", Edit{Anchor: `d.`, Regexp: true, Mode: After, Content: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply("do\ndo\ndo\n", tt.edit)
			var pe *PreconditionError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, AnchorAmbiguous, pe.Kind)
			assert.Equal(t, 3, pe.Matches)
		})
	}
}

func TestApplyBadRegexp(t *testing.T) {
	_, err := Apply("x", Edit{Anchor: "([", Regexp: true, Mode: Replace})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPrecondition))
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_dashboard.rb")
	require.NoError(t, os.WriteFile(path, []byte(userDashboard), 0600))

	err := ApplyFile(path, Edit{Anchor: "email: Field::String", Mode: Replace,
		Content: "email: Field::String,\n    password: Field::String.with_options(searchable: false)"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "    email: Field::String,\n    password: Field::String.with_options(searchable: false),\n")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "mode should survive the rewrite")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestApplyFileSecondRunFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devise.rb")
	require.NoError(t, os.WriteFile(path, []byte("  # config.secret_key = 'abc'\n"), 0644))

	e := Edit{Anchor: `  # config.secret_key = .+`, Regexp: true, Mode: Replace, Content: "  config.secret_key = KEY"}
	require.NoError(t, ApplyFile(path, e))

	err := ApplyFile(path, e)
	var pe *PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, AnchorNotFound, pe.Kind)
	assert.Equal(t, path, pe.Path)
}

func TestApplyFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.rb")
	err := ApplyFile(path, Edit{Anchor: "x", Mode: Replace})
	var pe *PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, FileMissing, pe.Kind)
	assert.Contains(t, err.Error(), "nope.rb")
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.js")
	require.NoError(t, os.WriteFile(path, []byte("//= link_tree ../images\n"), 0644))

	require.NoError(t, Append(path, "//= link administrate/application.css\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "//= link_tree ../images\n//= link administrate/application.css\n", string(data))
}

func TestAppendTerminatesLastLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Gemfile")
	require.NoError(t, os.WriteFile(path, []byte("gem 'rails'"), 0644))

	require.NoError(t, Append(path, "gem 'devise'\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gem 'rails'\ngem 'devise'\n", string(data))
}

func TestAppendMissingFile(t *testing.T) {
	err := Append(filepath.Join(t.TempDir(), "Gemfile"), "gem 'x'\n")
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestReindent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{"single line", "config.x = 1\n", 4, "    config.x = 1\n"},
		{
			name:    "nested block",
			content: "config.to_prepare do\n  helper\nend\n",
			n:       4,
			want:    "    config.to_prepare do\n      helper\n    end\n",
		},
		{
			name:    "strips common indent",
			content: "    a\n      b\n",
			n:       2,
			want:    "  a\n    b\n",
		},
		{"blank lines stay empty", "a\n\n  b\n\n", 2, "  a\n\n    b\n\n"},
		{"all blank", "\n\n", 2, "\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reindent(tt.content, tt.n))
		})
	}
}
