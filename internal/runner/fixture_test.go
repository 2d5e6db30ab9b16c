package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/railyard-labs/railyard/internal/shell"
	"github.com/stretchr/testify/require"
)

// Files of a freshly generated Rails 6.1 app that the built-in recipe edits.
var freshApp = map[string]string{
	"Gemfile": "source 'https://rubygems.org'\n\ngem 'rails', '~> 6.1.3'\n",
	"config/application.rb": `require_relative "boot"

require "rails/all"

Bundler.require(*Rails.groups)

module MyShop
  class Application < Rails::Application
    config.load_defaults 6.1
  end
end
`,
	"config/environments/development.rb": `require "active_support/core_ext/integer/time"

Rails.application.configure do
  config.cache_classes = false
end
`,
	"config/routes.rb": `Rails.application.routes.draw do
  # For details on the DSL available within this file, see https://guides.rubyonrails.org/routing.html
end
`,
	"config/webpack/environment.js": `const { environment } = require('@rails/webpacker')

module.exports = environment
`,
	"app/assets/config/manifest.js":          "//= link_tree ../images\n//= link_directory ../stylesheets .css\n",
	"app/assets/stylesheets/application.css": "/*\n *= require_tree .\n */\n",
	"db/migrate/20200101000000_create_widgets.rb": `class CreateWidgets < ActiveRecord::Migration[6.1]
  def change
    create_table :widgets do |t|
      t.boolean :admin_flag
    end
  end
end
`,
}

// Files the generators in the built-in recipe would create.
var generated = map[string]map[string]string{
	"generate devise:install": {
		"config/initializers/devise.rb": `Devise.setup do |config|
  # config.secret_key = '5f1c0b2e9d'
  config.mailer_sender = 'please-change-me-at-config-initializers-devise@example.com'
end
`,
	},
	"generate devise User": {
		"db/migrate/20210301000001_devise_create_users.rb": `class DeviseCreateUsers < ActiveRecord::Migration[6.1]
  def change
    create_table :users do |t|
      t.string :email, null: false, default: ""
      t.boolean :admin
    end
  end
end
`,
	},
	"generate friendly_id": {
		"db/migrate/20210301000002_create_friendly_id_slugs.rb": `class CreateFriendlyIdSlugs < ActiveRecord::Migration
  def change
    create_table :friendly_id_slugs do |t|
      t.string :slug, null: false
    end
  end
end
`,
	},
	"generate administrate:install": {
		"app/dashboards/user_dashboard.rb": `require "administrate/base_dashboard"

class UserDashboard < Administrate::BaseDashboard
  ATTRIBUTE_TYPES = {
    id: Field::Number,
    email: Field::String,
    admin: Field::Boolean,
  }.freeze

  COLLECTION_ATTRIBUTES = %i[
    id
    email
  ].freeze

  FORM_ATTRIBUTES = [
    :email,
    :admin,
  ].freeze
end
`,
		"app/dashboards/announcement_dashboard.rb": `require "administrate/base_dashboard"

class AnnouncementDashboard < Administrate::BaseDashboard
  ATTRIBUTE_TYPES = {
    id: Field::Number,
    announcement_type: Field::String,
    name: Field::String,
  }.freeze
end
`,
		"app/controllers/admin/application_controller.rb": `module Admin
  class ApplicationController < Administrate::ApplicationController
    before_action :authenticate_admin

    def authenticate_admin
      # TODO Add authentication logic here.
    end
  end
end
`,
	},
}

// newApp writes a fresh app named my_shop and returns its root.
func newApp(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "my_shop")
	for name, body := range freshApp {
		writeFile(t, root, name, body)
	}
	old := time.Now().Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "db/migrate/20200101000000_create_widgets.rb"), old, old))
	return root
}

func writeFile(t *testing.T, root, name, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
}

func readFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

// fakeShell records commands and plays the part of the Rails generators.
type fakeShell struct {
	t    *testing.T
	root string
	// fail maps a command line prefix to the exit code it returns.
	fail map[string]int

	mu       sync.Mutex
	commands []shell.Command
}

func (f *fakeShell) Run(_ context.Context, cmd shell.Command) (shell.Result, error) {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	f.mu.Unlock()

	line := cmd.String()
	for prefix, code := range f.fail {
		if strings.HasPrefix(line, prefix) {
			return shell.Result{ExitCode: code, Stderr: "simulated failure\n"}, nil
		}
	}

	args := strings.Join(cmd.Args, " ")
	for prefix, files := range generated {
		if !strings.HasPrefix(args, prefix) {
			continue
		}
		for name, body := range files {
			p := filepath.Join(f.root, filepath.FromSlash(name))
			if _, err := os.Stat(p); err == nil {
				continue // generators do not clobber existing files here
			}
			writeFile(f.t, f.root, name, body)
		}
	}
	return shell.Result{}, nil
}

func (f *fakeShell) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	for i, c := range f.commands {
		out[i] = c.String()
	}
	return out
}
