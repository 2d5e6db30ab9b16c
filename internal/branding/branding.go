// Package branding provides compile-time identity values for the CLI.
//
// Values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Hard defaults cover a missing or empty file.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName         string `yaml:"cli_name"`
	DisplayName     string `yaml:"display_name"`
	Description     string `yaml:"description"`
	HomeDir         string `yaml:"home_dir"`
	EnvPrefix       string `yaml:"env_prefix"`
	GoModule        string `yaml:"go_module"`
	TemplateRepoURL string `yaml:"template_repo_url"`
	TempDirPrefix   string `yaml:"temp_dir_prefix"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:         "railyard",
			DisplayName:     "Railyard",
			Description:     "Turn a fresh Rails project into a ready-to-run starter app",
			HomeDir:         ".railyard",
			EnvPrefix:       "RAILYARD",
			GoModule:        "github.com/railyard-labs/railyard",
			TemplateRepoURL: "https://github.com/ankurp/rail-yard.git",
			TempDirPrefix:   "rail-yard-",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "railyard").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".railyard").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "RAILYARD").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// TemplateRepoURL returns the git URL of the companion template repository
// cloned when a recipe is referenced by URL.
func TemplateRepoURL() string { load(); return defaults.TemplateRepoURL }

// TempDirPrefix returns the prefix used for the temporary clone directory.
func TempDirPrefix() string { load(); return defaults.TempDirPrefix }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "RAILYARD_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
