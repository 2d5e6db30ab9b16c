package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/railyard-labs/railyard/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Config keys.
const (
	KeyTemplateRepo = "template_repo"
	KeyRailsBin     = "rails_bin"
	KeySkipGit      = "skip_git"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
)

// skipGitEnv is honored unprefixed so existing SKIP_GIT=1 invocations keep working.
const skipGitEnv = "SKIP_GIT"

// Dir returns the path to the config directory (~/.railyard/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.railyard/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// LockDir returns the directory holding per-target run locks.
func LockDir() string {
	return filepath.Join(Dir(), "locks")
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()
	viper.SetDefault(KeyRailsBin, "bin/rails")
	viper.SetDefault(KeyLogLevel, "warn")
	viper.SetDefault(KeyLogFormat, "text")

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// GetBool returns a boolean config value by key.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// SkipGit reports whether git initialization should be skipped. Any value of
// SKIP_GIT counts, including an empty one; otherwise skip_git from the config
// file or RAILYARD_SKIP_GIT decides.
func SkipGit() bool {
	if _, ok := os.LookupEnv(skipGitEnv); ok {
		return true
	}
	return GetBool(KeySkipGit)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
