// Package config manages user-level settings stored at ~/.railyard/config.yaml.
// It resolves the companion template repository, the rails executable and the
// git toggle from the config file and the environment.
package config
