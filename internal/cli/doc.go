// Package cli defines the Cobra command tree for the railyard CLI. Each file
// in this package registers one top-level command (apply, new, plan, etc.)
// with the root command. Command implementations delegate to internal packages
// for the scaffolding work and only handle flags, output and exit status.
package cli
