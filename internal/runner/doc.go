// Package runner executes a recipe against a Rails project.
//
// Steps run strictly in order. Each step either copies template files,
// shells out (bundle, bin/rails, yarn, git), or applies an anchored edit
// whose anchor must match exactly once. The first failing step aborts the
// run with a *StepError unless the step is marked on_failure: warn.
//
// A run holds an exclusive file lock keyed by the target directory, so two
// runs against the same project cannot interleave. Every log line carries
// the run's ULID.
package runner
