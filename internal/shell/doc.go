// Package shell is the boundary between a recipe run and the external
// programs it drives (bundle, bin/rails, yarn, git). The Runner interface
// lets tests and dry runs substitute recorders for real processes.
package shell
