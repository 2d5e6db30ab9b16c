// Package preflight checks that the programs a recipe shells out to are on
// PATH and new enough before any file in the project is touched.
package preflight
