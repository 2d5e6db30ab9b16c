// Package edit applies anchored text edits to files in the target project.
// Every edit names an anchor that must match exactly once; anything else is a
// *PreconditionError, so a recipe run against a project that was already
// patched stops at the first edit whose anchor is gone.
package edit
