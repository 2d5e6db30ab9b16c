// Package recipe handles parsing and validation of scaffolding recipes. A
// recipe is a YAML document listing, in order, the steps run against a target
// project. Documents are checked against an embedded JSON schema and then
// against the per-action rules the schema cannot express.
package recipe
