// Package main provides the minazuki CLI.
//
// The CLI supports:
//   - validate: Check that a schema file parses and resolves
//   - resolve: Print the resolved model (dependency order, junctions, owners)
//   - generate: Render the resolved model with a runtime ("go", "sql" or "template")
//   - doctor: Run health checks on the schema and generator inputs
//   - init: Create minazuki.yaml and a starter schema
//
// Usage:
//
//	minazuki [flags] <command>
//
// Settings are read from minazuki.yaml (discovered upward from the working
// directory), MINAZUKI_* environment variables and flags, in increasing
// order of precedence.
package main

func main() {
	Execute()
}
