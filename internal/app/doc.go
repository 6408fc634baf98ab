// Package app contains the core application logic. It wires the
// configuration table, settings, workspace, toolchain, and driver together
// and owns the run lifecycle, decoupled from the CLI entrypoint.
package app
