// Package workspace manages the on-disk state shared across configuration
// runs: the configuration header swap, its backup, and the test seed file.
package workspace
