// Package driver sequences the per-configuration work: baseline restore,
// header install, facade toggles, build, unit tests, and the optional
// compatibility and options test scripts. It owns the failure policy — what
// aborts the run versus what fails a single configuration — and the final
// restore-and-clean path.
package driver
