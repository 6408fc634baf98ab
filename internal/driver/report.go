package driver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Status is the outcome of one configuration run.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Result records one configuration run for the report.
type Result struct {
	Name            string  `yaml:"name"`
	Facade          bool    `yaml:"facade,omitempty"`
	Status          Status  `yaml:"status"`
	FailedStep      string  `yaml:"failed_step,omitempty"`
	DurationSeconds float64 `yaml:"duration_seconds"`
}

// report is the YAML document written by WriteReport.
type report struct {
	Runs []Result `yaml:"runs"`
}

// WriteReport marshals the results to YAML at path. It is written whether
// the run passed or failed.
func WriteReport(path string, results []Result) error {
	data, err := yaml.Marshal(report{Runs: results})
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run report %s: %w", path, err)
	}
	return nil
}
