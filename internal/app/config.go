package app

// Config holds everything an App run needs, as resolved from the CLI.
type Config struct {
	SettingsPath string   // TOML settings file; empty probes the default
	MatrixPath   string   // optional HCL overlay file or directory
	ReportPath   string   // optional YAML run report destination
	ListOnly     bool     // print known configuration names and exit
	Names        []string // requested configurations; empty selects all

	LogFormat string
	LogLevel  string
}

// NewConfig validates and returns the configuration.
func NewConfig(cfg Config) (*Config, error) {
	// All fields have working zero values; the CLI layer validates the
	// log options before they get here.
	return &cfg, nil
}
