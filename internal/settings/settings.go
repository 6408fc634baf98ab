// Package settings loads the tool's local settings file: where the library
// tree lives, how its build system is invoked, and which build options drive
// the crypto-facade and debug rebuilds. The file is TOML; every field has a
// working default so a bare checkout needs no settings file at all.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the settings file probed when none is given on the command line.
const DefaultFile = "refmatrix.toml"

// Paths locates the library tree and the files the driver touches.
// Relative paths resolve against Root.
type Paths struct {
	Root          string `toml:"root"`
	ConfigHeader  string `toml:"config_header"`
	ConfigsDir    string `toml:"configs_dir"`
	Seedfile      string `toml:"seedfile"`
	OptionScript  string `toml:"option_script"`
	CompatScript  string `toml:"compat_script"`
	OptionsScript string `toml:"options_script"`
}

// Build describes how the library's build system is invoked.
type Build struct {
	Make        string `toml:"make"`
	CFlags      string `toml:"cflags"`
	DebugCFlags string `toml:"debug_cflags"`
}

// Facade names the two boolean build options that route the library through
// its secondary crypto-abstraction layer.
type Facade struct {
	Options []string `toml:"options"`
}

// OptionsTest configures the debug rebuild some options-test runs require.
type OptionsTest struct {
	DebugOption string `toml:"debug_option"`
}

// Settings is the root of the TOML settings file.
type Settings struct {
	Paths       Paths       `toml:"paths"`
	Build       Build       `toml:"build"`
	Facade      Facade      `toml:"facade"`
	OptionsTest OptionsTest `toml:"options_test"`
}

// Default returns the built-in settings, matching a conventional library tree.
func Default() *Settings {
	return &Settings{
		Paths: Paths{
			Root:          ".",
			ConfigHeader:  "include/tls/config.h",
			ConfigsDir:    "configs",
			Seedfile:      "tests/seedfile",
			OptionScript:  "scripts/config.py",
			CompatScript:  "tests/compat.sh",
			OptionsScript: "tests/ssl-opt.sh",
		},
		Build: Build{
			Make:        "make",
			CFlags:      "-Os",
			DebugCFlags: "-g3 -O1",
		},
		Facade: Facade{
			Options: []string{"TLS_CRYPTO_FACADE_C", "TLS_USE_CRYPTO_FACADE"},
		},
		OptionsTest: OptionsTest{
			DebugOption: "TLS_DEBUG_C",
		},
	}
}

// Load reads the settings file at path. An empty path probes DefaultFile and
// silently falls back to Default when it does not exist; an explicit path
// that cannot be read is an error.
func Load(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("settings load failed (%s): %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("settings parse failed (%s): %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("settings invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func (s *Settings) validate() error {
	if s.Paths.Root == "" {
		return errors.New("paths.root must not be empty")
	}
	if s.Paths.ConfigHeader == "" {
		return errors.New("paths.config_header must not be empty")
	}
	if s.Paths.ConfigsDir == "" {
		return errors.New("paths.configs_dir must not be empty")
	}
	if s.Build.Make == "" {
		return errors.New("build.make must not be empty")
	}
	if len(s.Facade.Options) != 2 {
		return fmt.Errorf("facade.options must name exactly two build options, got %d", len(s.Facade.Options))
	}
	if s.OptionsTest.DebugOption == "" {
		return errors.New("options_test.debug_option must not be empty")
	}
	return nil
}

// Resolve joins a possibly-relative path with the configured root.
func (s *Settings) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Paths.Root, path)
}
