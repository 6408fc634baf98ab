package matrix

import (
	"fmt"
	"sort"
)

// Case describes how one named reference configuration is tested. The zero
// value means "build it, run the unit-test suite, nothing else".
type Case struct {
	// Name is the configuration header file name under the configs directory.
	Name string

	// Compat holds filter arguments for the compatibility-test script.
	// Empty means the compatibility test is skipped for this configuration.
	Compat string

	// Opt holds arguments for the options-test script. Empty means the
	// options test is skipped. A single space runs the script unfiltered.
	Opt string

	// OptNeedsDebug marks options tests that only work against a debug build.
	OptNeedsDebug bool

	// TestWithFacade requests a second full run of this configuration with
	// the crypto-facade build options enabled.
	TestWithFacade bool

	// Env is extra environment applied to every command of this case's runs.
	Env map[string]string
}

// HasCompat reports whether a compatibility-test run is requested.
func (c Case) HasCompat() bool { return c.Compat != "" }

// HasOpt reports whether an options-test run is requested.
func (c Case) HasOpt() bool { return c.Opt != "" }

// Matrix is the table of known reference configurations.
type Matrix struct {
	cases map[string]Case
}

// Builtin returns the matrix of reference configurations shipped with the
// tool. Keys are configuration header file names; the per-case flags mirror
// what each configuration can meaningfully exercise.
func Builtin() *Matrix {
	m := &Matrix{cases: map[string]Case{}}
	for _, c := range []Case{
		{
			Name:           "config-ccm-psk.h",
			Compat:         `-m tls12 -f '^TLS-PSK-WITH-AES-.*-CCM-8'`,
			TestWithFacade: true,
		},
		{
			Name:   "config-mini.h",
			Compat: `-m tls12 -f '^TLS-RSA-WITH-AES-128-CBC-SHA$'`,
		},
		{
			Name: "config-no-entropy.h",
		},
		{
			Name:           "config-suite-b.h",
			Compat:         `-m tls12 -f 'ECDHE-ECDSA.*AES.*GCM'`,
			Opt:            " ",
			OptNeedsDebug:  true,
			TestWithFacade: true,
		},
		{
			// Already routes everything through the facade; a second
			// pass would test the same build twice.
			Name: "config-symmetric-only.h",
		},
		{
			Name:           "config-thread.h",
			Opt:            "-f ECJPAKE",
			OptNeedsDebug:  true,
			TestWithFacade: true,
		},
	} {
		m.cases[c.Name] = c
	}
	return m
}

// Names returns every known configuration name in sorted order.
func (m *Matrix) Names() []string {
	names := make([]string, 0, len(m.cases))
	for name := range m.cases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves the requested configuration names against the table and
// returns their cases in sorted name order. With no names, every case is
// selected. Any unknown name fails the whole selection; nothing may run
// when the request cannot be satisfied in full.
func (m *Matrix) Select(names ...string) ([]Case, error) {
	if len(names) == 0 {
		names = m.Names()
	} else {
		seen := map[string]bool{}
		for _, name := range names {
			if _, ok := m.cases[name]; !ok {
				return nil, fmt.Errorf("unknown configuration %q", name)
			}
			if seen[name] {
				return nil, fmt.Errorf("configuration %q requested twice", name)
			}
			seen[name] = true
		}
		names = append([]string(nil), names...)
		sort.Strings(names)
	}

	cases := make([]Case, 0, len(names))
	for _, name := range names {
		cases = append(cases, m.cases[name])
	}
	return cases, nil
}

// apply adds or replaces a case. Overlay entries win over built-ins.
func (m *Matrix) apply(c Case) {
	m.cases[c.Name] = c
}
