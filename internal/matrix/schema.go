package matrix

import "github.com/hashicorp/hcl/v2"

// configBlock is the HCL shape of a `config "NAME" { ... }` block in an
// overlay file. Env stays an expression so load.go can decode it into a
// string map with proper diagnostics.
type configBlock struct {
	Name           string         `hcl:"name,label"`
	Compat         string         `hcl:"compat,optional"`
	Opt            string         `hcl:"opt,optional"`
	OptNeedsDebug  bool           `hcl:"opt_needs_debug,optional"`
	TestWithFacade bool           `hcl:"test_with_facade,optional"`
	Env            hcl.Expression `hcl:"env,optional"`
}

// matrixFile is the top-level structure of one overlay file.
type matrixFile struct {
	Configs []*configBlock `hcl:"config,block"`
}
