package matrix

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/refmatrix/refmatrix/internal/ctxlog"
	"github.com/refmatrix/refmatrix/internal/fsutil"
)

// LoadOverlay parses every .hcl file under path (a single file or a
// directory tree) and applies the config blocks found there to the matrix.
// Overlay entries replace built-in entries of the same name; the same name
// appearing twice within the overlay itself is an error.
func (m *Matrix) LoadOverlay(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)

	filePaths, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return fmt.Errorf("failed to scan matrix path %s: %w", path, err)
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl matrix files found in path", "path", path)
		return nil
	}
	logger.Debug("Found matrix overlay files.", "files", filePaths)

	parser := hclparse.NewParser()
	loaded := map[string]string{} // case name -> file it came from

	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return fmt.Errorf("failed to parse matrix file %s: %w", filePath, diags)
		}

		var parsed matrixFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
			return fmt.Errorf("failed to decode matrix file %s: %w", filePath, diags)
		}

		for _, block := range parsed.Configs {
			if prev, dup := loaded[block.Name]; dup {
				return fmt.Errorf("configuration %q declared in both %s and %s", block.Name, prev, filePath)
			}
			loaded[block.Name] = filePath

			c, err := block.toCase()
			if err != nil {
				return fmt.Errorf("invalid config %q in %s: %w", block.Name, filePath, err)
			}
			m.apply(c)
			logger.Debug("Applied matrix overlay entry.", "name", c.Name, "file", filePath)
		}
	}

	logger.Info("Matrix overlay loaded.", "entries", len(loaded))
	return nil
}

// toCase translates the HCL block into the table's representation,
// evaluating the env expression into a plain string map.
func (b *configBlock) toCase() (Case, error) {
	c := Case{
		Name:           b.Name,
		Compat:         b.Compat,
		Opt:            b.Opt,
		OptNeedsDebug:  b.OptNeedsDebug,
		TestWithFacade: b.TestWithFacade,
	}
	if b.Name == "" {
		return Case{}, fmt.Errorf("configuration name must not be empty")
	}

	if b.Env == nil {
		return c, nil
	}
	val, diags := b.Env.Value(nil)
	if diags.HasErrors() {
		return Case{}, fmt.Errorf("env: %w", diags)
	}
	if val.IsNull() {
		return c, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return Case{}, fmt.Errorf("env must be a map of strings, got %s", val.Type().FriendlyName())
	}

	env := map[string]string{}
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		sv, err := convert.Convert(v, cty.String)
		if err != nil {
			return Case{}, fmt.Errorf("env[%s]: %w", k.AsString(), err)
		}
		if sv.IsNull() {
			return Case{}, fmt.Errorf("env[%s]: value must not be null", k.AsString())
		}
		env[k.AsString()] = sv.AsString()
	}
	if len(env) > 0 {
		c.Env = env
	}
	return c, nil
}
