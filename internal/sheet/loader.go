package sheet

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/formulamap/internal/ctxlog"
	"github.com/vk/formulamap/internal/fsutil"
)

// ErrInvalidSheet is returned, wrapped, for any sheet that cannot be turned
// into definitions.
var ErrInvalidSheet = errors.New("invalid sheet")

const (
	extHCL  = ".hcl"
	extTOML = ".toml"
)

// Definition is one NAME = expression pair read from a sheet.
type Definition struct {
	Name       string
	Expression string
	// Source locates the definition: path:line for HCL, path:key for TOML.
	Source string
}

// Loader reads sheets from the file system.
type Loader struct{}

// NewLoader creates a new sheet loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every sheet found under paths. Paths may be files or
// directories; directories are searched recursively for .hcl and .toml
// files.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]Definition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Sheet loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, extHCL, extTOML)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered sheet files.", "count", len(files))

	parser := hclparse.NewParser()
	var defs []Definition
	for _, file := range files {
		var fileDefs []Definition
		switch filepath.Ext(file) {
		case extHCL:
			fileDefs, err = loadHCL(parser, file)
		case extTOML:
			fileDefs, err = loadTOML(file)
		}
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded sheet.", "file", file, "definitions", len(fileDefs))
		defs = append(defs, fileDefs...)
	}

	logger.Debug("Sheet loading complete.", "files", len(files), "definitions", len(defs))
	return defs, nil
}

func loadHCL(parser *hclparse.Parser, file string) ([]Definition, error) {
	f, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse HCL file %s: %w", ErrInvalidSheet, file, diags)
	}

	attrs, diags := f.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s must only contain attributes: %w", ErrInvalidSheet, file, diags)
	}

	defs := make([]Definition, 0, len(attrs))
	for _, attr := range attrs {
		defs = append(defs, Definition{
			Name:       attr.Name,
			Expression: strings.TrimSpace(string(attr.Expr.Range().SliceBytes(f.Bytes))),
			Source:     fmt.Sprintf("%s:%d", file, attr.NameRange.Start.Line),
		})
	}
	// JustAttributes returns a map; restore the order of the file.
	sort.Slice(defs, func(i, j int) bool {
		return attrs[defs[i].Name].Range.Start.Byte < attrs[defs[j].Name].Range.Start.Byte
	})
	return defs, nil
}

func validName(file, name string) error {
	if !hclsyntax.ValidIdentifier(name) {
		return fmt.Errorf("%w: %s: %q is not a valid variable name", ErrInvalidSheet, file, name)
	}
	return nil
}
