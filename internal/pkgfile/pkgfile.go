// SPDX-License-Identifier: MPL-2.0

// Package pkgfile parses a package declaration file (package.cue) into the
// Go types Package construction consumes, and manages the third-party
// dependency lockfile that sits alongside it.
//
// The declaration file replaces the sandboxed-evaluation capability objects
// described by the original framework (a Package-configuration capability
// and an Npm capability) with a closed CUE schema: see schema.cue and
// Design Notes in the project's expanded specification.
package pkgfile

import (
	_ "embed"
	"fmt"
	"sort"

	"buildforge/internal/cueutil"
	"buildforge/internal/errs"
)

//go:embed schema.cue
var schema []byte

// SchemaRoot is the CUE definition path parsed files are unified against.
const SchemaRoot = "#Package"

// FileName is the conventional name of a package declaration file within a
// package directory.
const FileName = "package.cue"

// Where restricts a usage/export/file edge to one or both archs.
type Where string

const (
	WhereClient Where = "client"
	WhereServer Where = "server"
)

// UseEdge is a single `use()` call from a package's onUse/onTest block.
type UseEdge struct {
	Names      []string `json:"names"`
	Where      []Where  `json:"where,omitempty"`
	Unordered  bool     `json:"unordered,omitempty"`
}

// AddFiles is a single `addFiles()` call.
type AddFiles struct {
	Paths []string `json:"paths"`
	Where []Where  `json:"where,omitempty"`
}

// ExportSymbol is a single `exportSymbol()` call.
type ExportSymbol struct {
	Symbols []string `json:"symbols"`
	Where   []Where  `json:"where,omitempty"`
}

// SliceDecl is the slice-building capability's recorded calls for one role
// (onUse or onTest).
type SliceDecl struct {
	Use          []UseEdge      `json:"use,omitempty"`
	AddFiles     []AddFiles     `json:"addFiles,omitempty"`
	ExportSymbol []ExportSymbol `json:"exportSymbol,omitempty"`
}

// Package is the decoded contents of a package.cue file.
type Package struct {
	Name               string            `json:"name"`
	Summary            string            `json:"summary,omitempty"`
	Internal           bool              `json:"internal,omitempty"`
	RegisterExtension  map[string]string `json:"registerExtension,omitempty"`
	Depends            map[string]string `json:"depends,omitempty"`
	RelativeRequire    []string          `json:"relativeRequire,omitempty"`
	OnUse              *SliceDecl        `json:"onUse,omitempty"`
	OnTest             *SliceDecl        `json:"onTest,omitempty"`
}

// Parse reads and validates a package.cue file's bytes, rejecting fuzzy
// third-party version specifiers eagerly (spec §7: "depends rejects fuzzy
// versions at registration time").
func Parse(data []byte, filePath string) (*Package, error) {
	result, err := cueutil.ParseAndDecode[Package](schema, data, SchemaRoot, cueutil.WithFilename(filePath))
	if err != nil {
		return nil, errs.NewConfigurationError("parse package declaration", filePath, err)
	}

	for name, version := range result.Value.Depends {
		if !isExactVersion(version) {
			return nil, errs.NewConfigurationError(
				"validate third-party dependency version",
				fmt.Sprintf("%s@%s", name, version),
				fmt.Errorf("version must be exact; fuzzy specifiers (^, ~, *, ranges) are rejected"),
			)
		}
	}

	return result.Value, nil
}

// isExactVersion rejects any version string carrying a range/fuzzy marker.
func isExactVersion(v string) bool {
	if v == "" {
		return false
	}
	for _, c := range v {
		switch c {
		case '^', '~', '*', '>', '<', ' ', 'x', 'X':
			return false
		}
	}
	return true
}

// ExtensionProviders returns the package's registered extensions in
// deterministic order, for callers that need to report conflicts
// reproducibly.
func (p *Package) ExtensionProviders() []string {
	exts := make([]string, 0, len(p.RegisterExtension))
	for ext := range p.RegisterExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
