// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"crypto/sha1" //nolint:gosec // content-addressing, not a security boundary
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"buildforge/internal/errs"
	"buildforge/internal/handler"
	"buildforge/internal/linker"
	"buildforge/internal/registry"
	"buildforge/internal/resource"
)

// compileState is the slice's compile latch: Uninit -> Compiling ->
// Compiled. Attempting to mutate sources once Compiled is a programming
// error.
type compileState int

const (
	stateUninit compileState = iota
	stateCompiling
	stateCompiled
)

// DirWatch describes a directory to watch, with include/exclude filters.
type DirWatch struct {
	Include []*regexp.Regexp
	Exclude []*regexp.Regexp
}

// DependencyInfo is the watch metadata a slice accumulates during
// compilation, returned to the caller for an external file watcher to
// consume.
type DependencyInfo struct {
	Files       map[string]string // absolute path -> sha1-hex
	Directories map[string]DirWatch
}

func newDependencyInfo() DependencyInfo {
	return DependencyInfo{Files: map[string]string{}, Directories: map[string]DirWatch{}}
}

// Resolver looks up a Package by name, used by Slice to compose extension
// registries and recursively resolve dependency exports. Library implements
// this interface.
type Resolver interface {
	Resolve(name string) (*Package, error)
}

// Slice is the (package, sliceName, arch) compile/link unit.
type Slice struct {
	Package *Package

	SliceName string
	Arch      Arch

	// Uses is the ordered list of usage edges; order affects import-symbol
	// precedence only (later edge wins on collision).
	Uses []UseEdge

	// Sources is the ordered list of paths relative to Package.SourceRoot.
	Sources []string

	// ForceExport is the set of symbol names to export unconditionally.
	ForceExport []string

	state      compileState
	exports    []string
	boundary   string
	prelink    []linker.Fragment
	resources  []resource.Resource // non-js resources, populated at compile
	dependency DependencyInfo
}

// NewSlice constructs an uncompiled slice. Call Package.AddSlice to attach
// it to its owning package.
func NewSlice(sliceName string, arch Arch, uses []UseEdge, sources []string, forceExport []string) *Slice {
	return &Slice{
		SliceName:   sliceName,
		Arch:        arch,
		Uses:        uses,
		Sources:     sources,
		ForceExport: forceExport,
		dependency:  newDependencyInfo(),
	}
}

// IsCompiled reports whether Compile has already run to completion.
func (s *Slice) IsCompiled() bool { return s.state == stateCompiled }

// Exports returns the slice's discovered export set. Valid only after
// Compile.
func (s *Slice) Exports() []string { return s.exports }

// DependencyInfo returns the accumulated watch metadata. Valid only after
// Compile.
func (s *Slice) DependencyInfo() DependencyInfo { return s.dependency }

// Compile runs the slice's sources through the ExtensionRegistry and the
// linker's prelink phase. It is idempotent: after the first successful call
// it is a no-op.
func (s *Slice) Compile(resolver Resolver) error {
	if s.state == stateCompiled {
		return nil
	}
	if s.state == stateCompiling {
		return errs.NewLinkerError("compile slice", s.describeSelf(), errReentrantCompile)
	}
	s.state = stateCompiling

	reg, err := s.effectiveRegistry(resolver)
	if err != nil {
		s.state = stateUninit
		return err
	}

	var jsFragments []linker.Fragment
	for _, relPath := range s.Sources {
		absPath := filepath.Join(s.Package.SourceRoot, relPath)
		data, err := os.ReadFile(absPath)
		if err != nil {
			s.state = stateUninit
			return errs.NewIOError("read slice source", absPath, err)
		}
		s.dependency.Files[absPath] = sha1Hex(data)

		servePath := joinServePath(s.Package.ServeRoot, relPath)
		ext := strings.TrimPrefix(filepath.Ext(relPath), ".")

		h, ok := reg.Lookup(ext)
		if !ok {
			h = handler.Static
		}

		if err := h(func(r resource.Resource) {
			if r.Type == resource.TypeJS {
				jsFragments = append(jsFragments, linker.Fragment{Source: string(r.Data), ServePath: r.ServePath})
				return
			}
			s.resources = append(s.resources, r)
		}, absPath, servePath, string(s.Arch)); err != nil {
			s.state = stateUninit
			return err
		}
	}

	out, err := linker.Prelink(linker.PrelinkInput{
		Fragments:           jsFragments,
		PackageName:         s.Package.Name,
		ForceExport:         s.ForceExport,
		UseGlobalNamespace:  s.Package.Name == "",
		CombinedServePath:   s.combinedServePath(),
		ImportStubServePath: "/packages/global-imports.js",
	})
	if err != nil {
		s.state = stateUninit
		return err
	}

	s.prelink = out.Files
	s.boundary = out.Boundary
	s.exports = out.Exports
	s.state = stateCompiled
	return nil
}

// GetResources compiles this slice (if needed), recursively compiles every
// used slice to discover their exports, links the result, and returns the
// final resource list: non-js resources first, then js in link order.
func (s *Slice) GetResources(resolver Resolver) ([]resource.Resource, error) {
	if err := s.Compile(resolver); err != nil {
		return nil, err
	}

	imports := map[string]string{}
	for _, edge := range s.Uses {
		if edge.Unordered {
			continue
		}
		pkgName, sliceName := splitSpec(edge.Spec)
		usedPkg, err := resolver.Resolve(pkgName)
		if err != nil {
			return nil, errs.NewResolutionError("resolve used package", pkgName, err)
		}
		usedSlice, ok := usedPkg.Slice(sliceName, s.Arch)
		if !ok {
			return nil, errs.NewResolutionError("locate used slice", edge.Spec, errMissingTransitiveSlice)
		}
		if err := usedSlice.Compile(resolver); err != nil {
			return nil, err
		}
		for _, sym := range usedSlice.Exports() {
			imports[sym] = pkgName // later uses entry wins: we iterate Uses in order
		}
	}

	linked, err := linker.Link(linker.LinkInput{
		Imports:            imports,
		UseGlobalNamespace:  s.Package.Name == "",
		PrelinkFiles:        s.prelink,
		Boundary:            s.boundary,
	})
	if err != nil {
		return nil, err
	}

	out := make([]resource.Resource, 0, len(s.resources)+len(linked))
	out = append(out, s.resources...)
	for _, f := range linked {
		out = append(out, resource.Resource{Type: resource.TypeJS, Data: []byte(f.Source), ServePath: f.ServePath})
	}
	return out, nil
}

// effectiveRegistry composes the slice's package's own extensions with every
// immediate dependency package's extensions (ExtensionRegistry composition,
// §4.3). A conflicting extension across two providers is fatal.
func (s *Slice) effectiveRegistry(resolver Resolver) (*registry.Registry, error) {
	deps := make([]*registry.Registry, 0, len(s.Uses))
	for _, edge := range s.Uses {
		pkgName, _ := splitSpec(edge.Spec)
		usedPkg, err := resolver.Resolve(pkgName)
		if err != nil {
			return nil, errs.NewResolutionError("resolve dependency for extension composition", pkgName, err)
		}
		deps = append(deps, usedPkg.Extensions)
	}
	return registry.Merge(s.Package.Extensions, deps...)
}

func (s *Slice) combinedServePath() string {
	if s.Package.Name == "" {
		return ""
	}
	if s.SliceName == "main" {
		return "/packages/" + s.Package.Name + ".js"
	}
	return "/packages/" + s.Package.Name + "." + s.SliceName + ".js"
}

func (s *Slice) describeSelf() string {
	return s.Package.describeSlice(s.SliceName, s.Arch)
}

// SplitUseSpec splits a uses spec ("name" or "name.sliceName") into package
// name and slice name, defaulting to "main". Exported for callers (the
// bundle orchestrator's load-order computation) that need the same
// splitting rule outside a Slice method.
func SplitUseSpec(spec string) (pkgName, sliceName string) {
	return splitSpec(spec)
}

// splitSpec splits a uses spec ("name" or "name.sliceName") into package
// name and slice name, defaulting to "main".
func splitSpec(spec string) (pkgName, sliceName string) {
	if idx := strings.LastIndex(spec, "."); idx != -1 {
		return spec[:idx], spec[idx+1:]
	}
	return spec, "main"
}

func joinServePath(serveRoot, relPath string) string {
	rel := filepath.ToSlash(relPath)
	if serveRoot == "" || serveRoot == "/" {
		return "/" + rel
	}
	return strings.TrimSuffix(serveRoot, "/") + "/" + rel
}

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

var (
	errReentrantCompile       = fmt.Errorf("slice is already compiling (reentrant compile)")
	errMissingTransitiveSlice = fmt.Errorf("missing transitive slice")
)
