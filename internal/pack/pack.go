// SPDX-License-Identifier: MPL-2.0

// Package pack implements the Package/Slice data model: a Package is a named
// collection of Slices plus metadata, extension handlers, and a third-party
// module manifest; a Slice is the (package, role, arch) compile/link unit.
//
// Package and Slice are defined together because slice compilation needs
// direct access to its owning package's extension registry, and slice
// resource emission needs to recursively resolve and compile the slices of
// every package it uses — the two types are inseparable in practice, exactly
// as the specification describes them.
package pack

import (
	"errors"
	"sort"
	"sync/atomic"

	"buildforge/internal/errs"
	"buildforge/internal/registry"
)

// Arch is a target environment.
type Arch string

const (
	ArchClient Arch = "client"
	ArchServer Arch = "server"
)

// Archs lists every recognized arch, in the order the pipeline iterates them.
var Archs = []Arch{ArchServer, ArchClient}

// Role is the purpose of a slice.
type Role string

const (
	RoleUse  Role = "use"
	RoleTest Role = "test"
)

// FrameworkRootPackage is the framework-root package name. Every slice
// except those belonging to this package (in role "use") gets an implicit
// dependency on it prepended, unless the package already declares one.
const FrameworkRootPackage = "meteor"

// UseEdge is a single declared dependency of a slice on another package's
// "use" slice at the same arch.
type UseEdge struct {
	// Spec is "name" (the package's default slice for this role) or
	// "name.sliceName" (an explicit slice).
	Spec string

	// Unordered, when true, excludes this edge from load-order constraints
	// and from import-map contribution.
	Unordered bool
}

var packageIDCounter atomic.Int64

// Package is a named collection of Slices plus metadata, extension handlers,
// and a third-party-module manifest. An application pseudo-package has an
// empty Name.
type Package struct {
	// ID is a stable process-unique identifier.
	ID int64

	// Name is empty for an application pseudo-package.
	Name string

	// SourceRoot is the filesystem base for source resolution.
	SourceRoot string

	// ServeRoot is the logical base path under which this package's served
	// resources live.
	ServeRoot string

	// Metadata maps descriptor keys ("summary", "internal") to values.
	Metadata map[string]string

	// Extensions maps extension (no leading dot) to handler, registered
	// locally by this package only (composition with dependencies happens
	// per-slice at compile time; see ExtensionRegistry composition).
	Extensions *registry.Registry

	// ThirdPartyDeps maps a dependency name to an exact version string.
	ThirdPartyDeps map[string]string

	// InWarehouse records whether this package's sources came from the
	// release warehouse rather than a local root, skipping third-party
	// re-installation. Always passed as a constructor argument, never set
	// after the fact by the Library (resolves the layering break noted in
	// the specification's open questions).
	InWarehouse bool

	slices        map[sliceKey]*Slice
	defaultSlices map[Arch][]string
	testSlices    map[Arch][]string
}

type sliceKey struct {
	name string
	arch Arch
}

// NewPackage constructs an empty Package shell; callers populate Extensions,
// ThirdPartyDeps, and Slices (via AddSlice) before first use.
func NewPackage(name, sourceRoot, serveRoot string, inWarehouse bool) *Package {
	return &Package{
		ID:            packageIDCounter.Add(1),
		Name:          name,
		SourceRoot:    sourceRoot,
		ServeRoot:     serveRoot,
		Metadata:      map[string]string{},
		Extensions:    registry.New(),
		ThirdPartyDeps: map[string]string{},
		InWarehouse:   inWarehouse,
		slices:        map[sliceKey]*Slice{},
		defaultSlices: map[Arch][]string{},
		testSlices:    map[Arch][]string{},
	}
}

// AddSlice registers a slice under (sliceName, arch). It is an error to
// register the same key twice.
func (p *Package) AddSlice(s *Slice) error {
	key := sliceKey{s.SliceName, s.Arch}
	if _, exists := p.slices[key]; exists {
		return errs.NewConfigurationError("add slice", p.describeSlice(s.SliceName, s.Arch),
			errDuplicateSlice)
	}
	s.Package = p
	p.slices[key] = s
	return nil
}

// Slice looks up a previously added slice. A missing slice that a caller
// expected to already exist (e.g. a transitive dependency) is a fatal bug,
// per the specification; Slice itself just reports not-found and leaves the
// fatality decision to the caller.
func (p *Package) Slice(sliceName string, arch Arch) (*Slice, bool) {
	s, ok := p.slices[sliceKey{sliceName, arch}]
	return s, ok
}

// SetDefaultSlices records the ordered slice names selected when the package
// is referenced without a qualifier, for the given role and arch.
func (p *Package) SetDefaultSlices(role Role, arch Arch, names []string) {
	if role == RoleTest {
		p.testSlices[arch] = names
		return
	}
	p.defaultSlices[arch] = names
}

// DefaultSliceNames returns the default slice names for role/arch.
func (p *Package) DefaultSliceNames(role Role, arch Arch) []string {
	if role == RoleTest {
		return p.testSlices[arch]
	}
	return p.defaultSlices[arch]
}

// AllSlices returns every registered slice in deterministic order (by slice
// name then arch), used by callers that need reproducible iteration.
func (p *Package) AllSlices() []*Slice {
	keys := make([]sliceKey, 0, len(p.slices))
	for k := range p.slices {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].arch < keys[j].arch
	})
	out := make([]*Slice, 0, len(keys))
	for _, k := range keys {
		out = append(out, p.slices[k])
	}
	return out
}

func (p *Package) describeSlice(name string, arch Arch) string {
	if p.Name == "" {
		return "<app>." + name + "." + string(arch)
	}
	return p.Name + "." + name + "." + string(arch)
}

var errDuplicateSlice = errors.New("slice already registered under this (name, arch) pair")
