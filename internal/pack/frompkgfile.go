// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"os"
	"path/filepath"

	"buildforge/internal/errs"
	"buildforge/internal/handler"
	"buildforge/internal/pkgfile"
	"buildforge/internal/registry"
)

// FromDirectory constructs a Package from a directory containing a
// package.cue file. serveRoot is the logical base path this package's
// resources are served under ("/packages/<name>"). inWarehouse records
// whether sourceRoot is a release-warehouse checkout, passed explicitly by
// the caller rather than set after construction.
func FromDirectory(sourceRoot, serveRoot string, inWarehouse bool) (*Package, error) {
	declPath := filepath.Join(sourceRoot, pkgfile.FileName)
	data, err := os.ReadFile(declPath)
	if err != nil {
		return nil, errs.NewIOError("read package declaration", declPath, err)
	}

	decl, err := pkgfile.Parse(data, declPath)
	if err != nil {
		return nil, err
	}

	p := NewPackage(decl.Name, sourceRoot, serveRoot, inWarehouse)
	p.Metadata["summary"] = decl.Summary
	if decl.Internal {
		p.Metadata["internal"] = "true"
	}
	p.ThirdPartyDeps = decl.Depends

	for ext, provider := range decl.RegisterExtension {
		if err := p.Extensions.Register(ext, decl.Name, handlerFor(provider)); err != nil {
			return nil, err
		}
	}

	for _, arch := range Archs {
		if err := addRoleSlices(p, decl.OnUse, RoleUse, arch); err != nil {
			return nil, err
		}
		if decl.OnTest != nil {
			if err := addRoleSlices(p, decl.OnTest, RoleTest, arch); err != nil {
				return nil, err
			}
		}
	}

	return p, nil
}

// addRoleSlices builds the single "main" slice for role/arch from a
// package.cue SliceDecl, prepending the implicit framework-root dependency
// per the rule: every slice gets it except the framework-root package's own
// "use" slice, and except when the package already lists it (a package may
// mark that edge unordered to break the cycle this implies).
func addRoleSlices(p *Package, decl *pkgfile.SliceDecl, role Role, arch Arch) error {
	var uses []UseEdge
	var sources []string
	var forceExport []string

	if decl != nil {
		for _, u := range decl.Use {
			if !appliesToArch(u.Where, arch) {
				continue
			}
			for _, name := range u.Names {
				uses = append(uses, UseEdge{Spec: name, Unordered: u.Unordered})
			}
		}
		for _, af := range decl.AddFiles {
			if !appliesToArch(af.Where, arch) {
				continue
			}
			sources = append(sources, af.Paths...)
		}
		for _, es := range decl.ExportSymbol {
			if !appliesToArch(es.Where, arch) {
				continue
			}
			forceExport = append(forceExport, es.Symbols...)
		}
	}

	if !(role == RoleUse && p.Name == FrameworkRootPackage) && !hasRootDependency(uses) {
		uses = append([]UseEdge{{Spec: FrameworkRootPackage}}, uses...)
	}

	sliceName := "main"
	if role == RoleTest {
		sliceName = "tests"
	}

	slice := NewSlice(sliceName, arch, uses, sources, forceExport)
	if err := p.AddSlice(slice); err != nil {
		return err
	}
	p.SetDefaultSlices(role, arch, []string{sliceName})
	return nil
}

func hasRootDependency(uses []UseEdge) bool {
	for _, u := range uses {
		name, _ := splitSpec(u.Spec)
		if name == FrameworkRootPackage {
			return true
		}
	}
	return false
}

func appliesToArch(where []pkgfile.Where, arch Arch) bool {
	if len(where) == 0 {
		return true
	}
	for _, w := range where {
		if string(w) == string(arch) {
			return true
		}
	}
	return false
}

// handlerFor maps a registerExtension provider tag ("js", "css", "html",
// "sh") to a built-in handler. Any other tag, "static" included, maps to
// Static.
func handlerFor(provider string) registry.Handler {
	switch provider {
	case "js":
		return handler.JS
	case "css":
		return handler.CSS
	case "html":
		return handler.HTML
	case "sh":
		return handler.Shell
	default:
		return handler.Static
	}
}
