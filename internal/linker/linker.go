// SPDX-License-Identifier: MPL-2.0

// Package linker implements the two-phase symbol-resolution transform that
// binds intra-package and inter-package JavaScript symbols.
//
// Prelink runs once per package, independent of which other packages end up
// in a given bundle, so its output is cacheable. Link runs per-bundle because
// the import map depends on the concrete set of dependencies chosen for this
// bundle build.
package linker

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"buildforge/internal/errs"
)

// Fragment is a single source-and-destination pair flowing through the
// linker. Source holds the (possibly already handler-transformed) text;
// ServePath is where it will be served from.
type Fragment struct {
	Source    string
	ServePath string
}

// PrelinkInput is what Slice.compile passes to Prelink after partitioning a
// slice's emitted resources into the js-fragment list.
type PrelinkInput struct {
	Fragments []Fragment

	// PackageName is empty for an application pseudo-package.
	PackageName string

	// ForceExport lists symbols to export unconditionally, regardless of
	// whether the source carries an export directive.
	ForceExport []string

	// UseGlobalNamespace is true for application-mode prelink: symbols stay
	// on the shared global namespace and are not collected as exports.
	UseGlobalNamespace bool

	// CombinedServePath, when UseGlobalNamespace is false, is where the
	// merged package fragment is served from (e.g. "/packages/foo.js").
	CombinedServePath string

	// ImportStubServePath names the serve path reserved for the generated
	// import stub; Prelink does not read it.
	ImportStubServePath string
}

// PrelinkOutput is Prelink's result, stored on the Slice until Link runs.
type PrelinkOutput struct {
	Files    []Fragment
	Boundary string
	Exports  []string
}

// exportDirective is the per-source marker a handler may emit ahead of a
// top-level declaration to request export regardless of ForceExport.
const exportDirective = "@export "

// Prelink performs phase 1: it scopes each fragment's top-level declarations
// and discovers the slice's export set, embedding a unique boundary marker at
// the splice point where Link will later inject the import prelude.
func Prelink(in PrelinkInput) (*PrelinkOutput, error) {
	boundary, err := newBoundary(in.Fragments)
	if err != nil {
		return nil, errs.NewLinkerError("generate prelink boundary", in.PackageName, err)
	}

	exportSet := newOrderedSet(in.ForceExport)

	var files []Fragment
	var combined strings.Builder

	for _, f := range in.Fragments {
		body, exported := scopeFragment(f.Source, in.PackageName, in.UseGlobalNamespace, in.ForceExport)
		if !in.UseGlobalNamespace {
			exportSet.addAll(exported)
		}

		scoped := boundary + "\n" + body

		if in.UseGlobalNamespace || in.CombinedServePath == "" {
			files = append(files, Fragment{Source: scoped, ServePath: f.ServePath})
			continue
		}
		combined.WriteString(scoped)
		combined.WriteString("\n")
	}

	if !in.UseGlobalNamespace && in.CombinedServePath != "" && combined.Len() > 0 {
		files = []Fragment{{Source: combined.String(), ServePath: in.CombinedServePath}}
	}

	var exports []string
	if !in.UseGlobalNamespace {
		exports = exportSet.values()
		// A package's public namespace object is declared exactly once, ahead
		// of every fragment that attaches an exported symbol to it.
		if in.PackageName != "" && len(exports) > 0 && len(files) > 0 {
			files[0].Source = namespaceDecl(in.PackageName) + files[0].Source
		}
	}

	return &PrelinkOutput{
		Files:    files,
		Boundary: boundary,
		Exports:  exports,
	}, nil
}

// LinkInput is what Slice.getResources passes to Link once the import map for
// this bundle has been computed.
type LinkInput struct {
	// Imports maps an imported symbol to the name of the package that
	// supplies it. Symbol collisions are resolved before this call: the
	// caller is responsible for the "later uses entry wins" tie-break.
	Imports map[string]string

	UseGlobalNamespace bool
	PrelinkFiles       []Fragment
	Boundary           string
}

// Link performs phase 2: it replaces every occurrence of Boundary in each
// prelinked fragment with a generated prelude binding each imported symbol to
// <SupplyingPackage>.<symbol>.
func Link(in LinkInput) ([]Fragment, error) {
	if in.Boundary == "" {
		return nil, errs.NewLinkerError("link fragments", "", errMissingBoundary)
	}

	prelude := buildPrelude(in.Imports)

	out := make([]Fragment, 0, len(in.PrelinkFiles))
	for _, f := range in.PrelinkFiles {
		if !strings.Contains(f.Source, in.Boundary) {
			return nil, errs.NewLinkerError("link fragment", f.ServePath, errMissingBoundary)
		}
		spliced := strings.ReplaceAll(f.Source, in.Boundary, prelude)
		out = append(out, Fragment{Source: spliced, ServePath: f.ServePath})
	}
	return out, nil
}

func buildPrelude(imports map[string]string) string {
	if len(imports) == 0 {
		return ""
	}
	names := make([]string, 0, len(imports))
	for sym := range imports {
		names = append(names, sym)
	}
	orderedSort(names)

	var b strings.Builder
	for _, sym := range names {
		fmt.Fprintf(&b, "var %s = %s.%s;\n", sym, imports[sym], sym)
	}
	return b.String()
}

// scopeFragment wraps body in a local scope, returns the subset of top-level
// export directives found (for the caller to fold into the slice's export
// set), and — per the prelink rule that an exported declaration is "also
// attached to the package's public namespace" — emits `<pkg>.<Sym> =
// <Sym>;` inside the closure for every directive-exported symbol plus any
// forceExport candidate this fragment actually declares. Application mode
// (useGlobalNamespace) skips all of this: symbols stay on the shared global
// scope and are never collected as exports.
func scopeFragment(source, packageName string, useGlobalNamespace bool, forceExport []string) (body string, exported []string) {
	if useGlobalNamespace {
		return source, nil
	}

	lines := strings.Split(source, "\n")
	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if name, ok := strings.CutPrefix(trimmed, exportDirective); ok {
			exported = append(exported, strings.TrimSpace(name))
			continue
		}
		kept = append(kept, line)
	}
	inner := strings.Join(kept, "\n")

	attach := newOrderedSet(exported)
	for _, cand := range forceExport {
		if declaresSymbol(inner, cand) {
			attach.addAll([]string{cand})
		}
	}

	var b strings.Builder
	b.WriteString("(function(){\n")
	b.WriteString(inner)
	b.WriteString("\n")
	for _, name := range attach.values() {
		fmt.Fprintf(&b, "%s.%s = %s;\n", packageName, name, name)
	}
	b.WriteString("})();")

	return b.String(), exported
}

// namespaceDecl declares a package's public namespace object once, reusing
// whatever the global already holds if this package's fragments happen to
// load more than once (defensive against duplicate script inclusion, not a
// case the bundler itself produces).
func namespaceDecl(pkg string) string {
	return fmt.Sprintf("var %s = (typeof %s !== \"undefined\" ? %s : {});\n", pkg, pkg, pkg)
}

// declaresSymbol reports whether body contains a top-level var/let/const/
// function declaration of name, used to decide whether a forceExport
// candidate is attachable from this particular fragment.
func declaresSymbol(body, name string) bool {
	if name == "" {
		return false
	}
	pattern := `(?m)^\s*(?:var|let|const|function)\s+` + regexp.QuoteMeta(name) + `\b`
	return regexp.MustCompile(pattern).MatchString(body)
}

// newBoundary generates a textual marker guaranteed not to collide with any
// fragment's source text.
func newBoundary(fragments []Fragment) (string, error) {
	for attempt := 0; attempt < 8; attempt++ {
		candidate, err := randomBoundary()
		if err != nil {
			return "", err
		}
		if !collidesWithAny(candidate, fragments) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not generate a collision-free boundary after 8 attempts")
}

func collidesWithAny(candidate string, fragments []Fragment) bool {
	for _, f := range fragments {
		if strings.Contains(f.Source, candidate) {
			return true
		}
	}
	return false
}

func randomBoundary() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "/*__buildforge_boundary_" + hex.EncodeToString(buf) + "__*/", nil
}

var errMissingBoundary = fmt.Errorf("prelink fragment is missing its boundary marker")
