// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"regexp"

	"buildforge/internal/scanner"
)

// appExcludePatterns keeps the application scan from wandering into
// directories that are not part of the application's own source tree: the
// local-package root (resolved separately by the Library), the private
// server-only asset root (served, but never scanned as source), the
// already-installed third-party module tree (materialized into the bundle
// by the writer, never treated as application source), and any test-only
// tree when the caller is not building a test slice.
var appExcludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|/)packages/`),
	regexp.MustCompile(`(^|/)private/`),
	regexp.MustCompile(`(^|/)node_modules/`),
}

var appTestExcludePattern = regexp.MustCompile(`(^|/)tests/`)

// AppExtensions lists the extensions the application scan recognizes beyond
// the built-ins; callers merge in whatever local packages additionally
// register.
var AppExtensions = []string{"js", "css", "less", "html", "sh"}

// NewApp constructs the application pseudo-package: its Name is empty, its
// sources come from appDir (excluding the local-package root, the private
// asset root, and, unless role is RoleTest, any tests directory), and its
// default slice for arch depends on uses — ordinarily every locally
// resolvable package's default slice, supplied by the caller after the
// Library has enumerated them.
func NewApp(appDir, serveRoot string, arch Arch, role Role, uses []UseEdge) (*Package, error) {
	app := NewPackage("", appDir, serveRoot, false)

	ignore := append([]*regexp.Regexp{}, appExcludePatterns...)
	if role != RoleTest {
		ignore = append(ignore, appTestExcludePattern)
	}

	sources, err := scanner.Scan(appDir, scanner.Options{
		Extensions: AppExtensions,
		Ignore:     ignore,
	})
	if err != nil {
		return nil, err
	}

	sliceName := "main"
	if role == RoleTest {
		sliceName = "tests"
	}

	slice := NewSlice(sliceName, arch, uses, sources, nil)
	if err := app.AddSlice(slice); err != nil {
		return nil, err
	}
	app.SetDefaultSlices(role, arch, []string{sliceName})

	return app, nil
}
