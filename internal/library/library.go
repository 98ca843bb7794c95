// SPDX-License-Identifier: MPL-2.0

// Package library implements pack.Resolver: it locates, parses, and caches
// Packages by name, searching local directory roots before falling back to
// a release manifest lookup.
package library

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"buildforge/internal/errs"
	"buildforge/internal/pack"
)

// ReleaseManifest looks up a released package's exact version and its
// warehouse checkout path. Package-source acquisition (the warehouse
// itself) is out of scope; this interface exists so a caller that does have
// warehouse access can plug it in without the Library needing to know how
// downloads work.
type ReleaseManifest interface {
	Lookup(name string) (version, warehousePath string, ok bool)
}

// NullReleaseManifest always reports a miss; it is the default used when no
// release manifest is configured.
type NullReleaseManifest struct{}

func (NullReleaseManifest) Lookup(string) (string, string, bool) { return "", "", false }

// Library resolves package names to Packages, caching results and letting
// preloaded packages override anything that would otherwise be found on
// disk or in the release manifest.
type Library struct {
	roots    []string
	manifest ReleaseManifest

	preloaded map[string]*pack.Package
	cache     map[string]*pack.Package
}

// New constructs a Library. roots is the ordered list of local directories
// to search, earliest first; manifest is consulted only after every root
// has been tried. A nil manifest is replaced with NullReleaseManifest.
func New(roots []string, manifest ReleaseManifest) *Library {
	if manifest == nil {
		manifest = NullReleaseManifest{}
	}
	return &Library{
		roots:     roots,
		manifest:  manifest,
		preloaded: map[string]*pack.Package{},
		cache:     map[string]*pack.Package{},
	}
}

// Roots builds the standard resolution-order root list: the application's
// own packages/ directory, then the config-file library roots, then the
// PACKAGE_DIRS environment roots, in that order (earlier root wins on a
// name collision).
func Roots(appDir string, configLibraryRoots, envPackageDirs []string) []string {
	roots := make([]string, 0, 2+len(configLibraryRoots)+len(envPackageDirs))
	if appDir != "" {
		roots = append(roots, filepath.Join(appDir, "packages"))
	}
	roots = append(roots, configLibraryRoots...)
	roots = append(roots, envPackageDirs...)
	return roots
}

// Preload registers pkg as the definitive answer for packageName, taking
// precedence over anything Resolve would otherwise find on disk or in the
// release manifest. Used by callers that construct a package in memory
// (e.g. the application pseudo-package) without a corresponding directory.
func (l *Library) Preload(packageName string, pkg *pack.Package) {
	l.preloaded[packageName] = pkg
	delete(l.cache, packageName)
}

// Resolve implements pack.Resolver.
func (l *Library) Resolve(name string) (*pack.Package, error) {
	if p, ok := l.preloaded[name]; ok {
		return p, nil
	}
	if p, ok := l.cache[name]; ok {
		return p, nil
	}

	for _, root := range l.roots {
		dir := filepath.Join(root, name)
		if !isPackageDir(dir) {
			continue
		}
		p, err := pack.FromDirectory(dir, "/packages/"+name, false)
		if err != nil {
			return nil, err
		}
		l.cache[name] = p
		return p, nil
	}

	if version, warehousePath, ok := l.manifest.Lookup(name); ok {
		p, err := pack.FromDirectory(warehousePath, "/packages/"+name, true)
		if err != nil {
			return nil, err
		}
		p.Metadata["version"] = version
		l.cache[name] = p
		return p, nil
	}

	return nil, errs.NewResolutionError("resolve package", name, errPackageNotFound)
}

// Flush drops every cached (non-preloaded) package, forcing the next
// Resolve call for each name to re-read from disk or the release manifest.
func (l *Library) Flush() {
	l.cache = map[string]*pack.Package{}
}

// List enumerates every package name visible across the configured roots,
// each name reported once however many roots contain it, sorted
// alphabetically. Preloaded names are always included.
func (l *Library) List() []string {
	seen := map[string]bool{}
	var names []string

	for name := range l.preloaded {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, root := range l.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if seen[e.Name()] {
				continue
			}
			if !isPackageDir(filepath.Join(root, e.Name())) {
				continue
			}
			seen[e.Name()] = true
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)
	return names
}

func isPackageDir(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "package.cue"))
	return err == nil
}

var errPackageNotFound = errors.New("package not found in any configured root or release manifest")
