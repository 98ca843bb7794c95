// SPDX-License-Identifier: MPL-2.0

// Package watchmeta describes the dependency-watch information a build
// reports back to its caller: the files and directories it read while
// assembling the bundle, so an external file watcher can decide when to
// trigger a rebuild. This package holds no file-watching logic of its own.
package watchmeta

import (
	"regexp"
	"sort"

	"buildforge/internal/pack"
)

// DirWatch mirrors pack.DirWatch for the merged, bundle-wide view.
type DirWatch struct {
	Include []*regexp.Regexp
	Exclude []*regexp.Regexp
}

// Info is the accumulated dependency-watch metadata for an entire bundle
// build: every file read (mapped to its content hash) and every directory
// whose listing was consulted.
type Info struct {
	Files       map[string]string
	Directories map[string]DirWatch
}

// New returns an empty Info.
func New() *Info {
	return &Info{Files: map[string]string{}, Directories: map[string]DirWatch{}}
}

// Merge folds a slice's compile-time dependency info into the bundle-wide
// Info. A file hash recorded more than once (the same source shared by two
// slices) must agree; a mismatch is a bug in the caller, not a condition
// this package recovers from, so the later write simply wins.
func (i *Info) Merge(dep pack.DependencyInfo) {
	for path, hash := range dep.Files {
		i.Files[path] = hash
	}
	for dir, w := range dep.Directories {
		i.Directories[dir] = DirWatch{Include: w.Include, Exclude: w.Exclude}
	}
}

// FilePaths returns every watched file path in sorted order, for
// deterministic reporting.
func (i *Info) FilePaths() []string {
	paths := make([]string, 0, len(i.Files))
	for p := range i.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
