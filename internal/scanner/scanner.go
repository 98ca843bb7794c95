// SPDX-License-Identifier: MPL-2.0

// Package scanner enumerates candidate source files under a root directory
// in the deterministic order the compilation pipeline depends on: depth-first
// lexicographic order, filtered by ignore patterns, then reordered so every
// .html file precedes the rest. Files are not filtered by extension.
package scanner

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"buildforge/internal/errs"
)

// DefaultIgnorePatterns are always applied in addition to any caller-provided
// patterns. They exclude version-control directories, editor swap files, and
// the framework's local cache.
var DefaultIgnorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|/)\.git(/|$)`),
	regexp.MustCompile(`(^|/)\.meteor/local(/|$)`),
	regexp.MustCompile(`~$`),
	regexp.MustCompile(`(^|/)\.#`),
}

// Options configures a Scan call.
type Options struct {
	// Extensions is the set of recognized extensions (no leading dot). A file
	// whose extension is not in this set, and has no extension-less handler
	// convention, is still returned: extension filtering here only controls
	// which ignore/ordering rules apply upstream — the registry decides
	// per-file handling. Scanner does not drop unrecognized extensions; it
	// returns every non-ignored file.
	Extensions []string

	// Ignore is appended to DefaultIgnorePatterns.
	Ignore []*regexp.Regexp
}

// Scan walks root depth-first in lexicographic order, applies ignore
// patterns, and returns paths relative to root with .html files moved ahead
// of all other files (stable within each group).
//
// A file reached via a symlink that resolves outside root is a fatal IOError.
func Scan(root string, opts Options) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errs.NewIOError("scan source root", root, err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, errs.NewIOError("resolve source root", root, err)
	}

	ignore := append(append([]*regexp.Regexp{}, DefaultIgnorePatterns...), opts.Ignore...)

	var all []string
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if matchesAny(rel, ignore) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 || isSymlink(path) {
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return err
			}
			if !withinRoot(realRoot, realPath) {
				return errs.NewIOError("scan source file", rel, errEscapesRoot)
			}
		}

		all = append(all, rel)
		return nil
	})
	if walkErr != nil {
		if ioErr, ok := walkErr.(*errs.IOError); ok {
			return nil, ioErr
		}
		return nil, errs.NewIOError("scan source root", root, walkErr)
	}

	sort.Strings(all)
	return reorderHTMLFirst(all), nil
}

// reorderHTMLFirst moves every .html entry ahead of all other entries,
// preserving relative order within each group.
func reorderHTMLFirst(paths []string) []string {
	html := make([]string, 0, len(paths))
	rest := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.HasSuffix(p, ".html") {
			html = append(html, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(html, rest...)
}

func matchesAny(rel string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

func withinRoot(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
