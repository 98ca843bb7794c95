// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"buildforge/internal/config"
	"buildforge/internal/errs"
	"buildforge/internal/manifest"
	"buildforge/internal/pack"
	"buildforge/internal/resource"
)

// writeLayout bundles everything writeToDirectory needs beyond the staging
// path itself, gathered once in Bundler.Build.
type writeLayout struct {
	App                *pack.Package
	PerArch            map[pack.Arch]*staged
	Manifests          map[string][]manifest.Entry
	ReleaseStamp       string
	NodeModulesMode    config.NodeModulesMode
	ThirdPartyPackages []*pack.Package
}

// appJSONDoc is app.json's shape: the ordered server load list, the
// combined client+internal manifest, and an optional release stamp.
type appJSONDoc struct {
	Load     []string         `json:"load"`
	Manifest []manifest.Entry `json:"manifest"`
	Release  string           `json:"release,omitempty"`
}

// writeToDirectory lays out the build's output into a temporary
// `.build.<basename>` directory beside finalPath, then atomically renames it
// into place — the same discipline the third-party lockfile writer uses for
// a single file, scaled up to a directory tree so a reader never observes a
// partially-written build.
func writeToDirectory(finalPath string, l writeLayout) error {
	base := filepath.Base(finalPath)
	parent := filepath.Dir(finalPath)
	tmp := filepath.Join(parent, ".build."+base)

	if err := os.RemoveAll(tmp); err != nil {
		return errs.NewIOError("clear stale build staging directory", tmp, err)
	}
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return errs.NewIOError("create build staging directory", tmp, err)
	}

	client := l.PerArch[pack.ArchClient]
	server := l.PerArch[pack.ArchServer]

	if client != nil {
		if err := writeClientAssets(tmp, client); err != nil {
			return err
		}
	}

	var loadList []string
	if server != nil {
		list, err := writeServerApp(tmp, server)
		if err != nil {
			return err
		}
		loadList = list
	}

	if err := writeServerRunner(tmp); err != nil {
		return err
	}
	if err := writeMainJS(tmp); err != nil {
		return err
	}
	if err := writeNodeModules(tmp, l.App, l.ThirdPartyPackages, l.NodeModulesMode); err != nil {
		return err
	}
	if err := writeAppHTML(tmp, client, l.Manifests[manifest.WhereClient]); err != nil {
		return err
	}
	if err := writeAppJSON(tmp, loadList, l.Manifests, l.ReleaseStamp); err != nil {
		return err
	}
	if err := writeReadme(tmp); err != nil {
		return err
	}

	if err := os.RemoveAll(finalPath); err != nil {
		return errs.NewIOError("clear previous build output", finalPath, err)
	}
	if err := os.Rename(tmp, finalPath); err != nil {
		return errs.NewIOError("finalize build output", finalPath, err)
	}
	return nil
}

// writeClientAssets writes every client resource either to static/ (served
// as-is, cache-busted via the manifest's query string) or, for the handful
// the minify stage actually concatenated, to static_cacheable/ under their
// content-addressed name — matching exactly what the manifest claims for
// each resource.
func writeClientAssets(tmp string, s *staged) error {
	for _, r := range s.JS {
		if err := writeClientResource(tmp, r); err != nil {
			return err
		}
	}
	for _, r := range s.CSS {
		if err := writeClientResource(tmp, r); err != nil {
			return err
		}
	}
	for _, r := range s.Static {
		if err := writeClientResource(tmp, r); err != nil {
			return err
		}
	}
	return nil
}

func writeClientResource(tmp string, r resource.Resource) error {
	if r.Cacheable {
		name := manifest.Hash(r.Data) + path.Ext(r.ServePath)
		return writeFileAt(filepath.Join(tmp, "static_cacheable", name), r.Data)
	}
	return writeUnder(tmp, "static", r)
}

// writeServerApp writes every server-arch resource under app/<relPath>,
// preserving emission (load) order, and returns the "app/<relPath>" list for
// js resources only — the ordering app.json.load records, since only js
// files are ever require()'d directly.
func writeServerApp(tmp string, s *staged) ([]string, error) {
	var load []string
	for _, r := range s.JS {
		relPath := appRelPath(r.ServePath)
		if err := writeFileAt(filepath.Join(tmp, "app", filepath.FromSlash(relPath)), r.Data); err != nil {
			return nil, err
		}
		load = append(load, "app/"+relPath)
	}
	for _, r := range s.Static {
		if err := writeUnder(tmp, "app", r); err != nil {
			return nil, err
		}
	}
	return load, nil
}

func appRelPath(servePath string) string {
	return strings.TrimPrefix(path.Clean("/"+servePath), "/")
}

// writeServerRunner writes the actual server bootstrap logic: read app.json
// and require() every listed file, in order. main.js stays a one-liner that
// merely hands off to this.
func writeServerRunner(tmp string) error {
	runner := `var fs = require("fs");
var path = require("path");
var appJSON = JSON.parse(fs.readFileSync(path.join(__dirname, "..", "app.json"), "utf8"));
appJSON.load.forEach(function (relPath) {
	require(path.join(__dirname, "..", relPath));
});
`
	return writeFileAt(filepath.Join(tmp, "server", "runner.js"), []byte(runner))
}

// writeMainJS writes the one-line launcher spec.md's output layout names.
func writeMainJS(tmp string) error {
	return writeFileAt(filepath.Join(tmp, "main.js"), []byte(`require("./server/runner.js");`+"\n"))
}

// writeNodeModules materializes the application's own node_modules (if any)
// under server/node_modules, and each third-party-dependent package's
// node_modules under npm/<pkg>/node_modules, per mode. Acquiring modules
// that were never installed locally is out of scope: a missing source
// node_modules directory is silently skipped rather than an error.
func writeNodeModules(tmp string, app *pack.Package, pkgs []*pack.Package, mode config.NodeModulesMode) error {
	if mode == config.NodeModulesSkip {
		return nil
	}
	if app != nil {
		if err := materializeNodeModules(app.SourceRoot, filepath.Join(tmp, "server", "node_modules"), mode); err != nil {
			return err
		}
	}
	for _, pkg := range pkgs {
		dest := filepath.Join(tmp, "npm", pkg.Name, "node_modules")
		if err := materializeNodeModules(pkg.SourceRoot, dest, mode); err != nil {
			return err
		}
	}
	return nil
}

func materializeNodeModules(sourceRoot, dest string, mode config.NodeModulesMode) error {
	src := filepath.Join(sourceRoot, "node_modules")
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return nil
	}

	switch mode {
	case config.NodeModulesCopy:
		if err := copyDir(src, dest); err != nil {
			return errs.NewIOError("copy node_modules", src, err)
		}
	case config.NodeModulesSymlink:
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errs.NewIOError("create node_modules parent directory", filepath.Dir(dest), err)
		}
		if err := os.Symlink(src, dest); err != nil {
			return errs.NewIOError("symlink node_modules", src, err)
		}
	}
	return nil
}

// copyDir recursively copies a directory, skipping symlinks for security.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := entry.Info()
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, srcInfo.Mode())
}

func writeUnder(tmp, subdir string, r resource.Resource) error {
	servePath := r.ServePath
	if servePath == "" {
		servePath = "/resource"
	}
	dest := filepath.Join(tmp, subdir, filepath.FromSlash(strings.TrimPrefix(path.Clean("/"+servePath), "/")))
	return writeFileAt(dest, r.Data)
}

func writeFileAt(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errs.NewIOError("create build output directory", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return errs.NewIOError("write build output file", dest, err)
	}
	return nil
}

// writeAppHTML templates app.html with client head/body fragments plus a
// <link>/<script> tag per client css/js manifest entry, each pointing at the
// manifest's own URL (cache-busted or content-addressed, whichever applies).
func writeAppHTML(tmp string, client *staged, clientManifest []manifest.Entry) error {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	if client != nil {
		for _, h := range client.Head {
			b.Write(h.Data)
			b.WriteString("\n")
		}
	}
	for _, e := range clientManifest {
		if e.Type == string(resource.TypeCSS) {
			fmt.Fprintf(&b, "<link rel=\"stylesheet\" href=%q>\n", e.URL)
		}
	}
	b.WriteString("</head>\n<body>\n")
	if client != nil {
		for _, bd := range client.Body {
			b.Write(bd.Data)
			b.WriteString("\n")
		}
	}
	for _, e := range clientManifest {
		if e.Type == string(resource.TypeJS) {
			fmt.Fprintf(&b, "<script src=%q></script>\n", e.URL)
		}
	}
	b.WriteString("</body>\n</html>\n")
	return writeFileAt(filepath.Join(tmp, "app.html"), []byte(b.String()))
}

// writeAppJSON writes the single manifest file the bundle carries: server
// load order, the combined client+internal resource manifest, and an
// optional release stamp.
func writeAppJSON(tmp string, loadList []string, manifests map[string][]manifest.Entry, releaseStamp string) error {
	var all []manifest.Entry
	all = append(all, manifests[manifest.WhereClient]...)
	all = append(all, manifests[manifest.WhereInternal]...)

	doc := appJSONDoc{Load: loadList, Manifest: all}
	if releaseStamp != "" && releaseStamp != config.ReleaseStampNone {
		doc.Release = releaseStamp
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errs.NewIOError("encode app.json", "", err)
	}
	return writeFileAt(filepath.Join(tmp, "app.json"), data)
}

func writeReadme(tmp string) error {
	readme := "This is a generated bundle. Run main.js under node to start the server " +
		"half; app.json carries the server load order, the full resource " +
		"manifest, and the release stamp.\n"
	return writeFileAt(filepath.Join(tmp, "README"), []byte(readme))
}
