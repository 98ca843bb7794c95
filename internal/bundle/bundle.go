// SPDX-License-Identifier: MPL-2.0

// Package bundle orchestrates a full build: determining load order per
// arch, compiling and linking every package's default slice in that order,
// optionally minifying the concatenated client output, and writing the
// result to an output directory via an atomic rename.
package bundle

import (
	"os"

	"github.com/charmbracelet/log"

	"buildforge/internal/config"
	"buildforge/internal/errs"
	"buildforge/internal/manifest"
	"buildforge/internal/minify"
	"buildforge/internal/pack"
	"buildforge/internal/resource"
	"buildforge/internal/watchmeta"
)

// Options controls one Build call.
type Options struct {
	OutputPath   string
	Minify       bool
	ReleaseStamp string
	TestPackages []string

	// NodeModulesMode controls how third-party packages are materialized
	// under the emitted bundle's server/node_modules and
	// npm/<pkg>/node_modules directories.
	NodeModulesMode config.NodeModulesMode
}

// Result is what Build returns on success.
type Result struct {
	OutputPath string
	Dependency *watchmeta.Info
	Manifest   map[string][]manifest.Entry // keyed by manifest.WhereClient / manifest.WhereInternal
}

// Bundler is the top-level build orchestrator.
type Bundler struct {
	resolver pack.Resolver
	minifier minify.Minifier
	logger   *log.Logger
}

// New constructs a Bundler. A nil minifier defaults to minify.Noop{} (the
// "minification disabled" contract implementation).
func New(resolver pack.Resolver, minifier minify.Minifier, logger *log.Logger) *Bundler {
	if minifier == nil {
		minifier = minify.Noop{}
	}
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "bundle"})
	}
	return &Bundler{resolver: resolver, minifier: minifier, logger: logger}
}

// Build runs the full pipeline for app (the application pseudo-package) and
// writes the result under opts.OutputPath.
func (b *Bundler) Build(app *pack.Package, opts Options) (*Result, error) {
	watch := watchmeta.New()
	perArch := map[pack.Arch]*staged{}
	loadOrders := map[pack.Arch][]string{}

	for _, arch := range pack.Archs {
		order, err := determineLoadOrder(b.resolver, app, arch, pack.RoleUse)
		if err != nil {
			return nil, err
		}
		loadOrders[arch] = order

		s, err := emitResources(b.resolver, app, order, arch, pack.RoleUse, b.logger, watch)
		if err != nil {
			return nil, err
		}
		// Only client output is ever concatenated: server modules are
		// require()'d by path, so collapsing them into one file would break
		// app.json's load ordering.
		if opts.Minify && arch == pack.ArchClient {
			if err := b.minifyStage(s); err != nil {
				return nil, err
			}
		}
		perArch[arch] = s
	}

	for _, testPkgName := range opts.TestPackages {
		pkg, err := b.resolver.Resolve(testPkgName)
		if err != nil {
			return nil, errs.NewResolutionError("resolve test package", testPkgName, err)
		}
		for _, arch := range pack.Archs {
			names := pkg.DefaultSliceNames(pack.RoleTest, arch)
			for _, sliceName := range names {
				slice, ok := pkg.Slice(sliceName, arch)
				if !ok {
					continue
				}
				resources, err := slice.GetResources(b.resolver)
				if err != nil {
					return nil, err
				}
				watch.Merge(slice.DependencyInfo())
				if err := partitionInto(perArch[arch], resources, arch, testPkgName, b.logger); err != nil {
					return nil, err
				}
			}
		}
	}

	manifests := map[string][]manifest.Entry{
		manifest.WhereClient:   buildWhereManifest(manifest.WhereClient, perArch[pack.ArchClient]),
		manifest.WhereInternal: buildWhereManifest(manifest.WhereInternal, perArch[pack.ArchServer]),
	}

	thirdParty, err := collectThirdPartyPackages(b.resolver, loadOrders, opts.TestPackages)
	if err != nil {
		return nil, err
	}

	layout := writeLayout{
		App:                app,
		PerArch:            perArch,
		Manifests:          manifests,
		ReleaseStamp:       opts.ReleaseStamp,
		NodeModulesMode:    opts.NodeModulesMode,
		ThirdPartyPackages: thirdParty,
	}
	if err := writeToDirectory(opts.OutputPath, layout); err != nil {
		return nil, err
	}

	return &Result{OutputPath: opts.OutputPath, Dependency: watch, Manifest: manifests}, nil
}

// collectThirdPartyPackages resolves, in first-seen load order across both
// archs plus any explicitly requested test packages, every package that
// declares at least one third-party dependency — the set the writer must
// materialize under npm/<pkg>/node_modules/.
func collectThirdPartyPackages(resolver pack.Resolver, loadOrders map[pack.Arch][]string, testPackages []string) ([]*pack.Package, error) {
	seen := map[string]bool{}
	var names []string
	for _, arch := range pack.Archs {
		for _, name := range loadOrders[arch] {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range testPackages {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	var pkgs []*pack.Package
	for _, name := range names {
		pkg, err := resolver.Resolve(name)
		if err != nil {
			return nil, errs.NewResolutionError("resolve package for node_modules", name, err)
		}
		if len(pkg.ThirdPartyDeps) > 0 {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs, nil
}

func (b *Bundler) minifyStage(s *staged) error {
	if len(s.JS) > 0 {
		combined := concatenate(s.JS, "\n;\n")
		minified, err := b.minifier.MinifyJS(combined)
		if err != nil {
			return errs.NewResourceError("minify js", "", err)
		}
		s.JS = []resource.Resource{{Type: resource.TypeJS, Data: minified, ServePath: "/main.js", Cacheable: true}}
	}
	if len(s.CSS) > 0 {
		combined := concatenate(s.CSS, "\n")
		minified, err := b.minifier.MinifyCSS(combined)
		if err != nil {
			return errs.NewResourceError("minify css", "", err)
		}
		s.CSS = []resource.Resource{{Type: resource.TypeCSS, Data: minified, ServePath: "/main.css", Cacheable: true}}
	}
	return nil
}

func concatenate(resources []resource.Resource, sep string) []byte {
	var out []byte
	for i, r := range resources {
		if i > 0 {
			out = append(out, []byte(sep)...)
		}
		out = append(out, r.Data...)
	}
	return out
}

func partitionInto(s *staged, resources []resource.Resource, arch pack.Arch, pkgName string, logger *log.Logger) error {
	for _, r := range resources {
		if err := partition(s, r, arch, pkgName, logger); err != nil {
			return err
		}
	}
	return nil
}

func buildWhereManifest(where string, s *staged) []manifest.Entry {
	if s == nil {
		return nil
	}
	var all []resource.Resource
	all = append(all, s.JS...)
	all = append(all, s.CSS...)
	all = append(all, s.Static...)
	return manifest.Build(where, all)
}
