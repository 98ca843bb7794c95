// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"buildforge/internal/bundle"
	"buildforge/internal/config"
	"buildforge/internal/library"
	"buildforge/internal/minify"
	"buildforge/internal/pack"

	"github.com/spf13/cobra"
)

var (
	flagOutput          string
	flagMinify          bool
	flagNodeModulesMode string
	flagRelease         string
	flagTest            []string
	flagAppDir          string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Bundle the application and its packages",
	Long: `Resolves every package the application uses, prelinks and links
each in dependency order for both the client and server architectures,
and writes the result to the configured output directory.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&flagOutput, "output", "", "output directory (overrides config)")
	buildCmd.Flags().BoolVar(&flagMinify, "minify", false, "minify the concatenated client js/css output")
	buildCmd.Flags().StringVar(&flagNodeModulesMode, "node-modules-mode", "", "skip, copy, or symlink (overrides config)")
	buildCmd.Flags().StringVar(&flagRelease, "release", "", "release stamp recorded in app.json")
	buildCmd.Flags().StringSliceVar(&flagTest, "test", nil, "package name whose test slice should be bundled alongside the app (repeatable)")
	buildCmd.Flags().StringVar(&flagAppDir, "app-dir", ".", "application directory to bundle")
}

func runBuild(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	provider := config.NewProvider()
	opts, err := provider.Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile, AppDir: flagAppDir})
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		opts = config.DefaultBundleOptions()
		opts.AppDir = flagAppDir
	}

	applyFlagOverrides(opts)

	if valid, fieldErrs := opts.IsValid(); !valid {
		return &ExitError{Code: 1, Err: joinErrors(fieldErrs)}
	}

	roots := library.Roots(opts.AppDir, opts.Library, opts.PackageDirs)
	lib := library.New(roots, library.NullReleaseManifest{})

	clientApp, err := pack.NewApp(opts.AppDir, "/", pack.ArchClient, pack.RoleUse, appUses(lib))
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	serverApp, err := pack.NewApp(opts.AppDir, "/", pack.ArchServer, pack.RoleUse, appUses(lib))
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	for _, s := range serverApp.AllSlices() {
		if err := clientApp.AddSlice(s); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
	}
	clientApp.SetDefaultSlices(pack.RoleUse, pack.ArchServer, serverApp.DefaultSliceNames(pack.RoleUse, pack.ArchServer))
	app := clientApp

	var minifier minify.Minifier = minify.Noop{}
	if opts.Minify {
		minifier = minify.Default()
	}

	b := bundle.New(lib, minifier, nil)
	result, err := b.Build(app, bundle.Options{
		OutputPath:      opts.OutputPath,
		Minify:          opts.Minify,
		ReleaseStamp:    opts.ReleaseStamp,
		TestPackages:    opts.TestPackages,
		NodeModulesMode: opts.NodeModulesMode,
	})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	printSummary(c, result)
	return nil
}

// appUses returns the implicit use-list for the application pseudo-package:
// every package name the Library can currently see across its configured
// roots, since the application itself never declares its own package.cue.
func appUses(lib *library.Library) []pack.UseEdge {
	names := lib.List()
	uses := make([]pack.UseEdge, 0, len(names))
	for _, name := range names {
		uses = append(uses, pack.UseEdge{Spec: name})
	}
	return uses
}

func applyFlagOverrides(opts *config.BundleOptions) {
	if flagOutput != "" {
		opts.OutputPath = flagOutput
	}
	if flagMinify {
		opts.Minify = true
	}
	if flagNodeModulesMode != "" {
		opts.NodeModulesMode = config.NodeModulesMode(flagNodeModulesMode)
	}
	if flagRelease != "" {
		opts.ReleaseStamp = flagRelease
	}
	if len(flagTest) > 0 {
		opts.TestPackages = flagTest
	}
}

func joinErrors(errs []error) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func printSummary(c *cobra.Command, result *bundle.Result) {
	out := c.OutOrStdout()
	fmt.Fprintln(out, SuccessStyle.Render("✓ build complete"))
	fmt.Fprintln(out, SubtitleStyle.Render("output: ")+HighlightStyle.Render(result.OutputPath))
	for arch, entries := range result.Manifest {
		fmt.Fprintln(out, SubtitleStyle.Render(fmt.Sprintf("%s: %d resource(s)", arch, len(entries))))
	}
	if result.Dependency != nil {
		fmt.Fprintln(out, SubtitleStyle.Render(fmt.Sprintf("tracked %d source file(s) for rebuild watching", len(result.Dependency.FilePaths()))))
	}
}
