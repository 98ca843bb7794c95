// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the buildforge command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"buildforge/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables the full error chain in diagnostic output.
	verbose bool
	// cfgFile overrides the config file lookup when set.
	cfgFile string

	// rootCmd is the base command when buildforge is called without args.
	rootCmd = &cobra.Command{
		Use:   "buildforge",
		Short: "A package-oriented build and bundling engine",
		Long: TitleStyle.Render("buildforge") + SubtitleStyle.Render(" - bundles an application and its packages into a deployable build") + `

Applications are composed of packages, each declared by a package.cue
file. Packages are resolved, prelinked, linked in dependency order, and
emitted into a client/server bundle under an output directory.

` + SubtitleStyle.Render("Examples:") + `
  buildforge build                     Build using config.toml (or defaults)
  buildforge build --output ./dist     Build into a specific output directory
  buildforge build --minify            Minify the concatenated client output
  buildforge build --test auth         Include the "auth" package's test slice`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show the full error chain on failure")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/buildforge/config.toml)")

	rootCmd.AddCommand(buildCmd)
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay renders err for the terminal, using the richer
// operation/resource/suggestion shape when available.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
