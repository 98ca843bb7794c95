// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"buildforge/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "buildforge"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"

	// packageDirsEnvVar is the colon-separated list of additional package
	// root directories (§4.5 / §6 of the build model).
	packageDirsEnvVar = "PACKAGE_DIRS"
)

// ConfigDir returns the buildforge configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level cache state. Callers that want caching can wrap this function.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*BundleOptions, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	v.SetConfigType(ConfigFileExt)

	defaults := DefaultBundleOptions()
	v.SetDefault("output_path", defaults.OutputPath)
	v.SetDefault("node_modules_mode", string(defaults.NodeModulesMode))
	v.SetDefault("library", defaults.Library)
	v.SetDefault("release_stamp", defaults.ReleaseStamp)
	v.SetDefault("minify", defaults.Minify)
	v.SetDefault("test_packages", defaults.TestPackages)

	resolvedPath := ""

	switch {
	case opts.ConfigFilePath != "":
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := mergeTOMLFile(v, opts.ConfigFilePath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Check that the file contains valid TOML syntax").
				WithSuggestion("Verify the configuration values match BundleOptions").
				Wrap(err).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	default:
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}

		tomlPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		localTomlPath := ConfigFileName + "." + ConfigFileExt

		switch {
		case fileExists(tomlPath):
			if err := mergeTOMLFile(v, tomlPath); err != nil {
				return nil, "", issue.NewErrorContext().
					WithOperation("load configuration").
					WithResource(tomlPath).
					WithSuggestion("Check that the file contains valid TOML syntax").
					Wrap(err).
					BuildError()
			}
			resolvedPath = tomlPath
		case fileExists(localTomlPath):
			if err := mergeTOMLFile(v, localTomlPath); err != nil {
				return nil, "", issue.NewErrorContext().
					WithOperation("load configuration").
					WithResource(localTomlPath).
					WithSuggestion("Check that the file contains valid TOML syntax").
					Wrap(err).
					BuildError()
			}
			resolvedPath = localTomlPath
		}
		// If no config file found, use defaults (no error).
	}

	var bundleOpts BundleOptions
	if err := v.Unmarshal(&bundleOpts); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	bundleOpts.PackageDirs = append(bundleOpts.PackageDirs, packageDirsFromEnv()...)

	if opts.AppDir != "" {
		bundleOpts.AppDir = opts.AppDir
	}

	return &bundleOpts, resolvedPath, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// mergeTOMLFile reads a TOML file and merges its contents into Viper.
func mergeTOMLFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.MergeConfig(strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// packageDirsFromEnv splits the PACKAGE_DIRS environment variable on the
// platform's path-list separator, dropping empty entries.
func packageDirsFromEnv() []string {
	raw := os.Getenv(packageDirsEnvVar)
	if raw == "" {
		return nil
	}
	var dirs []string
	for _, dir := range strings.Split(raw, string(os.PathListSeparator)) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(cfgDir, 0o755)
}
