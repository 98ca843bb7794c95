// SPDX-License-Identifier: MPL-2.0

// Package config handles bundler configuration using Viper with TOML as the
// file format.
//
// Configuration is loaded from ~/.config/buildforge/config.toml (or XDG
// equivalent on Linux, ~/Library/Application Support/buildforge/config.toml
// on macOS, %APPDATA%\buildforge\config.toml on Windows). The package
// resolves BundleOptions: output path, node_modules handling mode, library
// roots, release stamp, minification toggle, and the set of test packages to
// include, overlaying the PACKAGE_DIRS environment variable on top of
// whatever the config file declares.
package config
