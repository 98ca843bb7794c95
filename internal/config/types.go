// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

const (
	// NodeModulesSkip omits node_modules from the emitted bundle entirely.
	NodeModulesSkip NodeModulesMode = "skip"
	// NodeModulesCopy copies resolved third-party packages into the output.
	NodeModulesCopy NodeModulesMode = "copy"
	// NodeModulesSymlink symlinks resolved third-party packages into the output.
	NodeModulesSymlink NodeModulesMode = "symlink"

	// ReleaseStampNone indicates the bundle carries no release stamp.
	ReleaseStampNone = "none"
)

var (
	// ErrInvalidNodeModulesMode is returned when a NodeModulesMode value is not recognized.
	ErrInvalidNodeModulesMode = errors.New("invalid node_modules mode")
	// ErrInvalidBundleOptions is the sentinel error wrapped by InvalidBundleOptionsError.
	ErrInvalidBundleOptions = errors.New("invalid bundle options")
)

type (
	// NodeModulesMode specifies how third-party packages are materialized
	// under the emitted bundle's npm/<pkg>/node_modules directories.
	NodeModulesMode string

	// InvalidNodeModulesModeError is returned when a NodeModulesMode value is
	// not recognized. It wraps ErrInvalidNodeModulesMode for errors.Is().
	InvalidNodeModulesModeError struct {
		Value NodeModulesMode
	}

	// InvalidBundleOptionsError is returned when BundleOptions has invalid
	// fields. It wraps ErrInvalidBundleOptions for errors.Is() and collects
	// field-level validation errors.
	InvalidBundleOptionsError struct {
		FieldErrors []error
	}

	// BundleOptions controls a single bundle operation: where the output
	// goes, which library roots to search, how third-party modules are
	// materialized, and whether the result is minified.
	BundleOptions struct {
		// OutputPath is the destination directory for the emitted bundle.
		OutputPath string `json:"output_path" mapstructure:"output_path"`
		// NodeModulesMode controls how third-party packages are materialized.
		NodeModulesMode NodeModulesMode `json:"node_modules_mode" mapstructure:"node_modules_mode"`
		// Library lists additional package root directories, beyond AppDir's
		// own packages/ directory and PACKAGE_DIRS.
		Library []string `json:"library" mapstructure:"library"`
		// ReleaseStamp is recorded verbatim in app.json; "none" omits it.
		ReleaseStamp string `json:"release_stamp" mapstructure:"release_stamp"`
		// Minify concatenates and minifies client js/css into cacheable files.
		Minify bool `json:"minify" mapstructure:"minify"`
		// TestPackages lists package names whose test role should be bundled
		// alongside the app's own tests.
		TestPackages []string `json:"test_packages" mapstructure:"test_packages"`
		// AppDir is the application directory being bundled.
		AppDir string `json:"app_dir" mapstructure:"app_dir"`
		// PackageDirs lists additional package roots sourced from the
		// PACKAGE_DIRS environment variable, appended after config-file roots.
		PackageDirs []string `json:"package_dirs" mapstructure:"package_dirs"`
	}
)

// String returns the string representation of the NodeModulesMode.
func (m NodeModulesMode) String() string { return string(m) }

// IsValid returns whether the NodeModulesMode is one of the defined modes,
// and a list of validation errors if it is not.
func (m NodeModulesMode) IsValid() (bool, []error) {
	switch m {
	case NodeModulesSkip, NodeModulesCopy, NodeModulesSymlink:
		return true, nil
	default:
		return false, []error{&InvalidNodeModulesModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidNodeModulesModeError.
func (e *InvalidNodeModulesModeError) Error() string {
	return fmt.Sprintf("invalid node_modules mode %q (valid: skip, copy, symlink)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidNodeModulesModeError) Unwrap() error {
	return ErrInvalidNodeModulesMode
}

// IsValid returns whether BundleOptions has valid fields.
// It delegates to NodeModulesMode.IsValid() and requires AppDir to be set;
// every other field is optional and defaulted by DefaultBundleOptions.
func (o BundleOptions) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := o.NodeModulesMode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if o.AppDir == "" {
		errs = append(errs, errors.New("app_dir must be set"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidBundleOptionsError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidBundleOptionsError.
func (e *InvalidBundleOptionsError) Error() string {
	return fmt.Sprintf("invalid bundle options: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidBundleOptions for errors.Is() compatibility.
func (e *InvalidBundleOptionsError) Unwrap() error { return ErrInvalidBundleOptions }

// DefaultBundleOptions returns the default bundle options. AppDir is left
// empty; callers must set it explicitly.
func DefaultBundleOptions() *BundleOptions {
	return &BundleOptions{
		OutputPath:      "build",
		NodeModulesMode: NodeModulesCopy,
		Library:         []string{},
		ReleaseStamp:    ReleaseStampNone,
		Minify:          false,
		TestPackages:    []string{},
		PackageDirs:     []string{},
	}
}
