// SPDX-License-Identifier: MPL-2.0

// Package errs defines the typed error kinds returned by the build pipeline.
//
// Every kind wraps an *issue.ActionableError so callers get a consistent
// Operation/Resource/Suggestions/Cause shape regardless of which pipeline
// stage produced the error, while still being able to tell the kinds apart
// with errors.As.
package errs

import (
	"buildforge/internal/issue"
	"errors"
)

type (
	// ConfigurationError reports a problem loading or validating BundleOptions.
	ConfigurationError struct{ *issue.ActionableError }

	// ResolutionError reports a package or resource that could not be located.
	ResolutionError struct{ *issue.ActionableError }

	// ExtensionConflict reports two handlers registered for the same extension.
	ExtensionConflict struct{ *issue.ActionableError }

	// DependencyCycleError reports a cycle in the package use graph, naming
	// both endpoints of one edge in the cycle.
	DependencyCycleError struct {
		*issue.ActionableError
		From string
		To   string
	}

	// LinkerError reports a failure during the prelink or link phase.
	LinkerError struct{ *issue.ActionableError }

	// ResourceError reports a resource that could not be classified or emitted.
	ResourceError struct{ *issue.ActionableError }

	// IOError reports a failure writing the build output to disk.
	IOError struct{ *issue.ActionableError }
)

func NewConfigurationError(operation, resource string, cause error) *ConfigurationError {
	return &ConfigurationError{issue.WrapWithContext(cause, operation, resource)}
}

func NewResolutionError(operation, resource string, cause error) *ResolutionError {
	return &ResolutionError{issue.WrapWithContext(cause, operation, resource)}
}

func NewExtensionConflict(extension string, cause error) *ExtensionConflict {
	return &ExtensionConflict{issue.WrapWithContext(cause, "register extension handler", extension)}
}

func NewDependencyCycleError(from, to string) *DependencyCycleError {
	ae := issue.NewErrorContext().
		WithOperation("determine load order").
		WithResource(from + " -> " + to).
		WithSuggestion("review the use field of " + from + " and " + to).
		Build()
	return &DependencyCycleError{ActionableError: ae, From: from, To: to}
}

func NewLinkerError(operation, resource string, cause error) *LinkerError {
	return &LinkerError{issue.WrapWithContext(cause, operation, resource)}
}

func NewResourceError(operation, resource string, cause error) *ResourceError {
	return &ResourceError{issue.WrapWithContext(cause, operation, resource)}
}

func NewIOError(operation, resource string, cause error) *IOError {
	return &IOError{issue.WrapWithContext(cause, operation, resource)}
}

// As is a convenience wrapper around errors.As for the kinds in this package,
// used by callers that need to branch on error kind without importing errors
// directly in every call site.
func As[T error](err error, target *T) bool {
	return errors.As(err, target)
}
