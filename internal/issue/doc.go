// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// Every fatal condition in the build pipeline is translated into an
// ActionableError before it crosses a package boundary, so the caller always
// has enough context (operation, resource, suggestions) to render a useful
// message without re-deriving it from a bare error string.
package issue
