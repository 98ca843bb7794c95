// SPDX-License-Identifier: MPL-2.0

// Package resource defines the tagged output record emitted by extension
// handlers and consumed by the linker and bundle writer.
package resource

// Type identifies what a Resource represents and how the bundle writer
// treats it.
type Type string

const (
	// TypeJS is a JavaScript fragment; js resources are fed through the
	// linker's prelink/link phases before they are final.
	TypeJS Type = "js"

	// TypeCSS is a stylesheet fragment; client-only, silently dropped for
	// non-client archs (a documented legacy quirk).
	TypeCSS Type = "css"

	// TypeHead is an HTML fragment appended to the bundle's <head>; client-only.
	TypeHead Type = "head"

	// TypeBody is an HTML fragment appended to the bundle's <body>; client-only.
	TypeBody Type = "body"

	// TypeStatic is an opaque file copied through unmodified.
	TypeStatic Type = "static"
)

// Resource is a single typed output unit produced while compiling a slice.
type Resource struct {
	// Type determines how the bundle writer classifies this resource.
	Type Type

	// Data holds the resource's bytes.
	Data []byte

	// ServePath is the absolute-style, slash-normalized path under which this
	// resource is served. Ignored for TypeHead/TypeBody; required otherwise.
	ServePath string

	// Cacheable marks a resource as genuinely content-addressed: it was
	// produced by the minify stage (one concatenated file per client js/css)
	// and belongs in static_cacheable/ under its hashed name, rather than in
	// static/ under its original ServePath.
	Cacheable bool
}

// Sink is the scoped callback a handler uses to emit resources. It is valid
// only for the duration of the handler invocation that received it.
type Sink func(Resource)
