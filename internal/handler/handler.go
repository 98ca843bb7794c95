// SPDX-License-Identifier: MPL-2.0

// Package handler provides the built-in extension handlers that a package's
// registerExtension entries map its extensions onto: plain JS, CSS, HTML
// (head/body extraction), and a syntax-checking (never executing)
// shell-script handler. A registry starts empty; none of these is registered
// unless a package declares it.
package handler

import (
	"os"
	"strings"

	"buildforge/internal/errs"
	"buildforge/internal/resource"

	"mvdan.cc/sh/v3/syntax"
)

// JS emits the file's contents verbatim as a TypeJS resource, to be fed into
// the linker's prelink phase by the caller.
func JS(sink resource.Sink, src, servePath, _ string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errs.NewIOError("read js source", src, err)
	}
	sink(resource.Resource{Type: resource.TypeJS, Data: data, ServePath: servePath})
	return nil
}

// CSS emits the file's contents as a TypeCSS resource. The bundle writer is
// responsible for the documented client-only / non-client-drop rule; this
// handler has no arch-awareness of its own.
func CSS(sink resource.Sink, src, servePath, _ string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errs.NewIOError("read css source", src, err)
	}
	sink(resource.Resource{Type: resource.TypeCSS, Data: data, ServePath: servePath})
	return nil
}

// HTML splits a template file into <head>...</head> and <body>...</body>
// segments, emitting each as its own resource and ignoring content outside
// both tags (the rest of the file is the template registration boilerplate
// that the original framework's template compiler would otherwise consume;
// out of scope here per the opaque-transformer boundary).
func HTML(sink resource.Sink, src, _, _ string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errs.NewIOError("read html source", src, err)
	}
	text := string(data)

	if head := extractTag(text, "head"); head != "" {
		sink(resource.Resource{Type: resource.TypeHead, Data: []byte(head)})
	}
	if body := extractTag(text, "body"); body != "" {
		sink(resource.Resource{Type: resource.TypeBody, Data: []byte(body)})
	}
	return nil
}

// Static emits the file's raw bytes as a TypeStatic resource, used both as
// the built-in handler for files with no registered extension and as an
// explicit handler for binary asset extensions.
func Static(sink resource.Sink, src, servePath, _ string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errs.NewIOError("read static source", src, err)
	}
	sink(resource.Resource{Type: resource.TypeStatic, Data: data, ServePath: servePath})
	return nil
}

// Shell syntax-checks a .sh source with mvdan.cc/sh's parser and, if it
// parses cleanly, emits it unmodified as a static resource. It never
// executes the script, per the core's no-runtime-execution non-goal; a parse
// failure is a fatal IOError naming the source.
func Shell(sink resource.Sink, src, servePath, _ string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errs.NewIOError("read shell source", src, err)
	}

	_, err = syntax.NewParser().Parse(strings.NewReader(string(data)), src)
	if err != nil {
		return errs.NewIOError("parse shell source", src, err)
	}

	sink(resource.Resource{Type: resource.TypeStatic, Data: data, ServePath: servePath})
	return nil
}

func extractTag(text, tag string) string {
	open := "<" + tag + ">"
	closeTag := "</" + tag + ">"
	start := strings.Index(text, open)
	if start == -1 {
		return ""
	}
	start += len(open)
	end := strings.Index(text[start:], closeTag)
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(text[start : start+end])
}
