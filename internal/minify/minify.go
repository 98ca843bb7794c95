// SPDX-License-Identifier: MPL-2.0

// Package minify defines the minification contract the bundle writer calls
// against its concatenated js/css output, and a default implementation
// backed by tdewolff/minify.
//
// Minification is treated as an opaque transformer: this package never
// inspects or relies on the shape of its input beyond "js" or "css" text,
// matching the boundary the build pipeline draws around source-to-source
// tooling it does not own.
package minify

import (
	"bytes"

	"buildforge/internal/errs"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

// Minifier transforms already-concatenated js or css text. Implementations
// must be safe for concurrent use.
type Minifier interface {
	MinifyJS(src []byte) ([]byte, error)
	MinifyCSS(src []byte) ([]byte, error)
}

// Default returns the tdewolff/minify-backed Minifier wired into the
// pipeline by default.
func Default() Minifier {
	m := minify.New()
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("text/css", css.Minify)
	return &tdewolffMinifier{m: m}
}

type tdewolffMinifier struct {
	m *minify.M
}

func (t *tdewolffMinifier) MinifyJS(src []byte) ([]byte, error) {
	return t.run("text/javascript", src)
}

func (t *tdewolffMinifier) MinifyCSS(src []byte) ([]byte, error) {
	return t.run("text/css", src)
}

func (t *tdewolffMinifier) run(mediatype string, src []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := t.m.Minify(mediatype, &out, bytes.NewReader(src)); err != nil {
		return nil, errs.NewResourceError("minify", mediatype, err)
	}
	return out.Bytes(), nil
}

// Noop is a Minifier that returns its input unchanged, used when a build
// runs with minification disabled.
type Noop struct{}

func (Noop) MinifyJS(src []byte) ([]byte, error)  { return src, nil }
func (Noop) MinifyCSS(src []byte) ([]byte, error) { return src, nil }
