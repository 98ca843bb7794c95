// SPDX-License-Identifier: MPL-2.0

// Package registry maps file extensions to the handlers that compile them,
// composing a package's own handlers with those of its direct dependencies
// and detecting conflicts between them.
package registry

import (
	"errors"
	"sort"

	"buildforge/internal/errs"
	"buildforge/internal/resource"

	"golang.org/x/exp/maps"
)

// Handler compiles a single source file into zero or more resources.
//
// src and servePath are absolute; arch is the target environment ("client"
// or "server"). The handler emits resources through sink, which is valid only
// for the duration of this call.
type Handler func(sink resource.Sink, src, servePath, arch string) error

// Registry is a mapping from extension (no leading dot) to Handler.
type Registry struct {
	handlers map[string]Handler
	// providers tracks, per extension, the name of the package that
	// registered it, so conflicts can name both offending providers.
	providers map[string]string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		handlers:  make(map[string]Handler),
		providers: make(map[string]string),
	}
}

// Register adds a handler for ext, owned by the package named provider.
// Registering a second handler for an extension already owned by the same
// provider is an error (at most one handler per extension, locally); it is
// never silently overwritten.
func (r *Registry) Register(ext, provider string, h Handler) error {
	if existing, ok := r.providers[ext]; ok {
		return newConflict(ext, existing, provider)
	}
	r.handlers[ext] = h
	r.providers[ext] = provider
	return nil
}

// Lookup returns the handler registered for ext, if any.
func (r *Registry) Lookup(ext string) (Handler, bool) {
	h, ok := r.handlers[ext]
	return h, ok
}

// Extensions returns the registered extensions in deterministic
// (lexicographic) order.
func (r *Registry) Extensions() []string {
	exts := maps.Keys(r.handlers)
	sort.Strings(exts)
	return exts
}

// Merge composes the receiver with other, returning a new Registry that
// contains every extension from both. A handler present in both registries
// under different providers for the same extension is an ExtensionConflict;
// an extension registered identically is not possible since providers are
// distinct packages, so any overlap is necessarily a conflict.
func Merge(base *Registry, others ...*Registry) (*Registry, error) {
	merged := New()
	for ext, h := range base.handlers {
		merged.handlers[ext] = h
		merged.providers[ext] = base.providers[ext]
	}

	exts := make([]string, 0)
	for _, o := range others {
		exts = append(exts, maps.Keys(o.handlers)...)
	}
	sort.Strings(exts)

	for _, ext := range exts {
		for _, o := range others {
			h, ok := o.handlers[ext]
			if !ok {
				continue
			}
			if existingProvider, conflict := merged.providers[ext]; conflict {
				return nil, newConflict(ext, existingProvider, o.providers[ext])
			}
			merged.handlers[ext] = h
			merged.providers[ext] = o.providers[ext]
		}
	}

	return merged, nil
}

func newConflict(ext, providerA, providerB string) error {
	e := errs.NewExtensionConflict(ext, errors.New("extension registered by more than one handler"))
	e.Resource = providerA + ", " + providerB + " (." + ext + ")"
	return e
}
