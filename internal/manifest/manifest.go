// SPDX-License-Identifier: MPL-2.0

// Package manifest builds the content-addressed build manifest the bundle
// writer emits as app.json's manifest array: one entry per resource, keyed
// by a sha1 hash of its bytes, distinguishing ordinary cache-busted client
// assets from the genuinely content-addressed files the minify stage moves
// into static_cacheable/.
package manifest

import (
	"crypto/sha1" //nolint:gosec // content-addressing, not a security boundary
	"encoding/hex"
	"path"
	"sort"

	"buildforge/internal/resource"
)

// Entry is one line of the build manifest. Where is "client" for resources
// fetched over HTTP by a browser, "internal" for everything else (server
// code, required by path rather than served); URL is only meaningful for
// client entries.
type Entry struct {
	Path      string `json:"path"`
	Where     string `json:"where"`
	Type      string `json:"type"`
	Cacheable bool   `json:"cacheable"`
	URL       string `json:"url,omitempty"`
	Size      int    `json:"size"`
	Hash      string `json:"hash"`
}

// WhereClient and WhereInternal are the two values the manifest entry
// schema's "where" field takes.
const (
	WhereClient   = "client"
	WhereInternal = "internal"
)

// manifestTypes lists the resource types that ever become a manifest entry;
// head/body fragments are folded into app.html and never addressed
// individually.
var manifestTypes = map[resource.Type]bool{
	resource.TypeJS:     true,
	resource.TypeCSS:    true,
	resource.TypeStatic: true,
}

// Build constructs manifest entries for a list of resources already
// assigned to where (WhereClient or WhereInternal), normalizing every path
// to forward slashes.
func Build(where string, resources []resource.Resource) []Entry {
	entries := make([]Entry, 0, len(resources))
	for _, r := range resources {
		if !manifestTypes[r.Type] {
			continue
		}
		entries = append(entries, buildEntry(where, r))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// buildEntry classifies a single resource. Internal (server) resources get
// no URL at all — they are require()'d by path, never fetched. A client
// resource's URL depends on whether the minify stage actually moved it into
// content-addressed storage (r.Cacheable) or it is served as-is from
// static/ with a cache-busting query string.
func buildEntry(where string, r resource.Resource) Entry {
	servePath := path.Clean("/" + r.ServePath)
	hash := sha1Hex(r.Data)

	e := Entry{
		Path:  servePath,
		Where: where,
		Type:  string(r.Type),
		Size:  len(r.Data),
		Hash:  hash,
	}

	if where != WhereClient {
		return e
	}

	if r.Cacheable {
		e.Cacheable = true
		e.URL = contentAddressedURL(servePath, hash)
		return e
	}

	e.URL = servePath + "?" + hash
	return e
}

// contentAddressedURL renders a cacheable resource's canonical URL:
// <sha1hex><ext>, independent of the original serve path, so it can be
// served with a far-future expiry header.
func contentAddressedURL(servePath, hash string) string {
	return "/" + hash + path.Ext(servePath)
}

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// Hash returns the sha1-hex content hash used both for a manifest entry's
// "hash" field and for a content-addressed file's name under
// static_cacheable/, so a writer can name files consistently with what the
// manifest claims.
func Hash(data []byte) string {
	return sha1Hex(data)
}
