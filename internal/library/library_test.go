// SPDX-License-Identifier: MPL-2.0

package library

import (
	"os"
	"path/filepath"
	"testing"

	"buildforge/internal/pack"
)

func writePackage(t *testing.T, root, name, cue string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "package.cue"), []byte(cue), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestResolve_FindsPackageInRoot(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "underscore", `name: "underscore"`)

	lib := New([]string{root}, nil)
	p, err := lib.Resolve("underscore")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Name != "underscore" {
		t.Errorf("expected name underscore, got %q", p.Name)
	}
}

func TestResolve_EarlierRootWins(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writePackage(t, rootA, "dup", `name: "dup"
summary: "from A"`)
	writePackage(t, rootB, "dup", `name: "dup"
summary: "from B"`)

	lib := New([]string{rootA, rootB}, nil)
	p, err := lib.Resolve("dup")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Metadata["summary"] != "from A" {
		t.Errorf("expected earlier root to win, got %q", p.Metadata["summary"])
	}
}

func TestResolve_Preempted(t *testing.T) {
	lib := New(nil, nil)
	preloaded := pack.NewPackage("app-override", "/mem", "/packages/app-override", false)
	lib.Preload("app-override", preloaded)

	p, err := lib.Resolve("app-override")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p != preloaded {
		t.Error("expected preloaded package to be returned")
	}
}

func TestResolve_MissingIsResolutionError(t *testing.T) {
	lib := New([]string{t.TempDir()}, nil)
	if _, err := lib.Resolve("nonexistent"); err == nil {
		t.Fatal("expected an error for an unresolvable package")
	}
}

func TestList_DeduplicatesAcrossRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writePackage(t, rootA, "foo", `name: "foo"`)
	writePackage(t, rootB, "foo", `name: "foo"`)
	writePackage(t, rootB, "bar", `name: "bar"`)

	lib := New([]string{rootA, rootB}, nil)
	names := lib.List()
	if len(names) != 2 {
		t.Fatalf("expected 2 distinct names, got %v", names)
	}
}

func TestFlush_ForcesReload(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "mutable", `name: "mutable"
summary: "v1"`)

	lib := New([]string{root}, nil)
	p1, err := lib.Resolve("mutable")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p1.Metadata["summary"] != "v1" {
		t.Fatalf("expected v1, got %q", p1.Metadata["summary"])
	}

	writePackage(t, root, "mutable", `name: "mutable"
summary: "v2"`)
	lib.Flush()

	p2, err := lib.Resolve("mutable")
	if err != nil {
		t.Fatalf("Resolve after flush: %v", err)
	}
	if p2.Metadata["summary"] != "v2" {
		t.Errorf("expected v2 after flush, got %q", p2.Metadata["summary"])
	}
}
