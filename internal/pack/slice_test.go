// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"buildforge/internal/handler"
)

// fakeResolver resolves names against an in-memory map, used in place of a
// Library for these unit tests.
type fakeResolver struct {
	packages map[string]*Package
}

func (r *fakeResolver) Resolve(name string) (*Package, error) {
	p, ok := r.packages[name]
	if !ok {
		return nil, errMissingTransitiveSlice
	}
	return p, nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
}

func TestSlice_CompileAndGetResources_NoDeps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "@export Foo\nvar Foo = 1;\n")

	p := NewPackage("simple", dir, "/packages/simple", false)
	if err := p.Extensions.Register("js", "simple", handler.JS); err != nil {
		t.Fatalf("Register: %v", err)
	}
	s := NewSlice("main", ArchServer, nil, []string{"a.js"}, nil)
	if err := p.AddSlice(s); err != nil {
		t.Fatalf("AddSlice: %v", err)
	}

	resolver := &fakeResolver{packages: map[string]*Package{}}

	resources, err := s.GetResources(resolver)
	if err != nil {
		t.Fatalf("GetResources: %v", err)
	}
	if !s.IsCompiled() {
		t.Fatal("expected slice to be marked compiled")
	}
	if len(s.Exports()) != 1 || s.Exports()[0] != "Foo" {
		t.Fatalf("expected export [Foo], got %v", s.Exports())
	}

	var sawJS bool
	for _, r := range resources {
		if string(r.Type) == "js" {
			sawJS = true
		}
	}
	if !sawJS {
		t.Fatal("expected at least one js resource")
	}
}

func TestSlice_GetResources_ImportsFromDependency(t *testing.T) {
	depDir := t.TempDir()
	writeFile(t, depDir, "dep.js", "@export Bar\nvar Bar = 2;\n")
	dep := NewPackage("depper", depDir, "/packages/depper", false)
	// main-pkg registers nothing itself; it picks up depper's js handler
	// through its use edge.
	if err := dep.Extensions.Register("js", "depper", handler.JS); err != nil {
		t.Fatalf("Register: %v", err)
	}
	depSlice := NewSlice("main", ArchServer, nil, []string{"dep.js"}, nil)
	if err := dep.AddSlice(depSlice); err != nil {
		t.Fatalf("AddSlice dep: %v", err)
	}

	mainDir := t.TempDir()
	writeFile(t, mainDir, "main.js", "console.log(Bar);\n")
	main := NewPackage("main-pkg", mainDir, "/packages/main-pkg", false)
	mainSlice := NewSlice("main", ArchServer, []UseEdge{{Spec: "depper"}}, []string{"main.js"}, nil)
	if err := main.AddSlice(mainSlice); err != nil {
		t.Fatalf("AddSlice main: %v", err)
	}

	resolver := &fakeResolver{packages: map[string]*Package{
		"depper": dep,
	}}

	resources, err := mainSlice.GetResources(resolver)
	if err != nil {
		t.Fatalf("GetResources: %v", err)
	}
	if len(resources) == 0 {
		t.Fatal("expected at least one resource")
	}

	var found bool
	for _, r := range resources {
		if strings.Contains(string(r.Data), "var Bar = depper.Bar;") {
			found = true
		}
	}
	if !found {
		t.Error("expected linked output to bind Bar from depper")
	}

	// The dependency's own output must actually define depper.Bar, or the
	// binding above would throw a ReferenceError if ever executed.
	depResources, err := depSlice.GetResources(resolver)
	if err != nil {
		t.Fatalf("GetResources dep: %v", err)
	}
	var definesNamespace, attachesBar bool
	for _, r := range depResources {
		data := string(r.Data)
		if strings.Contains(data, `var depper = (typeof depper !== "undefined" ? depper : {});`) {
			definesNamespace = true
		}
		if strings.Contains(data, "depper.Bar = Bar;") {
			attachesBar = true
		}
	}
	if !definesNamespace {
		t.Error("expected depper's own output to declare its public namespace object")
	}
	if !attachesBar {
		t.Error("expected depper's own output to attach Bar to depper.Bar")
	}
}

func TestSlice_Compile_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "var X = 1;\n")

	p := NewPackage("idem", dir, "/packages/idem", false)
	s := NewSlice("main", ArchServer, nil, []string{"a.js"}, nil)
	if err := p.AddSlice(s); err != nil {
		t.Fatalf("AddSlice: %v", err)
	}

	resolver := &fakeResolver{packages: map[string]*Package{}}
	if err := s.Compile(resolver); err != nil {
		t.Fatalf("first compile: %v", err)
	}
	if err := s.Compile(resolver); err != nil {
		t.Fatalf("second compile should be a no-op, got: %v", err)
	}
}
