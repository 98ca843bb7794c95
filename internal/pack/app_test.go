// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewApp_ExcludesPackagesAndPrivate(t *testing.T) {
	dir := t.TempDir()
	mustMkdirAll(t, filepath.Join(dir, "packages", "foo"))
	mustMkdirAll(t, filepath.Join(dir, "private"))
	mustMkdirAll(t, filepath.Join(dir, "client"))

	writeFile(t, filepath.Join(dir, "client"), "main.js", "console.log(1);")
	writeFile(t, filepath.Join(dir, "packages", "foo"), "ignored.js", "should not be scanned")
	writeFile(t, filepath.Join(dir, "private"), "secret.txt", "should not be scanned")

	app, err := NewApp(dir, "/", ArchClient, RoleUse, nil)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	slice, ok := app.Slice("main", ArchClient)
	if !ok {
		t.Fatal("expected a main/client slice")
	}

	for _, src := range slice.Sources {
		if filepath.Dir(src) == filepath.Join("packages", "foo") || filepath.Dir(src) == "private" {
			t.Errorf("expected excluded source %q to be absent", src)
		}
	}

	var sawClientMain bool
	for _, src := range slice.Sources {
		if src == filepath.Join("client", "main.js") {
			sawClientMain = true
		}
	}
	if !sawClientMain {
		t.Errorf("expected client/main.js in sources, got %v", slice.Sources)
	}
}

func TestNewApp_ExcludesTestsUnlessTestRole(t *testing.T) {
	dir := t.TempDir()
	mustMkdirAll(t, filepath.Join(dir, "tests"))
	writeFile(t, filepath.Join(dir, "tests"), "spec.js", "assert(true);")

	useApp, err := NewApp(dir, "/", ArchServer, RoleUse, nil)
	if err != nil {
		t.Fatalf("NewApp(use): %v", err)
	}
	useSlice, _ := useApp.Slice("main", ArchServer)
	for _, src := range useSlice.Sources {
		if filepath.Dir(src) == "tests" {
			t.Errorf("expected tests/ excluded from use role, got %v", useSlice.Sources)
		}
	}

	testApp, err := NewApp(dir, "/", ArchServer, RoleTest, nil)
	if err != nil {
		t.Fatalf("NewApp(test): %v", err)
	}
	testSlice, ok := testApp.Slice("tests", ArchServer)
	if !ok {
		t.Fatal("expected a tests/server slice")
	}
	var sawSpec bool
	for _, src := range testSlice.Sources {
		if src == filepath.Join("tests", "spec.js") {
			sawSpec = true
		}
	}
	if !sawSpec {
		t.Errorf("expected tests/spec.js included for test role, got %v", testSlice.Sources)
	}
}

func mustMkdirAll(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
}
