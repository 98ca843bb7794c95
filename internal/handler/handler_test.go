// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"os"
	"path/filepath"
	"testing"

	"buildforge/internal/resource"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "src")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestJS_EmitsSingleResource(t *testing.T) {
	src := writeTemp(t, "var x = 1;")
	var got []resource.Resource
	if err := JS(func(r resource.Resource) { got = append(got, r) }, src, "/x.js", "server"); err != nil {
		t.Fatalf("JS: %v", err)
	}
	if len(got) != 1 || got[0].Type != resource.TypeJS {
		t.Fatalf("expected one js resource, got %v", got)
	}
}

func TestHTML_ExtractsHeadAndBody(t *testing.T) {
	src := writeTemp(t, "<head><title>Hi</title></head><body><h1>Hello</h1></body>")
	var got []resource.Resource
	if err := HTML(func(r resource.Resource) { got = append(got, r) }, src, "", "client"); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected head and body resources, got %d", len(got))
	}
	if got[0].Type != resource.TypeHead {
		t.Errorf("expected first resource to be head, got %s", got[0].Type)
	}
	if got[1].Type != resource.TypeBody {
		t.Errorf("expected second resource to be body, got %s", got[1].Type)
	}
}

func TestHTML_NoTagsEmitsNothing(t *testing.T) {
	src := writeTemp(t, "just some text")
	var got []resource.Resource
	if err := HTML(func(r resource.Resource) { got = append(got, r) }, src, "", "client"); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no resources, got %v", got)
	}
}

func TestStatic_EmitsRawBytes(t *testing.T) {
	src := writeTemp(t, "binary-ish content")
	var got []resource.Resource
	if err := Static(func(r resource.Resource) { got = append(got, r) }, src, "/asset.bin", "server"); err != nil {
		t.Fatalf("Static: %v", err)
	}
	if len(got) != 1 || string(got[0].Data) != "binary-ish content" {
		t.Fatalf("unexpected static resource: %v", got)
	}
}

func TestShell_ValidScriptEmitsStatic(t *testing.T) {
	src := writeTemp(t, "#!/bin/sh\necho hello\n")
	var got []resource.Resource
	if err := Shell(func(r resource.Resource) { got = append(got, r) }, src, "/run.sh", "server"); err != nil {
		t.Fatalf("Shell: %v", err)
	}
	if len(got) != 1 || got[0].Type != resource.TypeStatic {
		t.Fatalf("expected one static resource, got %v", got)
	}
}

func TestShell_InvalidSyntaxIsFatal(t *testing.T) {
	src := writeTemp(t, "if [ 1 -eq 1 ]; then echo missing-fi\n")
	err := Shell(func(resource.Resource) {}, src, "/run.sh", "server")
	if err == nil {
		t.Fatal("expected error for malformed shell syntax")
	}
}
