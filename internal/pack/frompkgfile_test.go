// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"path/filepath"
	"testing"

	"buildforge/internal/pkgfile"
)

func TestFromDirectory_PrependsFrameworkRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, pkgfile.FileName, `
name: "accounts-base"
onUse: {
	use: [{names: ["underscore"]}]
	addFiles: [{paths: ["accounts.js"]}]
}
`)
	writeFile(t, dir, "accounts.js", "var Accounts = {};")

	p, err := FromDirectory(dir, "/packages/accounts-base", false)
	if err != nil {
		t.Fatalf("FromDirectory: %v", err)
	}
	if p.Name != "accounts-base" {
		t.Fatalf("expected name accounts-base, got %q", p.Name)
	}

	slice, ok := p.Slice("main", ArchServer)
	if !ok {
		t.Fatal("expected a main/server slice")
	}
	if len(slice.Uses) != 2 {
		t.Fatalf("expected framework root prepended, got %v", slice.Uses)
	}
	if slice.Uses[0].Spec != FrameworkRootPackage {
		t.Errorf("expected first use to be %q, got %q", FrameworkRootPackage, slice.Uses[0].Spec)
	}
	if slice.Uses[1].Spec != "underscore" {
		t.Errorf("expected second use to be underscore, got %q", slice.Uses[1].Spec)
	}
}

func TestFromDirectory_FrameworkRootItselfSkipsPrepend(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, pkgfile.FileName, `name: "meteor"`)

	p, err := FromDirectory(dir, "/packages/meteor", false)
	if err != nil {
		t.Fatalf("FromDirectory: %v", err)
	}
	slice, ok := p.Slice("main", ArchServer)
	if !ok {
		t.Fatal("expected a main/server slice")
	}
	if len(slice.Uses) != 0 {
		t.Errorf("expected no implicit self-dependency for the framework root package, got %v", slice.Uses)
	}
}

func TestFromDirectory_AlreadyDeclaredRootSkipsDuplicatePrepend(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, pkgfile.FileName, `
name: "weird-cycle-breaker"
onUse: {
	use: [{names: ["meteor"], unordered: true}]
}
`)

	p, err := FromDirectory(dir, "/packages/weird-cycle-breaker", false)
	if err != nil {
		t.Fatalf("FromDirectory: %v", err)
	}
	slice, ok := p.Slice("main", ArchServer)
	if !ok {
		t.Fatal("expected a main/server slice")
	}
	if len(slice.Uses) != 1 {
		t.Fatalf("expected no duplicate framework-root edge, got %v", slice.Uses)
	}
	if !slice.Uses[0].Unordered {
		t.Errorf("expected the declared unordered edge to survive, got %v", slice.Uses[0])
	}
}

func TestFromDirectory_RegistersExtensionHandlers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, pkgfile.FileName, `
name: "less-compiler"
registerExtension: {
	less: "css"
}
`)

	p, err := FromDirectory(dir, "/packages/less-compiler", false)
	if err != nil {
		t.Fatalf("FromDirectory: %v", err)
	}
	if _, ok := p.Extensions.Lookup("less"); !ok {
		t.Error("expected less extension handler to be registered")
	}
}

func TestFromDirectory_MissingDeclarationIsIOError(t *testing.T) {
	dir := t.TempDir()
	if _, err := FromDirectory(dir, "/packages/missing", false); err == nil {
		t.Fatal("expected an error for a missing package.cue")
	}
	_ = filepath.Join(dir, pkgfile.FileName)
}
