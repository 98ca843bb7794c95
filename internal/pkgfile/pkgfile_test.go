// SPDX-License-Identifier: MPL-2.0

package pkgfile

import (
	"path/filepath"
	"testing"
)

func TestParse_ValidPackage(t *testing.T) {
	data := []byte(`
name: "accounts-base"
summary: "Base accounts functionality"
registerExtension: {
	less: "css"
}
depends: {
	"left-pad": "1.3.0"
}
onUse: {
	use: [{names: ["underscore"], unordered: false}]
	addFiles: [{paths: ["accounts.js"], where: ["server"]}]
	exportSymbol: [{symbols: ["Accounts"]}]
}
`)
	pkg, err := Parse(data, "package.cue")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pkg.Name != "accounts-base" {
		t.Errorf("expected name accounts-base, got %q", pkg.Name)
	}
	if pkg.OnUse == nil || len(pkg.OnUse.Use) != 1 {
		t.Fatalf("expected one use edge, got %v", pkg.OnUse)
	}
	if pkg.Depends["left-pad"] != "1.3.0" {
		t.Errorf("expected left-pad@1.3.0, got %v", pkg.Depends)
	}
}

func TestParse_FuzzyVersionRejected(t *testing.T) {
	data := []byte(`
name: "broken"
depends: {
	"left-pad": "^1.3.0"
}
`)
	_, err := Parse(data, "package.cue")
	if err == nil {
		t.Fatal("expected error for fuzzy version specifier")
	}
}

func TestParse_MinimalPackage(t *testing.T) {
	data := []byte(`name: "minimal"`)
	pkg, err := Parse(data, "package.cue")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pkg.Name != "minimal" {
		t.Errorf("expected name minimal, got %q", pkg.Name)
	}
}

func TestThirdPartyLock_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ThirdPartyLockFileName)

	lock := NewThirdPartyLock(map[string]string{"underscore": "1.13.6"})
	if err := lock.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadThirdPartyLock(path)
	if err != nil {
		t.Fatalf("LoadThirdPartyLock: %v", err)
	}
	if loaded.Entries["underscore"] != "1.13.6" {
		t.Errorf("expected underscore@1.13.6, got %v", loaded.Entries)
	}
}

func TestLoadThirdPartyLock_MissingFileReturnsEmpty(t *testing.T) {
	lock, err := LoadThirdPartyLock(filepath.Join(t.TempDir(), "thirdparty.lock.toml"))
	if err != nil {
		t.Fatalf("LoadThirdPartyLock: %v", err)
	}
	if len(lock.Entries) != 0 {
		t.Errorf("expected empty lock, got %v", lock.Entries)
	}
}
