// SPDX-License-Identifier: MPL-2.0

package pack

import "testing"

func TestAddSlice_DuplicateIsError(t *testing.T) {
	p := NewPackage("accounts-base", "/src", "/packages/accounts-base", false)
	s1 := NewSlice("main", ArchClient, nil, nil, nil)
	s2 := NewSlice("main", ArchClient, nil, nil, nil)

	if err := p.AddSlice(s1); err != nil {
		t.Fatalf("first AddSlice: %v", err)
	}
	if err := p.AddSlice(s2); err == nil {
		t.Fatal("expected error registering a duplicate (name, arch) slice")
	}
}

func TestSlice_LookupAndDefaults(t *testing.T) {
	p := NewPackage("accounts-base", "/src", "/packages/accounts-base", false)
	s := NewSlice("main", ArchServer, nil, nil, nil)
	if err := p.AddSlice(s); err != nil {
		t.Fatalf("AddSlice: %v", err)
	}
	p.SetDefaultSlices(RoleUse, ArchServer, []string{"main"})

	got, ok := p.Slice("main", ArchServer)
	if !ok || got != s {
		t.Fatalf("expected to find registered slice, got %v, %v", got, ok)
	}

	if _, ok := p.Slice("main", ArchClient); ok {
		t.Fatal("expected no main slice registered for client")
	}

	names := p.DefaultSliceNames(RoleUse, ArchServer)
	if len(names) != 1 || names[0] != "main" {
		t.Fatalf("expected [main], got %v", names)
	}
}

func TestAllSlices_DeterministicOrder(t *testing.T) {
	p := NewPackage("underscore", "/src", "/packages/underscore", false)
	_ = p.AddSlice(NewSlice("main", ArchServer, nil, nil, nil))
	_ = p.AddSlice(NewSlice("main", ArchClient, nil, nil, nil))
	_ = p.AddSlice(NewSlice("tests", ArchClient, nil, nil, nil))

	all := p.AllSlices()
	if len(all) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(all))
	}
	if all[0].SliceName != "main" || all[0].Arch != ArchClient {
		t.Errorf("expected main/client first, got %s/%s", all[0].SliceName, all[0].Arch)
	}
	if all[2].SliceName != "tests" {
		t.Errorf("expected tests last, got %s", all[2].SliceName)
	}
}
