// SPDX-License-Identifier: MPL-2.0

package errs

import (
	"errors"
	"strings"
	"testing"
)

func TestNewConfigurationError(t *testing.T) {
	cause := errors.New("missing output_path")
	err := NewConfigurationError("load config", "./buildforge.toml", cause)

	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("Error() = %q, missing operation", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestNewResolutionError(t *testing.T) {
	err := NewResolutionError("resolve package", "widgets", errors.New("not found"))

	var target *ResolutionError
	if !errors.As(err, &target) {
		t.Fatal("errors.As should match *ResolutionError")
	}
	if target.Resource != "widgets" {
		t.Errorf("Resource = %q", target.Resource)
	}
}

func TestNewExtensionConflict(t *testing.T) {
	err := NewExtensionConflict(".js", errors.New("already registered"))

	var target *ExtensionConflict
	if !errors.As(err, &target) {
		t.Fatal("errors.As should match *ExtensionConflict")
	}
	if target.Resource != ".js" {
		t.Errorf("Resource = %q", target.Resource)
	}
}

func TestNewDependencyCycleError(t *testing.T) {
	err := NewDependencyCycleError("a", "b")

	if err.From != "a" || err.To != "b" {
		t.Errorf("From/To = %q/%q, want a/b", err.From, err.To)
	}

	if !strings.Contains(err.Error(), "a -> b") {
		t.Errorf("Error() = %q, missing edge", err.Error())
	}

	var target *DependencyCycleError
	if !errors.As(error(err), &target) {
		t.Fatal("errors.As should match *DependencyCycleError")
	}
}

func TestNewLinkerError(t *testing.T) {
	err := NewLinkerError("link fragment", "main.bundle.js", errors.New("missing boundary marker"))

	if !strings.Contains(err.Error(), "missing boundary marker") {
		t.Errorf("Error() = %q, missing cause", err.Error())
	}
}

func TestNewResourceError(t *testing.T) {
	err := NewResourceError("classify resource", "favicon.ico", errors.New("unknown extension"))

	var target *ResourceError
	if !errors.As(err, &target) {
		t.Fatal("errors.As should match *ResourceError")
	}
}

func TestNewIOError(t *testing.T) {
	err := NewIOError("rename build directory", "./build", errors.New("permission denied"))

	var target *IOError
	if !errors.As(err, &target) {
		t.Fatal("errors.As should match *IOError")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("Error() = %q, missing cause", err.Error())
	}
}

func TestAs(t *testing.T) {
	err := NewLinkerError("prelink slice", "app.js", errors.New("duplicate export"))

	var target *LinkerError
	if !As(error(err), &target) {
		t.Fatal("As() should match *LinkerError")
	}

	var wrongKind *IOError
	if As(error(err), &wrongKind) {
		t.Fatal("As() should not match an unrelated kind")
	}
}
