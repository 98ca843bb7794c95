// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"errors"
	"os"
	"testing"

	"github.com/charmbracelet/log"

	"buildforge/internal/errs"
	"buildforge/internal/pack"
	"buildforge/internal/resource"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Prefix: "bundle-test"})
}

func TestPartition_UnknownTypeIsFatal(t *testing.T) {
	out := &staged{}
	err := partition(out, resource.Resource{Type: "wasm", ServePath: "/x.wasm"}, pack.ArchClient, "widgets", testLogger())
	if err == nil {
		t.Fatal("expected an error for an unrecognized resource type")
	}
	var resErr *errs.ResourceError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected a *errs.ResourceError, got %T: %v", err, err)
	}
}

func TestPartition_CSSOnNonClientIsDroppedNotFatal(t *testing.T) {
	out := &staged{}
	err := partition(out, resource.Resource{Type: resource.TypeCSS, ServePath: "/x.css"}, pack.ArchServer, "widgets", testLogger())
	if err != nil {
		t.Fatalf("expected css-on-server to be a silent drop, got: %v", err)
	}
	if len(out.CSS) != 0 {
		t.Errorf("expected css to be dropped, got %v", out.CSS)
	}
}

func TestPartition_HeadOnNonClientIsFatal(t *testing.T) {
	out := &staged{}
	err := partition(out, resource.Resource{Type: resource.TypeHead}, pack.ArchServer, "widgets", testLogger())
	if err == nil {
		t.Fatal("expected head-on-server to be fatal")
	}
}
