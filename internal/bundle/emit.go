// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"buildforge/internal/errs"
	"buildforge/internal/pack"
	"buildforge/internal/resource"
	"buildforge/internal/watchmeta"
)

// staged is the accumulated, not-yet-written set of resources for one arch,
// in load order.
type staged struct {
	JS     []resource.Resource
	CSS    []resource.Resource
	Head   []resource.Resource
	Body   []resource.Resource
	Static []resource.Resource
}

// emitResources compiles and links every package's default slice (for the
// given role) in load order, partitioning their resources by type. CSS on a
// non-client arch is dropped per the documented legacy behavior, but now
// logged at Warn so an operator can see it happening; head/body content on a
// non-client arch is a fatal ResourceError since there is no HTML shell to
// inject it into.
func emitResources(resolver pack.Resolver, app *pack.Package, order []string, arch pack.Arch, role pack.Role, logger *log.Logger, watch *watchmeta.Info) (*staged, error) {
	out := &staged{}

	for _, pkgName := range order {
		pkg := app
		if pkgName != "" {
			var err error
			pkg, err = resolver.Resolve(pkgName)
			if err != nil {
				return nil, errs.NewResolutionError("resolve package for emission", pkgName, err)
			}
		}

		names := pkg.DefaultSliceNames(role, arch)
		if len(names) == 0 && role == pack.RoleTest {
			continue
		}
		for _, sliceName := range names {
			slice, ok := pkg.Slice(sliceName, arch)
			if !ok {
				continue
			}
			resources, err := slice.GetResources(resolver)
			if err != nil {
				return nil, err
			}
			watch.Merge(slice.DependencyInfo())

			for _, r := range resources {
				if err := partition(out, r, arch, pkgName, logger); err != nil {
					return nil, err
				}
			}
		}
	}

	return out, nil
}

func partition(out *staged, r resource.Resource, arch pack.Arch, pkgName string, logger *log.Logger) error {
	switch r.Type {
	case resource.TypeJS:
		out.JS = append(out.JS, r)
	case resource.TypeCSS:
		if arch != pack.ArchClient {
			logger.Warn("dropping css resource on non-client arch", "package", describeForLog(pkgName), "arch", arch)
			return nil
		}
		out.CSS = append(out.CSS, r)
	case resource.TypeHead, resource.TypeBody:
		if arch != pack.ArchClient {
			return errs.NewResourceError("emit html fragment", describeForLog(pkgName), errHTMLFragmentOnNonClient)
		}
		if r.Type == resource.TypeHead {
			out.Head = append(out.Head, r)
		} else {
			out.Body = append(out.Body, r)
		}
	case resource.TypeStatic:
		out.Static = append(out.Static, r)
	default:
		return errs.NewResourceError("emit resource", describeForLog(pkgName), fmt.Errorf("%w: %q", errUnknownResourceType, r.Type))
	}
	return nil
}

func describeForLog(pkgName string) string {
	if pkgName == "" {
		return "<app>"
	}
	return pkgName
}

var (
	errHTMLFragmentOnNonClient = errors.New("head/body content has no target on a non-client arch")
	errUnknownResourceType     = errors.New("unrecognized resource type")
)
