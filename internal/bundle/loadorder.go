// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"buildforge/internal/dag"
	"buildforge/internal/errs"
	"buildforge/internal/pack"
)

// appNodeName is the dag node standing in for the application pseudo-package
// (whose real Name is empty, which dag.Graph still accepts as a map key but
// which reads poorly in a cycle error).
const appNodeName = "<app>"

// determineLoadOrder walks app's use graph transitively (excluding
// Unordered edges, per the specification) and returns every package name in
// an order where each package follows the packages it uses. A package
// reached only through an Unordered edge has no ordering constraint and may
// come after the application. A cycle among non-unordered edges is a fatal DependencyCycleError
// naming both endpoints of the closing edge.
func determineLoadOrder(resolver pack.Resolver, app *pack.Package, arch pack.Arch, role pack.Role) ([]string, error) {
	g := dag.New()
	g.AddNode(appNodeName)

	visited := map[string]bool{}
	var visit func(pkgName string, slice *pack.Slice) error
	visit = func(pkgName string, slice *pack.Slice) error {
		node := nodeName(pkgName)
		if visited[node] {
			return nil
		}
		visited[node] = true
		g.AddNode(node)

		for _, edge := range slice.Uses {
			depName, depSliceName := pack.SplitUseSpec(edge.Spec)
			depPkg, err := resolver.Resolve(depName)
			if err != nil {
				return errs.NewResolutionError("resolve load-order dependency", depName, err)
			}
			depSlice, ok := depPkg.Slice(depSliceName, arch)
			if !ok {
				depSlice, ok = depPkg.Slice("main", arch)
			}
			if !ok {
				continue
			}

			if edge.Unordered {
				g.AddNode(nodeName(depName))
				continue
			}
			g.AddEdge(nodeName(depName), node)

			if err := visit(depName, depSlice); err != nil {
				return err
			}
		}
		return nil
	}

	names := app.DefaultSliceNames(role, arch)
	for _, sliceName := range names {
		slice, ok := app.Slice(sliceName, arch)
		if !ok {
			continue
		}
		if err := visit("", slice); err != nil {
			return nil, err
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		if cycleErr, ok := err.(*dag.CycleError); ok {
			return nil, errs.NewDependencyCycleError(cycleErr.From, cycleErr.To)
		}
		return nil, err
	}

	result := make([]string, 0, len(order))
	for _, n := range order {
		if n == appNodeName {
			result = append(result, "")
			continue
		}
		result = append(result, n)
	}
	return result, nil
}

func nodeName(pkgName string) string {
	if pkgName == "" {
		return appNodeName
	}
	return pkgName
}
