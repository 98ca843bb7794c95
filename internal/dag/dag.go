// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations for topological
// sorting and cycle detection. It backs the bundle's load-order computation:
// nodes are package names, edges are "uses" relationships declared in
// package declaration files, and the sort result is the order slices must be
// loaded in (§4.2 of the build model).
//
// A package may be added to the graph without an edge (AddNode only) when a
// use is marked unordered: the package still participates in the graph so
// every known package shows up in the final order, but it imposes no
// load-order constraint on its neighbor.
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing
	// topological ordering. From and To name one edge on the cycle; Cycle is
	// the full path, starting and ending at the same node.
	CycleError struct {
		Cycle []string
		From  string
		To    string
	}

	// Graph is a directed graph for topological sorting.
	// Nodes are identified by string keys. Edges represent "must load before"
	// relationships: an edge from A to B means A must be loaded before B.
	Graph struct {
		// adjacency maps each node to its outgoing neighbors (nodes that depend on it).
		adjacency map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []string
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to, meaning "from" must load before "to".
// Both nodes are implicitly added if they don't exist.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// TopologicalSort returns a valid load order using Kahn's algorithm.
// Returns *CycleError if the graph contains a cycle.
// The returned order is deterministic: nodes with no incoming edges are
// queued in the order they were first added to the graph, and every other
// node is queued when its last incoming edge is removed.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	// Compute in-degrees.
	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	// Seed the queue with nodes that have no incoming edges, in insertion order.
	queue := make([]string, 0)
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		remaining := make(map[string]bool)
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				remaining[node] = true
			}
		}
		return nil, g.findCycle(remaining)
	}

	return result, nil
}

// findCycle walks the subgraph induced by remaining (every node Kahn's
// algorithm failed to drain) with a DFS, returning the first cycle it finds
// as a precise path naming both endpoints of the closing edge.
func (g *Graph) findCycle(remaining map[string]bool) *CycleError {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(remaining))
	var path []string

	var visit func(node string) *CycleError
	visit = func(node string) *CycleError {
		state[node] = visiting
		path = append(path, node)

		for _, neighbor := range g.adjacency[node] {
			if !remaining[neighbor] {
				continue
			}
			switch state[neighbor] {
			case visiting:
				// Found the closing edge; trim path to the cycle itself.
				start := 0
				for i, n := range path {
					if n == neighbor {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, path[start:]...), neighbor)
				return &CycleError{Cycle: cycle, From: node, To: neighbor}
			case unvisited:
				if err := visit(neighbor); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		state[node] = done
		return nil
	}

	for _, node := range g.nodes {
		if !remaining[node] || state[node] != unvisited {
			continue
		}
		if err := visit(node); err != nil {
			return err
		}
	}

	// Should be unreachable: Kahn's algorithm only leaves nodes remaining
	// when a cycle exists among them.
	names := make([]string, 0, len(remaining))
	for node := range remaining {
		names = append(names, node)
	}
	return &CycleError{Cycle: names}
}
