package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/RoaringBitmap/roaring"

	"assetmaid.dev/pkg/assetmaid/internal/adapter"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// Graph is the deduplicated node set of one scan and its reachable partition.
// Nodes are in scan order: reachable nodes in traversal order, then unreachable
// inventory nodes in inventory order.
type Graph struct {
	Roots []m.Path
	Nodes []m.Path

	index     map[m.Path]uint32
	reachable *roaring.Bitmap
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// Contains reports whether path is a node.
func (g *Graph) Contains(path m.Path) bool {
	_, ok := g.index[path]
	return ok
}

// IsReachable reports whether path is a reachable node.
func (g *Graph) IsReachable(path m.Path) bool {
	idx, ok := g.index[path]
	return ok && g.reachable.Contains(idx)
}

// ReachableCount returns the size of the reachable set.
func (g *Graph) ReachableCount() int {
	return int(g.reachable.GetCardinality())
}

// Reachable returns the reachable nodes in scan order.
func (g *Graph) Reachable() []m.Path {
	out := make([]m.Path, 0, g.ReachableCount())

	it := g.reachable.Iterator()
	for it.HasNext() {
		out = append(out, g.Nodes[it.Next()])
	}

	return out
}

// Unreachable returns the unreachable nodes in scan order.
func (g *Graph) Unreachable() []m.Path {
	out := make([]m.Path, 0, len(g.Nodes)-g.ReachableCount())

	for i, node := range g.Nodes {
		if !g.reachable.Contains(uint32(i)) {
			out = append(out, node)
		}
	}

	return out
}

func (g *Graph) add(path m.Path, reachable bool) {
	if _, ok := g.index[path]; ok {
		return
	}

	idx := uint32(len(g.Nodes))
	g.index[path] = idx
	g.Nodes = append(g.Nodes, path)

	if reachable {
		g.reachable.Add(idx)
	}
}

// BuildGraph walks the dependency closure of roots with an explicit stack and a visited
// set, then adds every inventory path not discovered as unreachable. Root documents are
// always nodes; every other path must pass filter.
func BuildGraph(
	ctx context.Context,
	deps adapter.DependencyProvider,
	roots []m.Path,
	inventory []m.Path,
	filter *PathFilter,
) (*Graph, error) {
	sortedRoots := uniqueSorted(roots)
	if len(sortedRoots) == 0 {
		return nil, ErrUnresolvableRoot
	}

	graph := &Graph{
		Roots:     sortedRoots,
		index:     make(map[m.Path]uint32),
		reachable: roaring.New(),
	}

	isRoot := make(map[m.Path]bool, len(sortedRoots))
	for _, root := range sortedRoots {
		isRoot[root] = true
	}

	visited := make(map[m.Path]struct{})
	stack := make([]m.Path, 0, len(sortedRoots))

	for i := len(sortedRoots) - 1; i >= 0; i-- {
		stack = append(stack, sortedRoots[i])
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[current]; seen {
			continue
		}

		visited[current] = struct{}{}

		if isRoot[current] || filter.Include(current) {
			graph.add(current, true)
		}

		refs, err := deps.ResolveDependencies(ctx, current)
		if err != nil {
			if errors.Is(err, adapter.ErrResourceMissing) {
				slog.Warn("dependency source missing", "path", current)
				continue
			}

			return nil, fmt.Errorf("resolve dependencies of %s: %w", current, err)
		}

		refs = uniqueSorted(refs)
		for i := len(refs) - 1; i >= 0; i-- {
			if _, seen := visited[refs[i]]; !seen {
				stack = append(stack, refs[i])
			}
		}
	}

	for _, path := range inventory {
		if filter.Include(path) {
			graph.add(path, false)
		}
	}

	slog.Debug("dependency graph built",
		"roots", len(sortedRoots),
		"nodes", graph.Len(),
		"reachable", graph.ReachableCount(),
	)

	return graph, nil
}

func uniqueSorted(paths []m.Path) []m.Path {
	out := make([]m.Path, 0, len(paths))
	seen := make(map[m.Path]struct{}, len(paths))

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, ok := seen[path]; ok {
			continue
		}

		seen[path] = struct{}{}
		out = append(out, path)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
