// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import "sort"

// An Edge is a directed edge between two blocks, identified by label.
type Edge struct {
	From, To string
}

// Reachable returns the set of block labels reachable from the entry
// block by following successor edges.
func (g *Graph) Reachable() map[string]bool {
	visited := map[string]bool{}
	if _, ok := g.Blocks[g.Entry]; !ok {
		return visited
	}
	stack := []string{g.Entry}
	for len(stack) > 0 {
		label := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[label] {
			continue
		}
		if _, ok := g.Blocks[label]; !ok {
			continue
		}
		visited[label] = true
		stack = append(stack, g.Succs(label)...)
	}
	return visited
}

// MarkUnreachable sets the Unreachable flag on every block no path
// from the entry reaches. The graph itself is not pruned.
func (g *Graph) MarkUnreachable() {
	reachable := g.Reachable()
	for label, b := range g.Blocks {
		b.Unreachable = !reachable[label]
	}
}

// BackEdges finds the back edges of the graph: edges whose target is
// an ancestor of their source in a depth-first traversal. The search
// starts at the entry block and restarts from any block the first
// pass missed, so cycles in unreachable components are still found.
func (g *Graph) BackEdges() []Edge {
	var edges []Edge
	visited := map[string]bool{}
	onStack := map[string]bool{}

	var dfs func(label string)
	dfs = func(label string) {
		if _, ok := g.Blocks[label]; !ok {
			return
		}
		visited[label] = true
		onStack[label] = true
		for _, succ := range g.Succs(label) {
			if onStack[succ] {
				edges = append(edges, Edge{label, succ})
			} else if !visited[succ] {
				dfs(succ)
			}
		}
		onStack[label] = false
	}

	if _, ok := g.Blocks[g.Entry]; ok {
		dfs(g.Entry)
	}
	for _, label := range g.Order {
		if !visited[label] {
			dfs(label)
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Loops returns the vertex set of each cycle closed by a back edge
// found on a depth-first walk from the entry block: the path suffix
// from the back edge's target through its source. Distinct back edges
// can yield overlapping or equal sets; nothing is de-duplicated.
func (g *Graph) Loops() []map[string]bool {
	var loops []map[string]bool
	visited := map[string]bool{}
	onStack := map[string]bool{}
	var path []string

	var dfs func(label string)
	dfs = func(label string) {
		if onStack[label] {
			loop := map[string]bool{}
			for i := len(path) - 1; i >= 0; i-- {
				loop[path[i]] = true
				if path[i] == label {
					break
				}
			}
			loops = append(loops, loop)
			return
		}
		if visited[label] {
			return
		}
		if _, ok := g.Blocks[label]; !ok {
			return
		}
		visited[label] = true
		onStack[label] = true
		path = append(path, label)
		for _, succ := range g.Succs(label) {
			dfs(succ)
		}
		path = path[:len(path)-1]
		onStack[label] = false
	}

	if _, ok := g.Blocks[g.Entry]; ok {
		dfs(g.Entry)
	}
	return loops
}
