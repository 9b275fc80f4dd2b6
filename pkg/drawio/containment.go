package drawio

import (
	"sort"

	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/report"
)

// Tree is the resolved containment hierarchy of a diagram: for every node,
// which container (if any) it belongs to. It is computed once per document
// and is guaranteed acyclic.
type Tree struct {
	// parents maps node id -> containing node id ("" for top level).
	parents map[string]string
	graph   *Graph
}

// Parent returns the containing container's node, or nil for top level.
func (t *Tree) Parent(id string) *Node {
	parentID := t.parents[id]
	if parentID == "" {
		return nil
	}
	n, _ := t.graph.Node(parentID)
	return n
}

// Chain returns the containment chain for a node, innermost first.
func (t *Tree) Chain(id string) []*Node {
	var chain []*Node
	seen := map[string]bool{id: true}
	for {
		parent := t.Parent(id)
		if parent == nil || seen[parent.ID] {
			return chain
		}
		seen[parent.ID] = true
		chain = append(chain, parent)
		id = parent.ID
	}
}

// BuildTree resolves containment for every node. An explicit parent attribute
// pointing at a container wins; otherwise the node belongs to the smallest
// container whose box fully encloses it. Equal-area candidates are ordered by
// node id, and the ambiguity is reported rather than silently guessed.
func BuildTree(g *Graph, rep *report.Report) *Tree {
	t := &Tree{parents: make(map[string]string), graph: g}

	var containers []*Node
	for _, n := range g.Nodes {
		if n.Container {
			containers = append(containers, n)
		}
	}

	for _, n := range g.Nodes {
		// Explicit parent wins when it names a container.
		if parent, ok := g.Node(n.ParentID); ok && parent.Container && parent.ID != n.ID {
			t.parents[n.ID] = parent.ID
			continue
		}

		t.parents[n.ID] = smallestEnclosing(n, containers, rep)
	}

	t.breakCycles(rep)
	return t
}

// smallestEnclosing picks the containment parent for a node from the
// geometric candidates.
func smallestEnclosing(n *Node, containers []*Node, rep *report.Report) string {
	var candidates []*Node
	for _, c := range containers {
		if c.ID == n.ID {
			continue
		}
		if c.Contains(n) && c.Area() > n.Area() {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Area() != candidates[j].Area() {
			return candidates[i].Area() < candidates[j].Area()
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > 1 && candidates[0].Area() == candidates[1].Area() && rep != nil {
		rep.Warn(errors.ErrCodeAmbiguousContainment, n.ID,
			"containers %s and %s enclose the node with identical area; picking %s by id",
			candidates[0].ID, candidates[1].ID, candidates[0].ID)
	}
	return candidates[0].ID
}

// breakCycles guards against parent loops that explicit parent attributes in
// a hand-edited file could introduce. Geometry-based containment is strictly
// shrinking and cannot cycle.
func (t *Tree) breakCycles(rep *report.Report) {
	for id := range t.parents {
		seen := map[string]bool{id: true}
		current := id
		for {
			parent := t.parents[current]
			if parent == "" {
				break
			}
			if seen[parent] {
				if rep != nil {
					rep.Warn(errors.ErrCodeAmbiguousContainment, current,
						"containment cycle through %s; detaching", parent)
				}
				t.parents[current] = ""
				break
			}
			seen[parent] = true
			current = parent
		}
	}
}
