package drawio

import (
	"encoding/xml"
	"os"
	"strings"

	"github.com/topotab/topotab/pkg/errors"
)

// =============================================================================
// Graph View
// =============================================================================

// Node is a vertex with absolute coordinates and the raw cell behind it.
type Node struct {
	ID    string
	Label string
	Style string

	// Absolute coordinates, parent offsets resolved.
	X, Y, W, H float64

	// ParentID is the explicit parent attribute from the file; it may point
	// at a layer rather than a container.
	ParentID string

	// Container marks swimlane-style cells that can hold other nodes.
	Container bool

	Cell *MxCell
}

// Area returns the node's bounding-box area.
func (n *Node) Area() float64 {
	return n.W * n.H
}

// Contains reports whether other lies fully inside this node's box.
func (n *Node) Contains(other *Node) bool {
	return other.X >= n.X && other.Y >= n.Y &&
		other.X+other.W <= n.X+n.W &&
		other.Y+other.H <= n.Y+n.H
}

// EdgeLabel is one label cell attached to an edge. The sign of XPosition
// (the relative position along the edge) tells which endpoint it describes:
// zero or negative is the source side, positive the target side.
type EdgeLabel struct {
	Text      string
	XPosition float64
}

// Edge is a connection with its attached labels.
type Edge struct {
	ID       string
	SourceID string
	TargetID string
	Label    string
	Labels   []EdgeLabel
	Cell     *MxCell
}

// Graph is the parsed diagram: nodes and edges in document order.
type Graph struct {
	Nodes []*Node
	Edges []*Edge

	nodeByID map[string]*Node
}

// Node looks up a node by cell id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodeByID[id]
	return n, ok
}

// Structured reports whether any cell carries data_* attributes, meaning the
// document was produced by this tool and extraction can be lossless.
func (g *Graph) Structured() bool {
	for _, n := range g.Nodes {
		if n.Cell.DataType() != "" {
			return true
		}
	}
	for _, e := range g.Edges {
		if e.Cell.DataType() != "" {
			return true
		}
	}
	return false
}

// =============================================================================
// Parsing
// =============================================================================

// ReadFile loads and parses a draw.io document from disk.
func ReadFile(path string) (*MxFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "diagram file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "read diagram %s", path)
	}
	return Parse(data)
}

// Parse decodes draw.io XML. Structural problems (not XML, no diagram, no
// graph model) are FORMAT_ERROR.
func Parse(data []byte) (*MxFile, error) {
	var file MxFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "not a draw.io document")
	}
	if len(file.Diagrams) == 0 {
		return nil, errors.New(errors.ErrCodeFormat, "draw.io document has no diagram element")
	}
	if file.Diagrams[0].Model == nil {
		return nil, errors.New(errors.ErrCodeFormat, "draw.io diagram has no mxGraphModel")
	}
	return &file, nil
}

// BuildGraph turns the first diagram into a Graph with absolute coordinates.
// Nested cells (labels inside edges) are flattened; the mxGraph root cells
// "0" and "1" are dropped.
func BuildGraph(file *MxFile) (*Graph, error) {
	if len(file.Diagrams) == 0 || file.Diagrams[0].Model == nil {
		return nil, errors.New(errors.ErrCodeFormat, "draw.io document has no graph model")
	}

	cells := flattenCells(file.Diagrams[0].Model.Root.Cells)

	g := &Graph{nodeByID: make(map[string]*Node)}
	byID := make(map[string]*MxCell, len(cells))
	for _, cell := range cells {
		byID[cell.ID] = cell
	}

	var edges []*MxCell
	for _, cell := range cells {
		switch {
		case cell.ID == "0" || cell.ID == "1":
			// mxGraph bookkeeping cells
		case cell.IsEdge():
			edges = append(edges, cell)
		case cell.IsVertex() && cell.HasStyle("edgeLabel"):
			// Edge labels are folded into their edge below.
		case cell.IsVertex() || cell.Geometry != nil:
			x, y := absolutePosition(cell, byID)
			_, _, w, h := cell.Rect()
			node := &Node{
				ID:        cell.ID,
				Label:     cell.Value,
				Style:     cell.Style,
				X:         x,
				Y:         y,
				W:         w,
				H:         h,
				ParentID:  cell.Parent,
				Container: cell.HasStyle("swimlane") || cell.DataType() == "region",
				Cell:      cell,
			}
			g.Nodes = append(g.Nodes, node)
			g.nodeByID[cell.ID] = node
		}
	}

	labelsByEdge := collectEdgeLabels(cells)
	for _, cell := range edges {
		g.Edges = append(g.Edges, &Edge{
			ID:       cell.ID,
			SourceID: cell.Source,
			TargetID: cell.Target,
			Label:    cell.Value,
			Labels:   labelsByEdge[cell.ID],
			Cell:     cell,
		})
	}
	return g, nil
}

// flattenCells lifts nested cells up into a single list, preserving document
// order and recording the structural parent for nested children that lack a
// parent attribute.
func flattenCells(cells []MxCell) []*MxCell {
	var out []*MxCell
	var walk func(cells []MxCell, parent string)
	walk = func(cells []MxCell, parent string) {
		for i := range cells {
			cell := &cells[i]
			if cell.Parent == "" && parent != "" {
				cell.Parent = parent
			}
			out = append(out, cell)
			if len(cell.Children) > 0 {
				walk(cell.Children, cell.ID)
			}
		}
	}
	walk(cells, "")
	return out
}

// collectEdgeLabels groups edgeLabel cells by their owning edge id.
func collectEdgeLabels(cells []*MxCell) map[string][]EdgeLabel {
	out := make(map[string][]EdgeLabel)
	for _, cell := range cells {
		if !cell.IsVertex() || !cell.HasStyle("edgeLabel") || cell.Parent == "" {
			continue
		}
		text := strings.TrimSpace(cell.Value)
		if text == "" {
			continue
		}
		var xPos float64
		if cell.Geometry != nil {
			xPos = geomValue(cell.Geometry.X)
		}
		out[cell.Parent] = append(out[cell.Parent], EdgeLabel{Text: text, XPosition: xPos})
	}
	return out
}

// absolutePosition resolves a cell's coordinates by walking its parent chain.
// Geometry in draw.io is relative to the parent cell; layers and the root
// carry no geometry and terminate the walk.
func absolutePosition(cell *MxCell, byID map[string]*MxCell) (x, y float64) {
	x, y, _, _ = cell.Rect()
	seen := map[string]bool{cell.ID: true}
	parentID := cell.Parent
	for parentID != "" && !seen[parentID] {
		seen[parentID] = true
		parent, ok := byID[parentID]
		if !ok {
			break
		}
		px, py, _, _ := parent.Rect()
		x += px
		y += py
		parentID = parent.Parent
	}
	return x, y
}
