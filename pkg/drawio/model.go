// Package drawio reads and writes draw.io (mxGraph) topology documents.
//
// The package covers two document flavors:
//   - structured documents written by this tool, where every cell carries
//     data_* attributes and extraction is lossless;
//   - generic documents authored by hand in draw.io, where devices and
//     regions are recovered from labels, styles, and geometry.
//
// Reading yields a Graph of nodes and edges with absolute coordinates;
// containment (which node sits inside which container) is resolved
// separately in containment.go.
package drawio

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// =============================================================================
// XML Document Model
// =============================================================================

// MxFile is the top-level draw.io document element.
type MxFile struct {
	XMLName  xml.Name  `xml:"mxfile"`
	Host     string    `xml:"host,attr,omitempty"`
	Modified string    `xml:"modified,attr,omitempty"`
	Agent    string    `xml:"agent,attr,omitempty"`
	Version  string    `xml:"version,attr,omitempty"`
	Diagrams []Diagram `xml:"diagram"`
}

// Diagram is one page of a draw.io document.
type Diagram struct {
	ID    string        `xml:"id,attr,omitempty"`
	Name  string        `xml:"name,attr,omitempty"`
	Model *MxGraphModel `xml:"mxGraphModel"`
}

// MxGraphModel holds the cell tree plus canvas settings.
type MxGraphModel struct {
	Dx         string `xml:"dx,attr,omitempty"`
	Dy         string `xml:"dy,attr,omitempty"`
	Grid       string `xml:"grid,attr,omitempty"`
	GridSize   string `xml:"gridSize,attr,omitempty"`
	Guides     string `xml:"guides,attr,omitempty"`
	Tooltips   string `xml:"tooltips,attr,omitempty"`
	Connect    string `xml:"connect,attr,omitempty"`
	Arrows     string `xml:"arrows,attr,omitempty"`
	Fold       string `xml:"fold,attr,omitempty"`
	Page       string `xml:"page,attr,omitempty"`
	PageScale  string `xml:"pageScale,attr,omitempty"`
	PageWidth  string `xml:"pageWidth,attr,omitempty"`
	PageHeight string `xml:"pageHeight,attr,omitempty"`
	Math       string `xml:"math,attr,omitempty"`
	Shadow     string `xml:"shadow,attr,omitempty"`
	Root       MxRoot `xml:"root"`
}

// MxRoot contains the flat cell list.
type MxRoot struct {
	Cells []MxCell `xml:"mxCell"`
}

// MxCell is a vertex, edge, or label cell. Structured topology data travels
// in data_* attributes, captured by the Extra catch-all.
type MxCell struct {
	ID          string      `xml:"id,attr"`
	Value       string      `xml:"value,attr,omitempty"`
	Style       string      `xml:"style,attr,omitempty"`
	Vertex      string      `xml:"vertex,attr,omitempty"`
	Edge        string      `xml:"edge,attr,omitempty"`
	Parent      string      `xml:"parent,attr,omitempty"`
	Source      string      `xml:"source,attr,omitempty"`
	Target      string      `xml:"target,attr,omitempty"`
	Connectable string      `xml:"connectable,attr,omitempty"`
	Extra       []xml.Attr  `xml:",any,attr"`
	Geometry    *MxGeometry `xml:"mxGeometry"`

	// Children holds nested cells. draw.io usually keeps the cell list
	// flat, but hand-edited files sometimes nest edge labels inside edges.
	Children []MxCell `xml:"mxCell"`
}

// MxGeometry is a cell's geometry. Values stay strings, exactly as draw.io
// writes them.
type MxGeometry struct {
	X        string      `xml:"x,attr,omitempty"`
	Y        string      `xml:"y,attr,omitempty"`
	Width    string      `xml:"width,attr,omitempty"`
	Height   string      `xml:"height,attr,omitempty"`
	Relative string      `xml:"relative,attr,omitempty"`
	As       string      `xml:"as,attr,omitempty"`
	Points   *PointArray `xml:"Array"`
	Extra    []MxPoint   `xml:"mxPoint"`
}

// PointArray is the edge waypoint list.
type PointArray struct {
	As     string    `xml:"as,attr,omitempty"`
	Points []MxPoint `xml:"mxPoint"`
}

// MxPoint is a coordinate pair with an optional role.
type MxPoint struct {
	X  string `xml:"x,attr,omitempty"`
	Y  string `xml:"y,attr,omitempty"`
	As string `xml:"as,attr,omitempty"`
}

// =============================================================================
// Cell Helpers
// =============================================================================

// Attr returns a catch-all attribute by name, "" when absent.
func (c *MxCell) Attr(name string) string {
	for _, a := range c.Extra {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether a catch-all attribute is present, even when empty.
func (c *MxCell) HasAttr(name string) bool {
	for _, a := range c.Extra {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces a catch-all attribute.
func (c *MxCell) SetAttr(name, value string) {
	for i, a := range c.Extra {
		if a.Name.Local == name {
			c.Extra[i].Value = value
			return
		}
	}
	c.Extra = append(c.Extra, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// DataType returns the structured cell kind (region, device, link), "" for
// generic cells.
func (c *MxCell) DataType() string {
	return c.Attr("data_type")
}

// IsVertex reports whether the cell is a vertex.
func (c *MxCell) IsVertex() bool {
	return c.Vertex == "1"
}

// IsEdge reports whether the cell is an edge.
func (c *MxCell) IsEdge() bool {
	return c.Edge == "1"
}

// HasStyle reports whether the style string contains the given token.
func (c *MxCell) HasStyle(token string) bool {
	return strings.Contains(c.Style, token)
}

// geomValue parses a geometry attribute, returning 0 for "" or junk.
func geomValue(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// Rect returns the cell's geometry as floats (relative to its parent).
func (c *MxCell) Rect() (x, y, w, h float64) {
	if c.Geometry == nil {
		return 0, 0, 0, 0
	}
	return geomValue(c.Geometry.X), geomValue(c.Geometry.Y),
		geomValue(c.Geometry.Width), geomValue(c.Geometry.Height)
}

// formatCoord renders a pixel coordinate the way draw.io writes integers.
func formatCoord(v int) string {
	return strconv.Itoa(v)
}
