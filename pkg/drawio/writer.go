package drawio

import (
	"encoding/xml"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/layout"
	"github.com/topotab/topotab/pkg/report"
	"github.com/topotab/topotab/pkg/schema"
	"github.com/topotab/topotab/pkg/topology"
)

// =============================================================================
// Writer
// =============================================================================

// Writer renders a topology into a draw.io document. Cell ids, ordering, and
// coordinates are deterministic for a given topology; only the mxfile
// Modified timestamp varies between runs.
type Writer struct {
	Styles schema.StyleConfig

	counter      int
	multiplicity map[string]int
	cells        []MxCell
}

// NewWriter returns a writer using the given cell styles.
func NewWriter(styles schema.StyleConfig) *Writer {
	return &Writer{
		Styles:       styles,
		counter:      2,
		multiplicity: make(map[string]int),
	}
}

// newID mints the next cell id with the given prefix. A single counter spans
// all prefixes, matching the id scheme structured readers expect.
func (w *Writer) newID(prefix string) string {
	id := fmt.Sprintf("%s_%d", prefix, w.counter)
	w.counter++
	return id
}

// Write builds the complete document for a topology. Links whose endpoints
// did not materialize as devices are skipped with a diagnostic.
func (w *Writer) Write(topo *topology.Topology, rep *report.Report) (*MxFile, error) {
	if topo == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil topology")
	}

	res := layout.Compute(topo)

	w.cells = []MxCell{
		{ID: "0"},
		{ID: "1", Parent: "0"},
	}

	regionIDs := w.writeRegions(topo, res)
	deviceIDs := w.writeDevices(topo, res, regionIDs)
	w.writeLinks(topo, deviceIDs, rep)

	file := &MxFile{
		Host:     "app.diagrams.net",
		Modified: time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		Agent:    "topotab",
		Version:  "1.0",
		Diagrams: []Diagram{{
			ID:   "topology",
			Name: "Topology",
			Model: &MxGraphModel{
				Dx: "1000", Dy: "1000",
				Grid: "1", GridSize: "10",
				Guides: "1", Tooltips: "1", Connect: "1", Arrows: "1",
				Fold: "1", Page: "1", PageScale: "1",
				PageWidth: "1654", PageHeight: "2339",
				Math: "0", Shadow: "0",
				Root: MxRoot{Cells: w.cells},
			},
		}},
	}
	return file, nil
}

// writeRegions emits region swimlanes parents-first, with coordinates
// relative to the parent region.
func (w *Writer) writeRegions(topo *topology.Topology, res *layout.Result) map[string]string {
	regionIDs := make(map[string]string, len(res.RegionOrder))
	for _, key := range res.RegionOrder {
		region, ok := topo.Region(key)
		if !ok {
			continue
		}
		rect := res.Regions[key]

		parentCellID := "1"
		relX, relY := rect.X, rect.Y
		if region.Parent != "" {
			parentKey := parentRegionKey(topo, region)
			if id, ok := regionIDs[parentKey]; ok {
				parentCellID = id
				parentRect := res.Regions[parentKey]
				relX -= parentRect.X
				relY -= parentRect.Y
			}
		}

		cell := MxCell{
			ID:     w.newID("region"),
			Value:  html.EscapeString(region.Name),
			Style:  w.Styles.Region,
			Vertex: "1",
			Parent: parentCellID,
			Geometry: &MxGeometry{
				X:      formatCoord(relX),
				Y:      formatCoord(relY),
				Width:  formatCoord(rect.W),
				Height: formatCoord(rect.H),
				As:     "geometry",
			},
		}
		cell.SetAttr("data_type", "region")
		cell.SetAttr("data_name", region.Name)
		cell.SetAttr("data_parent_name", region.Parent)
		w.cells = append(w.cells, cell)
		regionIDs[key] = cell.ID
	}
	return regionIDs
}

// parentRegionKey resolves the scoped key of a region's parent. Parents are
// stored by name; the grandparent name is recovered from the region set.
func parentRegionKey(topo *topology.Topology, region *topology.Region) string {
	for _, candidate := range topo.Regions() {
		if candidate.Name == region.Parent {
			return candidate.Key()
		}
	}
	return topology.RegionKey("", region.Parent)
}

// writeDevices emits device vertices grouped under their region cells.
func (w *Writer) writeDevices(topo *topology.Topology, res *layout.Result, regionIDs map[string]string) map[string]string {
	// Deterministic order: region draw order, then device key order.
	keys := make([]string, 0, len(res.Devices))
	for key := range res.Devices {
		keys = append(keys, key)
	}
	regionRank := make(map[string]int, len(res.RegionOrder))
	for i, key := range res.RegionOrder {
		regionRank[key] = i
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := res.Devices[keys[i]], res.Devices[keys[j]]
		if a.RegionKey != b.RegionKey {
			return regionRank[a.RegionKey] < regionRank[b.RegionKey]
		}
		return keys[i] < keys[j]
	})

	deviceIDs := make(map[string]string, len(keys))
	for _, key := range keys {
		dev, ok := topo.Device(key)
		if !ok {
			continue
		}
		placement := res.Devices[key]
		regionRect := res.Regions[placement.RegionKey]

		cell := MxCell{
			ID:     w.newID("device"),
			Value:  deviceLabel(dev),
			Style:  w.Styles.Device,
			Vertex: "1",
			Parent: regionIDs[placement.RegionKey],
			Geometry: &MxGeometry{
				X:      formatCoord(placement.Rect.X - regionRect.X),
				Y:      formatCoord(placement.Rect.Y - regionRect.Y),
				Width:  formatCoord(placement.Rect.W),
				Height: formatCoord(placement.Rect.H),
				As:     "geometry",
			},
		}
		if cell.Parent == "" {
			cell.Parent = "1"
		}
		cell.SetAttr("data_type", "device")
		cell.SetAttr("data_device_name", dev.Name)
		cell.SetAttr("data_management_address", dev.MgmtAddr)
		cell.SetAttr("data_region", dev.Region)
		cell.SetAttr("data_parent_region", dev.Parent)
		cell.SetAttr("data_device_model", dev.Model)
		cell.SetAttr("data_device_type", dev.Type)
		cell.SetAttr("data_cabinet", dev.Cabinet)
		cell.SetAttr("data_u_position", dev.UPosition)
		w.cells = append(w.cells, cell)
		deviceIDs[key] = cell.ID
	}
	return deviceIDs
}

// writeLinks emits one edge per link plus per-endpoint labels.
func (w *Writer) writeLinks(topo *topology.Topology, deviceIDs map[string]string, rep *report.Report) {
	for i, link := range topo.Links() {
		srcID, srcOK := deviceIDs[link.Source.DeviceKey()]
		dstID, dstOK := deviceIDs[link.Target.DeviceKey()]
		if !srcOK || !dstOK {
			if rep != nil {
				rep.Error(errors.ErrCodeUnresolvedEndpoint, fmt.Sprintf("link %d", i+1),
					"endpoint device missing from diagram (source: %v, target: %v)", srcOK, dstOK)
			}
			continue
		}

		cell := MxCell{
			ID:     w.newID("edge"),
			Edge:   "1",
			Parent: "1",
			Source: srcID,
			Target: dstID,
			Style:  w.Styles.Edge,
		}
		w.setLinkData(&cell, link)

		geometry := &MxGeometry{Relative: "1", As: "geometry"}
		if offset := w.nextEdgeOffset(srcID, dstID); offset != 0 {
			geometry.Points = &PointArray{
				As:     "points",
				Points: []MxPoint{{X: formatCoord(offset), Y: "0"}},
			}
		}
		geometry.Extra = []MxPoint{{X: "0", Y: "0", As: "targetPoint"}}
		cell.Geometry = geometry
		w.cells = append(w.cells, cell)

		if text := endpointLabel(&link.Source); text != "" {
			w.writeEdgeLabel(cell.ID, text, -0.8, true)
		}
		if text := endpointLabel(&link.Target); text != "" {
			w.writeEdgeLabel(cell.ID, text, 0.8, false)
		}
	}
}

// setLinkData attaches the full structured record to an edge cell.
func (w *Writer) setLinkData(cell *MxCell, link *topology.Link) {
	cell.SetAttr("data_type", "link")
	cell.SetAttr("data_sequence", link.Sequence)
	cell.SetAttr("data_usage", link.Usage)
	cell.SetAttr("data_cable_type", link.CableType)
	cell.SetAttr("data_bandwidth", link.Bandwidth)
	cell.SetAttr("data_remark", link.Note)
	setEndpointData(cell, "data_src_", &link.Source)
	setEndpointData(cell, "data_dst_", &link.Target)

	extraKeys := make([]string, 0, len(link.Extra))
	for key := range link.Extra {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		if value := link.Extra[key]; value != "" {
			cell.SetAttr("data_extra_"+strings.ReplaceAll(key, " ", "_"), value)
		}
	}
}

// setEndpointData writes one endpoint's fields under a prefix.
func setEndpointData(cell *MxCell, prefix string, ep *topology.Endpoint) {
	cell.SetAttr(prefix+"device_name", ep.Device)
	cell.SetAttr(prefix+"management_address", ep.MgmtAddr)
	cell.SetAttr(prefix+"parent_region", ep.Parent)
	cell.SetAttr(prefix+"region", ep.Region)
	cell.SetAttr(prefix+"device_model", ep.Model)
	cell.SetAttr(prefix+"device_type", ep.DeviceType)
	cell.SetAttr(prefix+"cabinet", ep.Cabinet)
	cell.SetAttr(prefix+"u_position", ep.UPosition)
	cell.SetAttr(prefix+"port_channel", ep.PortChannel)
	cell.SetAttr(prefix+"physical_interface", ep.Interface)
	cell.SetAttr(prefix+"vrf", ep.VRF)
	cell.SetAttr(prefix+"vlan", ep.VLAN)
	cell.SetAttr(prefix+"interface_ip", ep.InterfaceIP)
}

// nextEdgeOffset spreads parallel edges between the same device pair apart
// with alternating waypoint offsets: 0, -80, +80, -160, +160, ...
func (w *Writer) nextEdgeOffset(srcID, dstID string) int {
	a, b := srcID, dstID
	if b < a {
		a, b = b, a
	}
	key := a + "|" + b
	index := w.multiplicity[key]
	w.multiplicity[key]++
	if index == 0 {
		return 0
	}
	step := (index + 1) / 2
	if index%2 == 1 {
		return -step * 80
	}
	return step * 80
}

// writeEdgeLabel emits a label cell positioned along its edge.
func (w *Writer) writeEdgeLabel(edgeID, text string, xPos float64, source bool) {
	offsetX := 20
	if source {
		offsetX = -20
	}
	cell := MxCell{
		ID:          w.newID("edgeLabel"),
		Value:       text,
		Style:       w.Styles.EdgeLabel,
		Vertex:      "1",
		Connectable: "0",
		Parent:      edgeID,
		Geometry: &MxGeometry{
			X:        strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", xPos), "0"), "."),
			Y:        "0",
			Relative: "1",
			As:       "geometry",
			Extra:    []MxPoint{{X: formatCoord(offsetX), Y: "-15", As: "offset"}},
		},
	}
	w.cells = append(w.cells, cell)
}

// deviceLabel renders the visible HTML label for a device vertex.
func deviceLabel(dev *topology.Device) string {
	name := dev.Name
	if name == "" {
		name = "Unnamed device"
	}
	name = html.EscapeString(name)
	if mgmt := strings.TrimSpace(dev.MgmtAddr); mgmt != "" {
		return fmt.Sprintf("<div><b>%s</b><br/>%s</div>", name, html.EscapeString(mgmt))
	}
	return fmt.Sprintf("<div><b>%s</b></div>", name)
}

// endpointLabel renders the per-endpoint edge label, one port attribute per
// line.
func endpointLabel(ep *topology.Endpoint) string {
	var parts []string
	if ep.PortChannel != "" {
		parts = append(parts, "PC"+ep.PortChannel)
	}
	if ep.Interface != "" {
		parts = append(parts, ep.Interface)
	}
	if ep.VRF != "" {
		parts = append(parts, "VRF:"+ep.VRF)
	}
	if ep.VLAN != "" {
		parts = append(parts, "VLAN:"+ep.VLAN)
	}
	if ep.InterfaceIP != "" {
		parts = append(parts, ep.InterfaceIP)
	}
	return strings.Join(parts, "<br/>")
}

// Marshal renders a document as draw.io XML with the standard declaration.
func Marshal(file *MxFile) ([]byte, error) {
	body, err := xml.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal diagram")
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, []byte(xml.Header)...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
