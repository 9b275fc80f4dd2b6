// Package extract converts parsed draw.io documents into the topology model.
//
// Two paths exist. Structured documents, written by this tool, carry data_*
// attributes on every cell and convert losslessly. Generic documents, drawn by
// hand, are recovered best-effort from labels, styles, and geometry: swimlanes
// become regions, labeled boxes become devices, and edge labels yield port
// attributes. Elements that cannot be resolved are skipped and reported, never
// fatal.
package extract

import (
	"regexp"
	"strings"

	"github.com/topotab/topotab/pkg/drawio"
	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/report"
	"github.com/topotab/topotab/pkg/schema"
	"github.com/topotab/topotab/pkg/topology"
)

// FromFile converts a parsed draw.io document into a topology. The structured
// path is taken whenever any cell carries data_* attributes.
func FromFile(file *drawio.MxFile, cfg *schema.Config, rep *report.Report) (*topology.Topology, error) {
	g, err := drawio.BuildGraph(file)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = schema.Default()
	}
	if g.Structured() {
		return fromStructured(g, rep), nil
	}
	return fromGeneric(g, cfg, rep), nil
}

// =============================================================================
// Structured Path
// =============================================================================

// fromStructured rebuilds the topology from data_* attributes. Regions first,
// then devices, then links, so link endpoints always resolve against a
// complete device set.
func fromStructured(g *drawio.Graph, rep *report.Report) *topology.Topology {
	topo := topology.New()

	for _, n := range g.Nodes {
		if n.Cell.DataType() != "region" {
			continue
		}
		name := n.Cell.Attr("data_name")
		if name == "" {
			name = strings.Join(stripHTML(n.Label), " ")
		}
		topo.EnsureRegion(name, n.Cell.Attr("data_parent_name"))
	}

	deviceByCell := make(map[string]*topology.Device)
	for _, n := range g.Nodes {
		if n.Cell.DataType() != "device" {
			continue
		}
		dev := &topology.Device{
			Name:      n.Cell.Attr("data_device_name"),
			MgmtAddr:  n.Cell.Attr("data_management_address"),
			Region:    n.Cell.Attr("data_region"),
			Parent:    n.Cell.Attr("data_parent_region"),
			Model:     n.Cell.Attr("data_device_model"),
			Type:      n.Cell.Attr("data_device_type"),
			Cabinet:   n.Cell.Attr("data_cabinet"),
			UPosition: n.Cell.Attr("data_u_position"),
		}
		if dev.Name == "" {
			if rep != nil {
				rep.Error(errors.ErrCodeMissingDeviceIdentity, n.ID,
					"device cell has no device name; skipping")
			}
			continue
		}
		if dev.Parent != "" {
			topo.EnsureRegion(dev.Parent, "")
		}
		deviceByCell[n.ID] = topo.EnsureDevice(dev)
	}

	for _, e := range g.Edges {
		if e.Cell.DataType() != "link" {
			continue
		}
		src, srcOK := deviceByCell[e.SourceID]
		dst, dstOK := deviceByCell[e.TargetID]
		if !srcOK || !dstOK {
			if rep != nil {
				rep.Error(errors.ErrCodeUnresolvedEndpoint, e.ID,
					"link endpoints do not resolve to devices (source: %v, target: %v)", srcOK, dstOK)
			}
			continue
		}

		link := &topology.Link{
			Sequence:  e.Cell.Attr("data_sequence"),
			Usage:     e.Cell.Attr("data_usage"),
			CableType: e.Cell.Attr("data_cable_type"),
			Bandwidth: e.Cell.Attr("data_bandwidth"),
			Note:      e.Cell.Attr("data_remark"),
			Source:    endpointFromAttrs(e.Cell, "data_src_", src),
			Target:    endpointFromAttrs(e.Cell, "data_dst_", dst),
		}
		for _, attr := range e.Cell.Extra {
			if name, ok := strings.CutPrefix(attr.Name.Local, "data_extra_"); ok {
				if link.Extra == nil {
					link.Extra = make(map[string]string)
				}
				link.Extra[name] = attr.Value
			}
		}
		topo.AddLink(link)
	}

	return topo
}

// endpointFromAttrs reads one endpoint from prefixed edge attributes. Device
// identity and placement fall back to the resolved device when the edge was
// edited by hand and lost an attribute; port attributes never fall back.
func endpointFromAttrs(cell *drawio.MxCell, prefix string, dev *topology.Device) topology.Endpoint {
	attrOr := func(name, fallback string) string {
		if cell.HasAttr(prefix + name) {
			return cell.Attr(prefix + name)
		}
		return fallback
	}
	return topology.Endpoint{
		Device:      attrOr("device_name", dev.Name),
		MgmtAddr:    attrOr("management_address", dev.MgmtAddr),
		Parent:      attrOr("parent_region", dev.Parent),
		Region:      attrOr("region", dev.Region),
		Model:       attrOr("device_model", dev.Model),
		DeviceType:  attrOr("device_type", dev.Type),
		Cabinet:     attrOr("cabinet", dev.Cabinet),
		UPosition:   attrOr("u_position", dev.UPosition),
		PortChannel: cell.Attr(prefix + "port_channel"),
		Interface:   cell.Attr(prefix + "physical_interface"),
		VRF:         cell.Attr(prefix + "vrf"),
		VLAN:        cell.Attr(prefix + "vlan"),
		InterfaceIP: cell.Attr(prefix + "interface_ip"),
	}
}

// =============================================================================
// Generic Path
// =============================================================================

// fromGeneric recovers a topology from a hand-drawn diagram: swimlanes are
// regions, labeled non-container vertices are devices, edges are links.
func fromGeneric(g *drawio.Graph, cfg *schema.Config, rep *report.Report) *topology.Topology {
	topo := topology.New()
	tree := drawio.BuildTree(g, rep)

	for _, n := range g.Nodes {
		if !n.Container {
			continue
		}
		name := containerName(n)
		if name == "" {
			continue
		}
		parent := ""
		if p := tree.Parent(n.ID); p != nil {
			parent = containerName(p)
		}
		topo.EnsureRegion(name, parent)
	}

	deviceByCell := make(map[string]*topology.Device)
	for _, n := range g.Nodes {
		if n.Container || strings.TrimSpace(n.Label) == "" {
			continue
		}
		if !isDeviceShape(n) {
			continue
		}

		name, mgmt, model := parseDeviceLabel(n.Label)
		if name == "" {
			if rep != nil {
				rep.Warn(errors.ErrCodeUnparsedLabel, n.ID,
					"vertex label %q yields no device name; skipping", n.Label)
			}
			continue
		}

		region, parent := regionOf(tree, n)
		dev := topo.EnsureDevice(&topology.Device{
			Name:     name,
			MgmtAddr: mgmt,
			Model:    model,
			Region:   region,
			Parent:   parent,
		})
		deviceByCell[n.ID] = dev
	}

	for _, e := range g.Edges {
		src, srcOK := deviceByCell[e.SourceID]
		dst, dstOK := deviceByCell[e.TargetID]
		if !srcOK || !dstOK {
			if rep != nil {
				rep.Error(errors.ErrCodeUnresolvedEndpoint, e.ID,
					"edge endpoints do not resolve to devices (source: %v, target: %v)", srcOK, dstOK)
			}
			continue
		}
		if src.Key() == dst.Key() {
			if rep != nil {
				rep.Warn(errors.ErrCodeUnresolvedEndpoint, e.ID,
					"edge connects device %s to itself; skipping", src.Name)
			}
			continue
		}

		source := endpointFromDevice(src)
		target := endpointFromDevice(dst)
		for _, label := range e.Labels {
			// Labels on the first half of the edge describe the source
			// side, the rest the target side.
			if label.XPosition <= 0 {
				parsePortInfo(label.Text, cfg.PortKeywords, &source)
			} else {
				parsePortInfo(label.Text, cfg.PortKeywords, &target)
			}
		}

		if edgeDirection(e.Cell.Style) == directionReverse {
			source, target = target, source
		}
		topo.AddLink(&topology.Link{Source: source, Target: target})
	}

	return topo
}

// containerName returns a container's visible name with markup stripped.
func containerName(n *drawio.Node) string {
	return strings.Join(stripHTML(n.Label), " ")
}

// isDeviceShape filters vertices that plausibly depict devices: plain boxes,
// not edge decorations or unnamed geometry.
func isDeviceShape(n *drawio.Node) bool {
	if n.Cell.IsEdge() || n.Cell.HasStyle("edgeLabel") {
		return false
	}
	return n.Cell.IsVertex() || n.Cell.HasStyle("rounded=1") || n.Cell.HasStyle("whiteSpace=wrap")
}

// regionOf resolves a node's owning region and that region's parent from the
// containment chain, innermost container first.
func regionOf(tree *drawio.Tree, n *drawio.Node) (region, parent string) {
	var names []string
	for _, container := range tree.Chain(n.ID) {
		if name := containerName(container); name != "" {
			names = append(names, name)
		}
	}
	switch {
	case len(names) >= 2:
		return names[0], names[1]
	case len(names) == 1:
		return names[0], ""
	default:
		return "", ""
	}
}

// endpointFromDevice seeds an endpoint with a device's identity and placement.
func endpointFromDevice(dev *topology.Device) topology.Endpoint {
	return topology.Endpoint{
		Device:     dev.Name,
		MgmtAddr:   dev.MgmtAddr,
		Region:     dev.Region,
		Parent:     dev.Parent,
		Model:      dev.Model,
		DeviceType: dev.Type,
		Cabinet:    dev.Cabinet,
		UPosition:  dev.UPosition,
	}
}

// =============================================================================
// Edge Direction
// =============================================================================

type direction int

const (
	directionForward direction = iota
	directionReverse
	directionBidirectional
	directionNone
)

var (
	startArrowPattern = regexp.MustCompile(`startArrow=([^;]+)`)
	endArrowPattern   = regexp.MustCompile(`endArrow=([^;]+)`)
)

// edgeDirection reads arrow decorations from an edge style. An arrow only at
// the source end means the drawn direction is reversed.
func edgeDirection(style string) direction {
	hasStart := false
	if m := startArrowPattern.FindStringSubmatch(style); m != nil {
		hasStart = m[1] != "none"
	}
	hasEnd := false
	if m := endArrowPattern.FindStringSubmatch(style); m != nil {
		hasEnd = m[1] != "none"
	}

	switch {
	case hasEnd && !hasStart:
		return directionForward
	case hasStart && !hasEnd:
		return directionReverse
	case hasStart && hasEnd:
		return directionBidirectional
	default:
		return directionNone
	}
}
