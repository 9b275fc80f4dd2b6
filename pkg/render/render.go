// Package render produces preview images of a topology.
//
// Previews are for humans checking a conversion result at a glance; the
// draw.io document stays the canonical diagram. The topology is first
// expressed as Graphviz DOT, with one cluster subgraph per region, and then
// rasterized through Graphviz.
//
//	dot := render.ToDOT(topo)
//	svg, err := render.SVG(ctx, dot)
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/observability"
	"github.com/topotab/topotab/pkg/topology"
)

// =============================================================================
// DOT Generation
// =============================================================================

// ToDOT expresses a topology as Graphviz DOT. Regions become nested cluster
// subgraphs, devices become boxes labeled with name and management address,
// and links become edges labeled with their interfaces.
func ToDOT(topo *topology.Topology) string {
	var buf bytes.Buffer
	buf.WriteString("graph topology {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"#dae8fc\", fontsize=12];\n")
	buf.WriteString("  edge [fontsize=9];\n")
	buf.WriteString("\n")

	placed := make(map[string]bool)
	seen := make(map[string]bool)
	var clusterID int
	for _, region := range sortedRoots(topo) {
		writeRegion(&buf, topo, region, "  ", &clusterID, placed, seen)
	}
	for _, dev := range topo.Devices() {
		if !placed[dev.Key()] {
			writeDevice(&buf, dev, "  ")
		}
	}

	buf.WriteString("\n")
	for _, link := range topo.Links() {
		label := edgeLabel(link)
		if label != "" {
			fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n",
				link.Source.DeviceKey(), link.Target.DeviceKey(), label)
		} else {
			fmt.Fprintf(&buf, "  %q -- %q;\n",
				link.Source.DeviceKey(), link.Target.DeviceKey())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// sortedRoots returns top-level regions in name order for stable output.
func sortedRoots(topo *topology.Topology) []*topology.Region {
	roots := topo.ChildRegions("")
	sort.Slice(roots, func(i, j int) bool { return roots[i].Name < roots[j].Name })
	return roots
}

// writeRegion emits one region as a cluster, recursing into child regions.
// Child lookup is by parent name, which can loop when a region carries its
// own name as parent; the seen set emits every region at most once.
func writeRegion(buf *bytes.Buffer, topo *topology.Topology, region *topology.Region, indent string, clusterID *int, placed, seen map[string]bool) {
	if seen[region.Key()] {
		return
	}
	seen[region.Key()] = true

	fmt.Fprintf(buf, "%ssubgraph cluster_%d {\n", indent, *clusterID)
	*clusterID++
	inner := indent + "  "
	fmt.Fprintf(buf, "%slabel=%q;\n", inner, region.Name)
	fmt.Fprintf(buf, "%sstyle=filled;\n", inner)
	fmt.Fprintf(buf, "%sfillcolor=\"#fff2cc\";\n", inner)

	for _, key := range region.Devices {
		if dev, ok := topo.Device(key); ok && !placed[key] {
			writeDevice(buf, dev, inner)
			placed[key] = true
		}
	}

	children := topo.ChildRegions(region.Name)
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	for _, child := range children {
		writeRegion(buf, topo, child, inner, clusterID, placed, seen)
	}

	fmt.Fprintf(buf, "%s}\n", indent)
}

// writeDevice emits one device node.
func writeDevice(buf *bytes.Buffer, dev *topology.Device, indent string) {
	label := dev.Name
	if dev.MgmtAddr != "" {
		label += "\n" + dev.MgmtAddr
	}
	fmt.Fprintf(buf, "%s%q [label=%q];\n", indent, dev.Key(), label)
}

// edgeLabel renders the interface pair shown along a preview edge.
func edgeLabel(link *topology.Link) string {
	var parts []string
	if link.Source.Interface != "" {
		parts = append(parts, link.Source.Interface)
	}
	if link.Target.Interface != "" {
		parts = append(parts, link.Target.Interface)
	}
	return strings.Join(parts, " - ")
}

// =============================================================================
// Rasterization
// =============================================================================

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := renderFormat(ctx, dot, graphviz.SVG, "svg")
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// PNG renders a DOT graph to PNG using Graphviz.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG, "png")
}

// renderFormat runs Graphviz over the DOT source in the requested format.
func renderFormat(ctx context.Context, dot string, format graphviz.Format, name string) ([]byte, error) {
	start := time.Now()
	observability.Render().OnRenderStart(ctx, name)

	data, err := runGraphviz(ctx, dot, format)
	observability.Render().OnRenderComplete(ctx, name, time.Since(start), err)
	return data, err
}

func runGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render preview")
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the svg element so the image scales cleanly when
// embedded: origin at zero, explicit width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
