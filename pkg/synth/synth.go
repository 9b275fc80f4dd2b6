// Package synth builds a topology from a connection-record table: the table
// half of the round trip. Each row becomes one link; regions and devices are
// materialized from the endpoint cells under the first-seen-wins rule, so the
// table alone fully determines the diagram.
package synth

import (
	"strconv"

	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/records"
	"github.com/topotab/topotab/pkg/report"
	"github.com/topotab/topotab/pkg/schema"
	"github.com/topotab/topotab/pkg/tabular"
	"github.com/topotab/topotab/pkg/topology"
)

// Result is a synthesized topology plus how its table header was read.
type Result struct {
	Topology  *topology.Topology
	Detection *schema.Detection
}

// FromDocument converts a table into a topology. The header is classified
// first; a header without a source/target device column pair fails with
// SCHEMA_AMBIGUOUS. Rows missing a device name on either side are skipped and
// reported, the rest of the table still converts.
func FromDocument(doc *tabular.Document, cfg *schema.Config, rep *report.Report) (*Result, error) {
	if cfg == nil {
		cfg = schema.Default()
	}

	det, err := schema.Detect(doc.Header, cfg)
	if err != nil {
		return nil, err
	}

	builder := records.NewBuilder(det.Schema)
	topo := topology.New()

	for i, row := range doc.Rows {
		link := builder.Link(row)
		if emptyRow(row) {
			continue
		}
		if link.Source.Device == "" || link.Target.Device == "" {
			if rep != nil {
				rep.Error(errors.ErrCodeMissingDeviceIdentity, rowLabel(i),
					"row has no device name on %s side; skipping", missingSide(link))
			}
			continue
		}

		ensureEndpoint(topo, &link.Source)
		ensureEndpoint(topo, &link.Target)
		topo.AddLink(link)
	}

	return &Result{Topology: topo, Detection: det}, nil
}

// ensureEndpoint materializes an endpoint's region chain and device.
func ensureEndpoint(topo *topology.Topology, ep *topology.Endpoint) {
	if ep.Parent != "" {
		topo.EnsureRegion(ep.Parent, "")
	}
	if ep.Region != "" {
		topo.EnsureRegion(ep.Region, ep.Parent)
	}
	topo.EnsureDevice(ep.ToDevice())
}

// emptyRow reports whether every cell is blank.
func emptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// missingSide names which endpoint lacks a device name, for diagnostics.
func missingSide(link *topology.Link) string {
	switch {
	case link.Source.Device == "" && link.Target.Device == "":
		return "either"
	case link.Source.Device == "":
		return "the source"
	default:
		return "the target"
	}
}

// rowLabel names a row in diagnostics, matching the row's position in the
// file including the header line.
func rowLabel(index int) string {
	return "row " + strconv.Itoa(index+2)
}
