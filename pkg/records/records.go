// Package records maps between topology links and table rows through a
// schema. One link is one row; the schema's column order decides the row
// layout, and every cell value passes through unmodified.
//
// Columns that do not map to a known field travel in the link's Extra map so
// that a table with custom columns survives the round trip. Endpoint-scoped
// extras are keyed with a "src." or "dst." prefix to keep the two sides apart.
package records

import (
	"strconv"
	"strings"

	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/report"
	"github.com/topotab/topotab/pkg/schema"
	"github.com/topotab/topotab/pkg/tabular"
	"github.com/topotab/topotab/pkg/topology"
)

// Builder converts links to rows and back under a fixed schema.
type Builder struct {
	Schema *schema.Schema
}

// NewBuilder returns a builder for the given schema. A nil schema means the
// default column order.
func NewBuilder(s *schema.Schema) *Builder {
	if s == nil {
		s = schema.DefaultSchema()
	}
	return &Builder{Schema: s}
}

// =============================================================================
// Links -> Rows
// =============================================================================

// Document renders all links of a topology as a table in schema order.
// Links keep their explicit sequence value; links without one are numbered by
// encounter order. Link data with no column in the schema is dropped and
// reported once per field.
func (b *Builder) Document(topo *topology.Topology, rep *report.Report) *tabular.Document {
	doc := tabular.NewDocument(b.Schema.Headers())
	dropped := make(map[string]bool)

	for i, link := range topo.Links() {
		seq := link.Sequence
		if seq == "" {
			seq = strconv.Itoa(i + 1)
		}
		doc.AppendRow(b.row(link, seq, dropped))
	}

	if rep != nil {
		for field := range dropped {
			rep.Warn(errors.ErrCodeAttributeConflict, field,
				"no output column carries %s; values dropped", field)
		}
	}
	return doc
}

// row renders one link in schema order, recording fields whose values had no
// column to land in.
func (b *Builder) row(link *topology.Link, seq string, dropped map[string]bool) []string {
	row := make([]string, len(b.Schema.Columns))
	for i, col := range b.Schema.Columns {
		row[i] = b.cellValue(link, col, seq)
	}

	for field, value := range linkFieldValues(link, seq) {
		if value != "" && !b.Schema.HasField(schema.RoleLink, field) {
			dropped[field] = true
		}
	}
	for _, side := range []struct {
		role schema.Role
		ep   *topology.Endpoint
	}{{schema.RoleSource, &link.Source}, {schema.RoleTarget, &link.Target}} {
		for field, value := range endpointFieldValues(side.ep) {
			if value != "" && !b.Schema.HasField(side.role, field) {
				dropped[string(side.role)+"."+field] = true
			}
		}
	}
	return row
}

// cellValue resolves one cell from the link.
func (b *Builder) cellValue(link *topology.Link, col schema.Column, seq string) string {
	switch col.Role {
	case schema.RoleSource:
		return endpointValue(&link.Source, col.Field, link, "src.")
	case schema.RoleTarget:
		return endpointValue(&link.Target, col.Field, link, "dst.")
	default:
		if col.Field == schema.FieldSequence {
			return seq
		}
		if v, ok := linkFieldValues(link, seq)[col.Field]; ok {
			return v
		}
		return link.Extra[col.Field]
	}
}

// endpointValue resolves an endpoint-scoped field, falling back to the
// prefixed extras for unknown fields.
func endpointValue(ep *topology.Endpoint, field string, link *topology.Link, prefix string) string {
	if v, ok := endpointFieldValues(ep)[field]; ok {
		return v
	}
	return link.Extra[prefix+field]
}

// linkFieldValues exposes link-level fields by canonical name.
func linkFieldValues(link *topology.Link, seq string) map[string]string {
	return map[string]string{
		schema.FieldSequence:  seq,
		schema.FieldUsage:     link.Usage,
		schema.FieldCableType: link.CableType,
		schema.FieldBandwidth: link.Bandwidth,
		schema.FieldRemark:    link.Note,
	}
}

// endpointFieldValues exposes endpoint fields by canonical name.
func endpointFieldValues(ep *topology.Endpoint) map[string]string {
	return map[string]string{
		schema.FieldParentRegion: ep.Parent,
		schema.FieldRegion:       ep.Region,
		schema.FieldDeviceName:   ep.Device,
		schema.FieldMgmtAddress:  ep.MgmtAddr,
		schema.FieldDeviceModel:  ep.Model,
		schema.FieldDeviceType:   ep.DeviceType,
		schema.FieldCabinet:      ep.Cabinet,
		schema.FieldUPosition:    ep.UPosition,
		schema.FieldPortChannel:  ep.PortChannel,
		schema.FieldInterface:    ep.Interface,
		schema.FieldVRF:          ep.VRF,
		schema.FieldVLAN:         ep.VLAN,
		schema.FieldInterfaceIP:  ep.InterfaceIP,
	}
}

// =============================================================================
// Rows -> Links
// =============================================================================

// Link rebuilds one link from a row. Cell values are trimmed; empty cells set
// nothing. Unclassified columns land in Extra under their canonical slug.
func (b *Builder) Link(row []string) *topology.Link {
	link := &topology.Link{}
	for i, col := range b.Schema.Columns {
		if i >= len(row) {
			break
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			continue
		}
		switch col.Role {
		case schema.RoleSource:
			setEndpointField(&link.Source, col.Field, value, link, "src.")
		case schema.RoleTarget:
			setEndpointField(&link.Target, col.Field, value, link, "dst.")
		default:
			setLinkField(link, col.Field, value)
		}
	}
	return link
}

// setLinkField assigns a link-level field, defaulting to Extra.
func setLinkField(link *topology.Link, field, value string) {
	switch field {
	case schema.FieldSequence:
		link.Sequence = value
	case schema.FieldUsage:
		link.Usage = value
	case schema.FieldCableType:
		link.CableType = value
	case schema.FieldBandwidth:
		link.Bandwidth = value
	case schema.FieldRemark:
		link.Note = value
	default:
		setExtra(link, field, value)
	}
}

// setEndpointField assigns an endpoint field, defaulting to prefixed Extra.
func setEndpointField(ep *topology.Endpoint, field, value string, link *topology.Link, prefix string) {
	switch field {
	case schema.FieldParentRegion:
		ep.Parent = value
	case schema.FieldRegion:
		ep.Region = value
	case schema.FieldDeviceName:
		ep.Device = value
	case schema.FieldMgmtAddress:
		ep.MgmtAddr = value
	case schema.FieldDeviceModel:
		ep.Model = value
	case schema.FieldDeviceType:
		ep.DeviceType = value
	case schema.FieldCabinet:
		ep.Cabinet = value
	case schema.FieldUPosition:
		ep.UPosition = value
	case schema.FieldPortChannel:
		ep.PortChannel = value
	case schema.FieldInterface:
		ep.Interface = value
	case schema.FieldVRF:
		ep.VRF = value
	case schema.FieldVLAN:
		ep.VLAN = value
	case schema.FieldInterfaceIP:
		ep.InterfaceIP = value
	default:
		setExtra(link, prefix+field, value)
	}
}

func setExtra(link *topology.Link, key, value string) {
	if link.Extra == nil {
		link.Extra = make(map[string]string)
	}
	link.Extra[key] = value
}
