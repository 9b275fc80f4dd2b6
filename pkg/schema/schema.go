// Package schema describes table layouts for connection records: which
// columns exist, which side of the link each column belongs to, and which
// canonical field it carries.
//
// A Schema is built either from an explicit template (the header row of a
// template file) or inferred from an input table's own header. Column order is
// always preserved exactly as given; serialization replays it verbatim.
package schema

import "strings"

// =============================================================================
// Roles and Canonical Fields
// =============================================================================

// Role identifies which part of a connection record a column describes.
type Role string

const (
	// RoleSource marks columns describing the source endpoint.
	RoleSource Role = "src"
	// RoleTarget marks columns describing the target endpoint.
	RoleTarget Role = "dst"
	// RoleLink marks link-level columns (and anything unclassified).
	RoleLink Role = "link"
)

// Canonical field names. Endpoint-scoped fields appear once per role; link
// fields appear once per record.
const (
	FieldSequence     = "sequence"
	FieldParentRegion = "parent_region"
	FieldRegion       = "region"
	FieldDeviceName   = "device_name"
	FieldMgmtAddress  = "management_address"
	FieldDeviceModel  = "device_model"
	FieldDeviceType   = "device_type"
	FieldCabinet      = "cabinet"
	FieldUPosition    = "u_position"
	FieldPortChannel  = "port_channel"
	FieldInterface    = "physical_interface"
	FieldVRF          = "vrf"
	FieldVLAN         = "vlan"
	FieldInterfaceIP  = "interface_ip"
	FieldUsage        = "usage"
	FieldCableType    = "cable_type"
	FieldBandwidth    = "bandwidth"
	FieldRemark       = "remark"
)

// fieldNormalization maps column headers (with role prefix stripped) to
// canonical field names. Headers not listed here normalize mechanically.
var fieldNormalization = map[string]string{
	"设备名":           FieldDeviceName,
	"管理地址":          FieldMgmtAddress,
	"父区域":           FieldParentRegion,
	"所属区域":          FieldRegion,
	"设备型号":          FieldDeviceModel,
	"设备类型":          FieldDeviceType,
	"机柜":            FieldCabinet,
	"机柜/U位":         FieldCabinet, // legacy header
	"U位":            FieldUPosition,
	"Port-Channel号": FieldPortChannel,
	"物理接口":          FieldInterface,
	"所属VRF":         FieldVRF,
	"所属VLAN":        FieldVLAN,
	"接口IP":          FieldInterfaceIP,
	"互联用途":          FieldUsage,
	"线缆类型":          FieldCableType,
	"带宽":            FieldBandwidth,
	"备注":            FieldRemark,
	"序号":            FieldSequence,
	"device name":   FieldDeviceName,
	"device":        FieldDeviceName,
	"mgmt address":  FieldMgmtAddress,
	"parent region": FieldParentRegion,
	"parent zone":   FieldParentRegion,
	"zone":          FieldRegion,
	"model":         FieldDeviceModel,
	"type":          FieldDeviceType,
	"rack":          FieldCabinet,
	"u position":    FieldUPosition,
	"interface":     FieldInterface,
	"purpose":       FieldUsage,
	"cable":         FieldCableType,
	"note":          FieldRemark,
	"remark":        FieldRemark,
	"seq":           FieldSequence,
	"no":            FieldSequence,
}

// =============================================================================
// Column and Schema
// =============================================================================

// Column is one table column: its literal header, the record side it belongs
// to, and the canonical field it maps to.
type Column struct {
	Name  string // Original header text
	Role  Role
	Field string
}

// Schema is an ordered list of columns. Order is significant and survives the
// round trip untouched.
type Schema struct {
	Columns []Column
}

// Headers returns the column headers in order.
func (s *Schema) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Lookup returns the column with the given header, if present.
func (s *Schema) Lookup(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasField reports whether any column with the given role maps to field.
func (s *Schema) HasField(role Role, field string) bool {
	for _, c := range s.Columns {
		if c.Role == role && c.Field == field {
			return true
		}
	}
	return false
}

// FromHeader builds a schema from a header row, classifying each column by
// the configured role prefixes. Columns without a recognized prefix are
// link-level.
func FromHeader(header []string, cfg *Config) *Schema {
	if cfg == nil {
		cfg = Default()
	}
	columns := make([]Column, 0, len(header))
	for _, raw := range header {
		role, field := parseColumn(raw, cfg)
		columns = append(columns, Column{Name: raw, Role: role, Field: field})
	}
	return &Schema{Columns: columns}
}

// parseColumn infers the role and canonical field for one header.
func parseColumn(name string, cfg *Config) (Role, string) {
	stripped := strings.TrimSpace(name)

	for _, prefix := range cfg.SourcePrefixes {
		if strings.HasPrefix(stripped, prefix) {
			return RoleSource, normalizeField(stripped[len(prefix):])
		}
	}
	for _, prefix := range cfg.TargetPrefixes {
		if strings.HasPrefix(stripped, prefix) {
			return RoleTarget, normalizeField(stripped[len(prefix):])
		}
	}
	return RoleLink, normalizeField(stripped)
}

// normalizeField maps a stripped header to its canonical field name, falling
// back to a mechanical slug for unknown headers.
func normalizeField(key string) string {
	key = strings.TrimSpace(key)
	if field, ok := fieldNormalization[key]; ok {
		return field
	}
	if field, ok := fieldNormalization[strings.ToLower(key)]; ok {
		return field
	}
	slug := strings.ReplaceAll(key, "/", "_")
	slug = strings.ReplaceAll(slug, "-", "_")
	slug = strings.ReplaceAll(slug, " ", "_")
	return slug
}

// =============================================================================
// Default Template
// =============================================================================

// DefaultColumns is the standard full column order: sequence, the source
// endpoint outside-in, link attributes, then the target endpoint inside-out.
// The mirrored target order keeps the row readable left to right along the
// cable.
var DefaultColumns = []string{
	"序号",
	"源-父区域", "源-所属区域", "源-设备名", "源-设备型号", "源-设备类型",
	"源-管理地址", "源-机柜", "源-U位",
	"源-Port-Channel号", "源-物理接口", "源-所属VRF", "源-所属VLAN", "源-接口IP",
	"互联用途", "线缆类型", "带宽", "备注",
	"目标-接口IP", "目标-所属VLAN", "目标-所属VRF", "目标-物理接口", "目标-Port-Channel号",
	"目标-U位", "目标-机柜", "目标-设备类型", "目标-设备型号", "目标-设备名",
	"目标-所属区域", "目标-父区域", "目标-管理地址",
}

// DefaultSchema returns the schema for DefaultColumns.
func DefaultSchema() *Schema {
	return FromHeader(DefaultColumns, Default())
}
