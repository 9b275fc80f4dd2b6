// Package topology defines the in-memory model shared by both conversion
// directions: regions, devices, links, and the identity rules that keep them
// consistent.
//
// The model is deliberately flat and string-typed. Every attribute that can
// appear in a table cell or a diagram label is carried as a string; missing
// values are the empty string, never a sentinel. This keeps round trips
// lossless: what goes in is what comes out.
package topology

import "strings"

// =============================================================================
// Device Identity
// =============================================================================

// keySeparator joins device name and management address into an identity key.
// A double underscore cannot appear in a dotted-quad address and is unlikely
// in a device name, so the key parses back unambiguously.
const keySeparator = "__"

// DeviceKey returns the canonical identity key for a device.
// Devices are identical iff both name and management address match; a device
// without a management address is keyed by name alone.
func DeviceKey(name, mgmtAddr string) string {
	name = strings.TrimSpace(name)
	mgmtAddr = strings.TrimSpace(mgmtAddr)
	if mgmtAddr == "" {
		return name
	}
	return name + keySeparator + mgmtAddr
}

// RegionKey returns the scoped key for a region. Regions with the same name
// under different parents are distinct; the key encodes the parent chain.
func RegionKey(parent, name string) string {
	parent = strings.TrimSpace(parent)
	name = strings.TrimSpace(name)
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// =============================================================================
// Core Types
// =============================================================================

// Device is a network device node. Identity is (Name, MgmtAddr); everything
// else is descriptive and follows first-seen-wins on merge.
type Device struct {
	Name      string // Device name (required for identity)
	MgmtAddr  string // Management address, usually an IP
	Model     string // Hardware model
	Type      string // Device type (switch, router, firewall, ...)
	Cabinet   string // Cabinet / rack identifier
	UPosition string // Rack unit position
	Region    string // Owning region name
	Parent    string // Owning region's parent name
}

// Key returns the device's identity key.
func (d *Device) Key() string {
	return DeviceKey(d.Name, d.MgmtAddr)
}

// Region is a named container in the topology hierarchy. Regions form a tree;
// the synthetic root has an empty name.
type Region struct {
	Name    string   // Region display name
	Parent  string   // Parent region name ("" for top level)
	Devices []string // Device identity keys in insertion order
}

// Key returns the region's scoped key.
func (r *Region) Key() string {
	return RegionKey(r.Parent, r.Name)
}

// Endpoint is one side of a connection: where the cable lands.
// All fields are optional except the device name, which record-level
// validation enforces.
type Endpoint struct {
	Parent      string // Parent region (e.g. datacenter)
	Region      string // Region (e.g. network zone)
	Device      string // Device name
	MgmtAddr    string // Device management address
	Model       string // Device hardware model
	DeviceType  string // Device type
	Cabinet     string // Cabinet identifier
	UPosition   string // Rack unit position
	PortChannel string // Aggregated link group
	Interface   string // Physical interface name
	VRF         string // VRF name
	VLAN        string // VLAN identifier
	InterfaceIP string // Interface address
}

// DeviceKey returns the identity key of the endpoint's device.
func (e *Endpoint) DeviceKey() string {
	return DeviceKey(e.Device, e.MgmtAddr)
}

// ToDevice projects the endpoint's device-level fields into a Device.
func (e *Endpoint) ToDevice() *Device {
	return &Device{
		Name:      strings.TrimSpace(e.Device),
		MgmtAddr:  strings.TrimSpace(e.MgmtAddr),
		Model:     e.Model,
		Type:      e.DeviceType,
		Cabinet:   e.Cabinet,
		UPosition: e.UPosition,
		Region:    strings.TrimSpace(e.Region),
		Parent:    strings.TrimSpace(e.Parent),
	}
}

// Link is one physical connection between two endpoints. One link corresponds
// to exactly one table row and one diagram edge; parallel links between the
// same devices stay separate.
type Link struct {
	Sequence  string            // Row sequence value (1-based string)
	Source    Endpoint          // Source side
	Target    Endpoint          // Target side
	Usage     string            // Link usage / purpose
	CableType string            // Cable type
	Bandwidth string            // Bandwidth
	Note      string            // Free-form note
	Extra     map[string]string // Pass-through columns outside the known set
}

// =============================================================================
// Attribute Conflicts
// =============================================================================

// Conflict records a discarded attribute value: the same device identity was
// seen with two different values for one field. The first value is kept.
type Conflict struct {
	DeviceKey string // Identity key of the device
	Field     string // Field name in conflict
	Kept      string // First-seen value (wins)
	Ignored   string // Later value (discarded)
}
