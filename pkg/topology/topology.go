package topology

import "strings"

// =============================================================================
// Topology
// =============================================================================

// Topology is the merged view of regions, devices, and links extracted from a
// diagram or a table. Iteration order is insertion order everywhere, which the
// layout stage relies on for deterministic output.
type Topology struct {
	regions   map[string]*Region // scoped key -> region
	regionSeq []string           // scoped keys in insertion order
	devices   map[string]*Device // identity key -> device
	deviceSeq []string           // identity keys in insertion order
	links     []*Link

	conflicts []Conflict
}

// New returns an empty topology.
func New() *Topology {
	return &Topology{
		regions: make(map[string]*Region),
		devices: make(map[string]*Device),
	}
}

// EnsureRegion returns the region with the given name under parent, creating
// it on first sight. Same name + same parent merge into one region; the same
// name under a different parent is a distinct region.
func (t *Topology) EnsureRegion(name, parent string) *Region {
	name = strings.TrimSpace(name)
	parent = strings.TrimSpace(parent)
	if name == "" {
		return nil
	}

	key := RegionKey(parent, name)
	if r, ok := t.regions[key]; ok {
		return r
	}

	r := &Region{Name: name, Parent: parent}
	t.regions[key] = r
	t.regionSeq = append(t.regionSeq, key)
	return r
}

// EnsureDevice merges dev into the topology under the first-seen-wins rule.
// The first occurrence of an identity fixes every non-empty attribute; later
// occurrences fill gaps only. A later non-empty value that differs from the
// stored one is discarded and recorded as a Conflict.
func (t *Topology) EnsureDevice(dev *Device) *Device {
	if dev == nil || dev.Name == "" {
		return nil
	}

	key := dev.Key()
	existing, ok := t.devices[key]
	if !ok {
		clone := *dev
		t.devices[key] = &clone
		t.deviceSeq = append(t.deviceSeq, key)
		if r := t.EnsureRegion(clone.Region, clone.Parent); r != nil {
			r.Devices = append(r.Devices, key)
		}
		return &clone
	}

	t.mergeField(key, "model", &existing.Model, dev.Model)
	t.mergeField(key, "type", &existing.Type, dev.Type)
	t.mergeField(key, "cabinet", &existing.Cabinet, dev.Cabinet)
	t.mergeField(key, "u_position", &existing.UPosition, dev.UPosition)
	t.mergeField(key, "region", &existing.Region, dev.Region)
	t.mergeField(key, "parent", &existing.Parent, dev.Parent)
	return existing
}

// mergeField applies first-seen-wins to a single attribute.
func (t *Topology) mergeField(key, field string, stored *string, incoming string) {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" {
		return
	}
	if *stored == "" {
		*stored = incoming
		return
	}
	if *stored != incoming {
		t.conflicts = append(t.conflicts, Conflict{
			DeviceKey: key,
			Field:     field,
			Kept:      *stored,
			Ignored:   incoming,
		})
	}
}

// AddLink appends a link. Links are never merged or deduplicated: one link is
// one record is one edge.
func (t *Topology) AddLink(l *Link) {
	if l == nil {
		return
	}
	t.links = append(t.links, l)
}

// =============================================================================
// Accessors
// =============================================================================

// Regions returns all regions in insertion order.
func (t *Topology) Regions() []*Region {
	out := make([]*Region, 0, len(t.regionSeq))
	for _, key := range t.regionSeq {
		out = append(out, t.regions[key])
	}
	return out
}

// Region looks up a region by its scoped key.
func (t *Topology) Region(key string) (*Region, bool) {
	r, ok := t.regions[key]
	return r, ok
}

// ChildRegions returns the regions whose parent is the given region name, in
// insertion order.
func (t *Topology) ChildRegions(parent string) []*Region {
	var out []*Region
	for _, key := range t.regionSeq {
		if r := t.regions[key]; r.Parent == parent {
			out = append(out, r)
		}
	}
	return out
}

// Devices returns all devices in insertion order.
func (t *Topology) Devices() []*Device {
	out := make([]*Device, 0, len(t.deviceSeq))
	for _, key := range t.deviceSeq {
		out = append(out, t.devices[key])
	}
	return out
}

// Device looks up a device by identity key.
func (t *Topology) Device(key string) (*Device, bool) {
	d, ok := t.devices[key]
	return d, ok
}

// Links returns all links in insertion order.
func (t *Topology) Links() []*Link {
	return t.links
}

// Conflicts returns the attribute conflicts observed while merging devices.
func (t *Topology) Conflicts() []Conflict {
	return t.conflicts
}

// Counts returns region, device, and link totals.
func (t *Topology) Counts() (regions, devices, links int) {
	return len(t.regions), len(t.devices), len(t.links)
}
