// Package layout computes deterministic diagram coordinates for a topology.
//
// The placement is intentionally simple: root regions stack top to bottom in
// alphabetical order, child regions stack inside their parent, and devices
// tile in a near-square grid inside their owning region. All constants are
// fixed, all orderings are total, so the same topology always produces the
// same pixels.
package layout

import (
	"math"
	"sort"

	"github.com/topotab/topotab/pkg/topology"
)

// Geometry constants, in diagram pixels.
const (
	DeviceWidth  = 160
	DeviceHeight = 80

	DeviceHSpacing = 40
	DeviceVSpacing = 80

	RegionPadding      = 60
	RegionHeaderHeight = 40

	ChildRegionVSpacing = 80
	RootRegionVSpacing  = 120

	MinRegionWidth  = 320
	MinRegionHeight = 220

	// MaxColumns caps the device grid width per region.
	MaxColumns = 4
)

// UnassignedRegion is the synthetic region for devices without one.
const UnassignedRegion = "Unassigned"

// Rect is an absolute rectangle in diagram coordinates.
type Rect struct {
	X, Y, W, H int
}

// DevicePlacement locates one device inside its owning region.
type DevicePlacement struct {
	RegionKey string
	Rect      Rect
}

// Result holds the computed absolute geometry for every region and device.
type Result struct {
	// Regions maps scoped region keys to absolute rectangles.
	Regions map[string]Rect
	// Devices maps device identity keys to their placement.
	Devices map[string]DevicePlacement
	// RegionOrder lists region keys parents-first in drawing order.
	RegionOrder []string
}

// regionMeasure is the size of a region plus the relative positions of its
// contents, computed bottom-up.
type regionMeasure struct {
	w, h       int
	devices    map[string][2]int // device key -> relative (x, y)
	children   map[string][2]int // child region key -> relative (x, y)
	childOrder []string          // child region keys in drawing order
}

// Engine computes layouts for one topology.
type Engine struct {
	topo          *topology.Topology
	regionDevices map[string][]string // region key -> sorted device keys
	cache         map[string]*regionMeasure
	visiting      map[string]bool // measure recursion guard
}

// NewEngine prepares a layout engine. Devices without a region are grouped
// under the synthetic Unassigned region, which is created on demand.
func NewEngine(topo *topology.Topology) *Engine {
	e := &Engine{
		topo:          topo,
		regionDevices: make(map[string][]string),
		cache:         make(map[string]*regionMeasure),
		visiting:      make(map[string]bool),
	}
	e.groupDevices()
	return e
}

// Compute lays out the whole topology.
func (e *Engine) Compute() *Result {
	res := &Result{
		Regions: make(map[string]Rect),
		Devices: make(map[string]DevicePlacement),
	}

	roots := e.sortedChildKeys("")
	y := 0
	for _, key := range roots {
		m := e.measure(key)
		e.place(key, 0, y, m, res)
		y += m.h + RootRegionVSpacing
	}
	return res
}

// groupDevices buckets device keys by owning region, sorted for determinism.
func (e *Engine) groupDevices() {
	for _, dev := range e.topo.Devices() {
		regionName := dev.Region
		parent := dev.Parent
		if regionName == "" {
			regionName = parent
			parent = ""
		}
		if regionName == "" {
			regionName = UnassignedRegion
			e.topo.EnsureRegion(UnassignedRegion, "")
		}
		key := topology.RegionKey(parent, regionName)
		e.regionDevices[key] = append(e.regionDevices[key], dev.Key())
	}
	for _, keys := range e.regionDevices {
		sort.Strings(keys)
	}
}

// sortedChildKeys returns the scoped keys of the regions under parent,
// alphabetical by name with insertion order breaking ties.
func (e *Engine) sortedChildKeys(parent string) []string {
	children := e.topo.ChildRegions(parent)
	keys := make([]string, len(children))
	for i, r := range children {
		keys[i] = r.Key()
	}
	names := make(map[string]string, len(children))
	for i, r := range children {
		names[keys[i]] = r.Name
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return names[keys[i]] < names[keys[j]]
	})
	return keys
}

// measure computes a region's size and relative content positions. Children
// are looked up by the parent's name, which can loop when regions share a
// name across nesting levels (a region named A inside another region named
// A); the visiting set breaks such cycles so the loop edge is dropped.
func (e *Engine) measure(key string) *regionMeasure {
	if m, ok := e.cache[key]; ok {
		return m
	}

	region, ok := e.topo.Region(key)
	if !ok {
		m := &regionMeasure{w: MinRegionWidth, h: MinRegionHeight}
		e.cache[key] = m
		return m
	}

	e.visiting[key] = true
	defer delete(e.visiting, key)

	m := &regionMeasure{
		devices:  make(map[string][2]int),
		children: make(map[string][2]int),
	}

	deviceKeys := e.regionDevices[key]
	var deviceAreaW, deviceAreaH int
	if n := len(deviceKeys); n > 0 {
		columns := int(math.Round(math.Sqrt(float64(n))))
		if columns < 1 {
			columns = 1
		}
		if columns > MaxColumns {
			columns = MaxColumns
		}
		if columns > n {
			columns = n
		}
		rows := (n + columns - 1) / columns
		deviceAreaW = columns*DeviceWidth + (columns-1)*DeviceHSpacing
		deviceAreaH = rows*DeviceHeight + (rows-1)*DeviceVSpacing
		for idx, devKey := range deviceKeys {
			row := idx / columns
			col := idx % columns
			m.devices[devKey] = [2]int{
				RegionPadding + col*(DeviceWidth+DeviceHSpacing),
				RegionHeaderHeight + RegionPadding + row*(DeviceHeight+DeviceVSpacing),
			}
		}
	}

	var childKeys []string
	for _, childKey := range e.sortedChildKeys(region.Name) {
		if childKey == key || e.visiting[childKey] {
			continue
		}
		childKeys = append(childKeys, childKey)
	}
	m.childOrder = childKeys
	yCursor := RegionHeaderHeight + RegionPadding + deviceAreaH
	if len(deviceKeys) > 0 {
		yCursor += RegionPadding
	}

	var childW, childHTotal int
	for _, childKey := range childKeys {
		childMeasure := e.measure(childKey)
		m.children[childKey] = [2]int{RegionPadding, yCursor}
		yCursor += childMeasure.h + ChildRegionVSpacing
		if childMeasure.w > childW {
			childW = childMeasure.w
		}
		childHTotal += childMeasure.h
	}

	totalW := deviceAreaW
	if childW > totalW {
		totalW = childW
	}
	if min := MinRegionWidth - 2*RegionPadding; totalW < min {
		totalW = min
	}

	totalH := RegionHeaderHeight + 2*RegionPadding + deviceAreaH
	if len(deviceKeys) > 0 && len(childKeys) > 0 {
		totalH += RegionPadding
	}
	if len(childKeys) > 0 {
		totalH += childHTotal + (len(childKeys)-1)*ChildRegionVSpacing
	}

	m.w = totalW + 2*RegionPadding
	if m.w < MinRegionWidth {
		m.w = MinRegionWidth
	}
	m.h = totalH
	if m.h < MinRegionHeight {
		m.h = MinRegionHeight
	}

	e.cache[key] = m
	return m
}

// place assigns absolute rectangles for a region and everything inside it.
// A region is placed at most once; recursion follows the child order the
// measure pass settled on, so name cycles cannot re-enter.
func (e *Engine) place(key string, x, y int, m *regionMeasure, res *Result) {
	if _, done := res.Regions[key]; done {
		return
	}
	res.Regions[key] = Rect{X: x, Y: y, W: m.w, H: m.h}
	res.RegionOrder = append(res.RegionOrder, key)

	for _, devKey := range e.regionDevices[key] {
		rel := m.devices[devKey]
		res.Devices[devKey] = DevicePlacement{
			RegionKey: key,
			Rect:      Rect{X: x + rel[0], Y: y + rel[1], W: DeviceWidth, H: DeviceHeight},
		}
	}

	for _, childKey := range m.childOrder {
		rel := m.children[childKey]
		e.place(childKey, x+rel[0], y+rel[1], e.measure(childKey), res)
	}
}

// Compute is the package-level convenience entry point.
func Compute(topo *topology.Topology) *Result {
	return NewEngine(topo).Compute()
}
