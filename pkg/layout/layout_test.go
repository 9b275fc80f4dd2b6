package layout

import (
	"reflect"
	"testing"

	"github.com/topotab/topotab/pkg/topology"
)

func buildTopology() *topology.Topology {
	topo := topology.New()
	topo.EnsureRegion("DC-East", "")
	topo.EnsureRegion("核心区", "DC-East")
	topo.EnsureDevice(&topology.Device{Name: "core-sw-02", MgmtAddr: "10.0.0.2", Region: "核心区", Parent: "DC-East"})
	topo.EnsureDevice(&topology.Device{Name: "core-sw-01", MgmtAddr: "10.0.0.1", Region: "核心区", Parent: "DC-East"})
	topo.EnsureDevice(&topology.Device{Name: "fw-01", Region: "DC-East"})
	return topo
}

func TestComputeDeterministic(t *testing.T) {
	a := Compute(buildTopology())
	b := Compute(buildTopology())

	if !reflect.DeepEqual(a.Regions, b.Regions) {
		t.Error("region geometry differs across identical runs")
	}
	if !reflect.DeepEqual(a.Devices, b.Devices) {
		t.Error("device geometry differs across identical runs")
	}
	if !reflect.DeepEqual(a.RegionOrder, b.RegionOrder) {
		t.Error("region order differs across identical runs")
	}
}

func TestDevicesInsideOwningRegion(t *testing.T) {
	res := Compute(buildTopology())

	for devKey, placement := range res.Devices {
		region, ok := res.Regions[placement.RegionKey]
		if !ok {
			t.Fatalf("device %s placed in unknown region %s", devKey, placement.RegionKey)
		}
		r := placement.Rect
		if r.X < region.X || r.Y < region.Y ||
			r.X+r.W > region.X+region.W || r.Y+r.H > region.Y+region.H {
			t.Errorf("device %s rect %+v escapes region %+v", devKey, r, region)
		}
	}
}

func TestChildRegionInsideParent(t *testing.T) {
	res := Compute(buildTopology())

	parent := res.Regions[topology.RegionKey("", "DC-East")]
	child, ok := res.Regions[topology.RegionKey("DC-East", "核心区")]
	if !ok {
		t.Fatal("child region missing from layout")
	}
	if child.X < parent.X || child.Y < parent.Y ||
		child.X+child.W > parent.X+parent.W || child.Y+child.H > parent.Y+parent.H {
		t.Errorf("child %+v escapes parent %+v", child, parent)
	}
}

func TestRegionOrderParentsFirst(t *testing.T) {
	res := Compute(buildTopology())

	seen := make(map[string]bool)
	for _, key := range res.RegionOrder {
		seen[key] = true
	}
	parentKey := topology.RegionKey("", "DC-East")
	childKey := topology.RegionKey("DC-East", "核心区")

	var parentIdx, childIdx int
	for i, key := range res.RegionOrder {
		switch key {
		case parentKey:
			parentIdx = i
		case childKey:
			childIdx = i
		}
	}
	if !seen[parentKey] || !seen[childKey] {
		t.Fatal("regions missing from draw order")
	}
	if parentIdx > childIdx {
		t.Error("parent region must be drawn before its children")
	}
}

func TestRootRegionsAlphabetical(t *testing.T) {
	topo := topology.New()
	topo.EnsureRegion("zeta", "")
	topo.EnsureRegion("alpha", "")
	topo.EnsureRegion("mike", "")

	res := Compute(topo)
	want := []string{"alpha", "mike", "zeta"}
	if !reflect.DeepEqual(res.RegionOrder, want) {
		t.Errorf("RegionOrder = %v, want %v", res.RegionOrder, want)
	}

	// Alphabetical stacking: alpha above mike above zeta.
	if !(res.Regions["alpha"].Y < res.Regions["mike"].Y && res.Regions["mike"].Y < res.Regions["zeta"].Y) {
		t.Error("root regions must stack in alphabetical order")
	}
}

func TestUnassignedRegionSynthesized(t *testing.T) {
	topo := topology.New()
	topo.EnsureDevice(&topology.Device{Name: "lonely-sw"})

	res := Compute(topo)
	placement, ok := res.Devices[topology.DeviceKey("lonely-sw", "")]
	if !ok {
		t.Fatal("device without a region must still be placed")
	}
	if placement.RegionKey != UnassignedRegion {
		t.Errorf("RegionKey = %q, want %q", placement.RegionKey, UnassignedRegion)
	}
	if _, ok := res.Regions[UnassignedRegion]; !ok {
		t.Error("Unassigned region must appear in the layout")
	}
}

func TestSelfParentRegionTerminates(t *testing.T) {
	topo := topology.New()
	topo.EnsureRegion("A", "")
	topo.EnsureRegion("A", "A")
	topo.EnsureDevice(&topology.Device{Name: "sw-1", Region: "A", Parent: "A"})

	res := Compute(topo)

	outer, ok := res.Regions[topology.RegionKey("", "A")]
	if !ok {
		t.Fatal("outer region A missing from layout")
	}
	inner, ok := res.Regions[topology.RegionKey("A", "A")]
	if !ok {
		t.Fatal("nested region A/A missing from layout")
	}
	if inner.X < outer.X || inner.Y < outer.Y {
		t.Errorf("nested region %+v must sit inside outer %+v", inner, outer)
	}
	if _, ok := res.Devices[topology.DeviceKey("sw-1", "")]; !ok {
		t.Error("device inside the name-cycling region must still be placed")
	}
}

func TestMutualParentRegionsTerminate(t *testing.T) {
	topo := topology.New()
	topo.EnsureRegion("A", "")
	topo.EnsureRegion("B", "A")
	topo.EnsureRegion("A", "B")

	res := Compute(topo)
	if len(res.RegionOrder) != 3 {
		t.Errorf("RegionOrder = %v, want all 3 regions placed exactly once", res.RegionOrder)
	}
	placed := make(map[string]bool)
	for _, key := range res.RegionOrder {
		if placed[key] {
			t.Errorf("region %s placed twice", key)
		}
		placed[key] = true
	}
}

func TestMinimumRegionSize(t *testing.T) {
	topo := topology.New()
	topo.EnsureRegion("empty", "")

	res := Compute(topo)
	r := res.Regions["empty"]
	if r.W < MinRegionWidth || r.H < MinRegionHeight {
		t.Errorf("empty region %+v below minimum %dx%d", r, MinRegionWidth, MinRegionHeight)
	}
}
