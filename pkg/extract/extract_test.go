package extract

import (
	"testing"

	"github.com/topotab/topotab/pkg/drawio"
	apperrors "github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/report"
	"github.com/topotab/topotab/pkg/schema"
	"github.com/topotab/topotab/pkg/topology"
)

func buildTopology() *topology.Topology {
	topo := topology.New()
	topo.EnsureRegion("生产数据中心", "")
	topo.EnsureRegion("核心区", "生产数据中心")
	topo.EnsureDevice(&topology.Device{
		Name: "core-sw-01", MgmtAddr: "10.0.0.1", Model: "CE8865",
		Type: "switch", Cabinet: "A01", UPosition: "U20",
		Region: "核心区", Parent: "生产数据中心",
	})
	topo.EnsureDevice(&topology.Device{
		Name: "fw-01", MgmtAddr: "10.0.0.2", Model: "USG6635",
		Region: "核心区", Parent: "生产数据中心",
	})
	topo.AddLink(&topology.Link{
		Sequence: "1",
		Source: topology.Endpoint{
			Device: "core-sw-01", MgmtAddr: "10.0.0.1", Region: "核心区", Parent: "生产数据中心",
			PortChannel: "10", Interface: "GE1/0/1", VRF: "mgmt", VLAN: "100", InterfaceIP: "172.16.0.1",
		},
		Target: topology.Endpoint{
			Device: "fw-01", MgmtAddr: "10.0.0.2", Region: "核心区", Parent: "生产数据中心",
			Interface: "GE0/0/1",
		},
		Usage:     "上行链路",
		CableType: "光纤",
		Bandwidth: "10G",
		Note:      "双活",
		Extra:     map[string]string{"工单号": "T-1001"},
	})
	return topo
}

func TestStructuredRoundTrip(t *testing.T) {
	original := buildTopology()

	w := drawio.NewWriter(schema.Default().Styles)
	file, err := w.Write(original, report.New())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := drawio.Marshal(file)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := drawio.Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	rep := report.New()
	topo, err := FromFile(parsed, schema.Default(), rep)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if len(rep.Errors()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", rep.Entries)
	}

	regions, devices, links := topo.Counts()
	if regions != 2 || devices != 2 || links != 1 {
		t.Fatalf("counts = (%d, %d, %d), want (2, 2, 1)", regions, devices, links)
	}

	dev, ok := topo.Device(topology.DeviceKey("core-sw-01", "10.0.0.1"))
	if !ok {
		t.Fatal("core-sw-01 missing after round trip")
	}
	if dev.Model != "CE8865" || dev.Cabinet != "A01" || dev.UPosition != "U20" {
		t.Errorf("device attributes lost: %+v", dev)
	}

	link := topo.Links()[0]
	if link.Sequence != "1" || link.Usage != "上行链路" || link.CableType != "光纤" ||
		link.Bandwidth != "10G" || link.Note != "双活" {
		t.Errorf("link record fields lost: %+v", link)
	}
	src := link.Source
	if src.PortChannel != "10" || src.Interface != "GE1/0/1" || src.VRF != "mgmt" ||
		src.VLAN != "100" || src.InterfaceIP != "172.16.0.1" {
		t.Errorf("source port attributes lost: %+v", src)
	}
	if link.Target.Interface != "GE0/0/1" {
		t.Errorf("target interface lost: %+v", link.Target)
	}
	if link.Extra["工单号"] != "T-1001" {
		t.Errorf("extra column lost: %v", link.Extra)
	}

	region, ok := topo.Region(topology.RegionKey("生产数据中心", "核心区"))
	if !ok {
		t.Fatal("scoped region missing after round trip")
	}
	if region.Parent != "生产数据中心" {
		t.Errorf("region parent = %q", region.Parent)
	}
}

func TestStructuredSkipsUnresolvedLink(t *testing.T) {
	doc := `<mxfile><diagram id="d"><mxGraphModel><root>
  <mxCell id="0"/><mxCell id="1" parent="0"/>
  <mxCell id="dev1" vertex="1" parent="1" data_type="device" data_device_name="sw-a" data_management_address="10.0.0.1">
    <mxGeometry x="0" y="0" width="160" height="80" as="geometry"/>
  </mxCell>
  <mxCell id="edge1" edge="1" parent="1" source="dev1" target="ghost" data_type="link" data_usage="broken"/>
</root></mxGraphModel></diagram></mxfile>`

	file, err := drawio.Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	rep := report.New()
	topo, err := FromFile(file, nil, rep)
	if err != nil {
		t.Fatal(err)
	}

	if len(topo.Links()) != 0 {
		t.Error("unresolved link must be skipped")
	}
	if _, ok := topo.Device(topology.DeviceKey("sw-a", "10.0.0.1")); !ok {
		t.Error("resolved device must survive")
	}
	found := false
	for _, e := range rep.Errors() {
		if e.Code == apperrors.ErrCodeUnresolvedEndpoint {
			found = true
		}
	}
	if !found {
		t.Error("skipped link must be reported as UNRESOLVED_ENDPOINT")
	}
}

func TestStructuredReportsMissingIdentity(t *testing.T) {
	doc := `<mxfile><diagram id="d"><mxGraphModel><root>
  <mxCell id="0"/><mxCell id="1" parent="0"/>
  <mxCell id="dev1" vertex="1" parent="1" data_type="device" data_device_name="" data_management_address="10.0.0.9">
    <mxGeometry x="0" y="0" width="160" height="80" as="geometry"/>
  </mxCell>
</root></mxGraphModel></diagram></mxfile>`

	file, err := drawio.Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	rep := report.New()
	topo, err := FromFile(file, nil, rep)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, links := topo.Counts(); links != 0 {
		t.Error("no links expected")
	}
	if len(topo.Devices()) != 0 {
		t.Error("nameless device must be skipped")
	}
	found := false
	for _, e := range rep.Errors() {
		if e.Code == apperrors.ErrCodeMissingDeviceIdentity {
			found = true
		}
	}
	if !found {
		t.Error("nameless device must be reported as MISSING_DEVICE_IDENTITY")
	}
}

const genericDoc = `<mxfile><diagram id="d"><mxGraphModel><root>
  <mxCell id="0"/><mxCell id="1" parent="0"/>
  <mxCell id="dc" value="DC-West" style="swimlane;startSize=40;" vertex="1" parent="1">
    <mxGeometry x="0" y="0" width="900" height="700" as="geometry"/>
  </mxCell>
  <mxCell id="zone" value="Core Zone" style="swimlane;startSize=40;" vertex="1" parent="dc">
    <mxGeometry x="40" y="60" width="600" height="400" as="geometry"/>
  </mxCell>
  <mxCell id="sw1" value="&lt;div&gt;&lt;b&gt;core-sw-01&lt;/b&gt;&lt;br/&gt;10.0.0.1&lt;/div&gt;" style="rounded=1;whiteSpace=wrap;html=1;" vertex="1" parent="zone">
    <mxGeometry x="40" y="80" width="160" height="80" as="geometry"/>
  </mxCell>
  <mxCell id="sw2" value="core-sw-02@10.0.0.2" style="rounded=1;whiteSpace=wrap;html=1;" vertex="1" parent="zone">
    <mxGeometry x="280" y="80" width="160" height="80" as="geometry"/>
  </mxCell>
  <mxCell id="edge1" style="endArrow=classic;html=1;" edge="1" parent="1" source="sw1" target="sw2">
    <mxGeometry relative="1" as="geometry"/>
  </mxCell>
  <mxCell id="lblS" value="接口: GE1/0/1&lt;br/&gt;VLAN: 100" style="edgeLabel;html=1;" vertex="1" connectable="0" parent="edge1">
    <mxGeometry x="-0.8" relative="1" as="geometry"/>
  </mxCell>
  <mxCell id="lblT" value="接口: GE1/0/2" style="edgeLabel;html=1;" vertex="1" connectable="0" parent="edge1">
    <mxGeometry x="0.8" relative="1" as="geometry"/>
  </mxCell>
</root></mxGraphModel></diagram></mxfile>`

func TestGenericExtraction(t *testing.T) {
	file, err := drawio.Parse([]byte(genericDoc))
	if err != nil {
		t.Fatal(err)
	}
	rep := report.New()
	topo, err := FromFile(file, schema.Default(), rep)
	if err != nil {
		t.Fatal(err)
	}

	dev1, ok := topo.Device(topology.DeviceKey("core-sw-01", "10.0.0.1"))
	if !ok {
		t.Fatal("core-sw-01 not recovered from HTML label")
	}
	if dev1.Region != "Core Zone" || dev1.Parent != "DC-West" {
		t.Errorf("region placement = (%q, %q), want (Core Zone, DC-West)", dev1.Region, dev1.Parent)
	}

	if _, ok := topo.Device(topology.DeviceKey("core-sw-02", "10.0.0.2")); !ok {
		t.Fatal("core-sw-02 not recovered from separator label")
	}

	if len(topo.Links()) != 1 {
		t.Fatalf("links = %d, want 1", len(topo.Links()))
	}
	link := topo.Links()[0]
	if link.Source.Interface != "GE1/0/1" || link.Source.VLAN != "100" {
		t.Errorf("source port info = %+v", link.Source)
	}
	if link.Target.Interface != "GE1/0/2" {
		t.Errorf("target port info = %+v", link.Target)
	}
	if link.Sequence != "" || link.Usage != "" {
		t.Error("generic links carry no sequence or usage")
	}
}

func TestGenericReversedEdge(t *testing.T) {
	doc := `<mxfile><diagram id="d"><mxGraphModel><root>
  <mxCell id="0"/><mxCell id="1" parent="0"/>
  <mxCell id="a" value="dev-a" style="rounded=1;" vertex="1" parent="1">
    <mxGeometry x="0" y="0" width="160" height="80" as="geometry"/>
  </mxCell>
  <mxCell id="b" value="dev-b" style="rounded=1;" vertex="1" parent="1">
    <mxGeometry x="300" y="0" width="160" height="80" as="geometry"/>
  </mxCell>
  <mxCell id="e" style="startArrow=classic;endArrow=none;" edge="1" parent="1" source="a" target="b"/>
</root></mxGraphModel></diagram></mxfile>`

	file, err := drawio.Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	topo, err := FromFile(file, nil, report.New())
	if err != nil {
		t.Fatal(err)
	}

	if len(topo.Links()) != 1 {
		t.Fatalf("links = %d, want 1", len(topo.Links()))
	}
	link := topo.Links()[0]
	if link.Source.Device != "dev-b" || link.Target.Device != "dev-a" {
		t.Errorf("arrow at source must flip the link: %s -> %s",
			link.Source.Device, link.Target.Device)
	}
}

func TestGenericSelfLoopSkipped(t *testing.T) {
	doc := `<mxfile><diagram id="d"><mxGraphModel><root>
  <mxCell id="0"/><mxCell id="1" parent="0"/>
  <mxCell id="a" value="dev-a" style="rounded=1;" vertex="1" parent="1">
    <mxGeometry x="0" y="0" width="160" height="80" as="geometry"/>
  </mxCell>
  <mxCell id="e" edge="1" parent="1" source="a" target="a"/>
</root></mxGraphModel></diagram></mxfile>`

	file, err := drawio.Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	rep := report.New()
	topo, err := FromFile(file, nil, rep)
	if err != nil {
		t.Fatal(err)
	}
	if len(topo.Links()) != 0 {
		t.Error("self-loop must not become a link")
	}
	if len(rep.Warnings()) == 0 {
		t.Error("self-loop must be reported")
	}
}

func TestParseDeviceLabel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		wantN string
		wantA string
		wantM string
	}{
		{"structured html", "<div><b>sw-01</b><br/>10.1.1.1</div>", "sw-01", "10.1.1.1", ""},
		{"div plus model", "<div>sw-01</div>CE8865-4C", "sw-01", "", "CE8865-4C"},
		{"two divs", "<div>fw-01</div><div>USG6635</div>", "fw-01", "", "USG6635"},
		{"at separator", "sw-01@10.1.1.1", "sw-01", "10.1.1.1", ""},
		{"pipe model", "sw-01|S5755", "sw-01", "", "S5755"},
		{"bare name", "sw-01", "sw-01", "", ""},
		{"empty", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, addr, model := parseDeviceLabel(tt.value)
			if name != tt.wantN || addr != tt.wantA || model != tt.wantM {
				t.Errorf("parseDeviceLabel(%q) = (%q, %q, %q), want (%q, %q, %q)",
					tt.value, name, addr, model, tt.wantN, tt.wantA, tt.wantM)
			}
		})
	}
}

func TestExtractValueSeparators(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"接口：GE1/0/1", "GE1/0/1"},
		{"interface: GE1/0/1", "GE1/0/1"},
		{"vlan=100", "100"},
		{"port GE1/0/1", "GE1/0/1"},
		{"just words", ""},
	}
	for _, tt := range tests {
		if got := extractValue(tt.line); got != tt.want {
			t.Errorf("extractValue(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestEdgeDirection(t *testing.T) {
	tests := []struct {
		style string
		want  direction
	}{
		{"endArrow=classic;", directionForward},
		{"startArrow=classic;endArrow=none;", directionReverse},
		{"startArrow=classic;endArrow=classic;", directionBidirectional},
		{"rounded=0;", directionNone},
		{"startArrow=none;endArrow=none;", directionNone},
	}
	for _, tt := range tests {
		if got := edgeDirection(tt.style); got != tt.want {
			t.Errorf("edgeDirection(%q) = %v, want %v", tt.style, got, tt.want)
		}
	}
}
