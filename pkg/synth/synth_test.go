package synth

import (
	"testing"

	apperrors "github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/report"
	"github.com/topotab/topotab/pkg/schema"
	"github.com/topotab/topotab/pkg/tabular"
	"github.com/topotab/topotab/pkg/topology"
)

func minimalDoc(rows ...[]string) *tabular.Document {
	doc := tabular.NewDocument([]string{
		"序号", "源-父区域", "源-所属区域", "源-设备名", "源-管理地址", "源-物理接口",
		"互联用途",
		"目标-物理接口", "目标-管理地址", "目标-设备名", "目标-所属区域", "目标-父区域",
	})
	for _, row := range rows {
		doc.AppendRow(row)
	}
	return doc
}

func TestFromDocument(t *testing.T) {
	doc := minimalDoc(
		[]string{"1", "生产数据中心", "核心区", "core-sw-01", "10.0.0.1", "GE1/0/1",
			"上行链路", "GE0/0/1", "10.0.0.2", "fw-01", "核心区", "生产数据中心"},
		[]string{"2", "生产数据中心", "核心区", "core-sw-01", "10.0.0.1", "GE1/0/2",
			"", "GE0/0/2", "10.0.0.2", "fw-01", "核心区", "生产数据中心"},
	)

	rep := report.New()
	res, err := FromDocument(doc, nil, rep)
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	if len(rep.Errors()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", rep.Entries)
	}

	topo := res.Topology
	regions, devices, links := topo.Counts()
	if regions != 2 || devices != 2 || links != 2 {
		t.Fatalf("counts = (%d, %d, %d), want (2, 2, 2)", regions, devices, links)
	}

	// Parallel rows stay distinct links.
	if topo.Links()[0].Source.Interface == topo.Links()[1].Source.Interface {
		t.Error("parallel rows must keep their own interfaces")
	}

	dev, ok := topo.Device(topology.DeviceKey("core-sw-01", "10.0.0.1"))
	if !ok {
		t.Fatal("device not materialized from row")
	}
	if dev.Region != "核心区" || dev.Parent != "生产数据中心" {
		t.Errorf("device placement = (%q, %q)", dev.Region, dev.Parent)
	}

	if _, ok := topo.Region(topology.RegionKey("生产数据中心", "核心区")); !ok {
		t.Error("scoped region not materialized")
	}
}

func TestRowMissingDeviceSkipped(t *testing.T) {
	doc := minimalDoc(
		[]string{"1", "", "", "core-sw-01", "10.0.0.1", "GE1/0/1",
			"", "GE0/0/1", "10.0.0.2", "", "", ""},
		[]string{"2", "", "", "core-sw-01", "10.0.0.1", "GE1/0/2",
			"", "GE0/0/2", "10.0.0.2", "fw-01", "", ""},
	)

	rep := report.New()
	res, err := FromDocument(doc, nil, rep)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Topology.Links()) != 1 {
		t.Errorf("links = %d, want 1 (bad row skipped)", len(res.Topology.Links()))
	}
	found := false
	for _, e := range rep.Errors() {
		if e.Code == apperrors.ErrCodeMissingDeviceIdentity {
			found = true
		}
	}
	if !found {
		t.Error("skipped row must be reported as MISSING_DEVICE_IDENTITY")
	}
}

func TestEmptyRowsIgnored(t *testing.T) {
	doc := minimalDoc(
		[]string{"", "", "", "", "", "", "", "", "", "", "", ""},
	)
	rep := report.New()
	res, err := FromDocument(doc, nil, rep)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Topology.Links()) != 0 || len(rep.Errors()) != 0 {
		t.Error("blank rows are ignored silently")
	}
}

func TestAmbiguousHeaderFails(t *testing.T) {
	doc := tabular.NewDocument([]string{"序号", "备注", "带宽"})
	_, err := FromDocument(doc, nil, report.New())
	if err == nil {
		t.Fatal("header without device columns must fail")
	}
	if !apperrors.Is(err, apperrors.ErrCodeSchemaAmbiguous) {
		t.Errorf("error code = %v, want SCHEMA_AMBIGUOUS", apperrors.GetCode(err))
	}
}

func TestFirstSeenWinsAcrossRows(t *testing.T) {
	doc := tabular.NewDocument([]string{
		"源-设备名", "源-管理地址", "源-设备型号", "目标-设备名", "目标-管理地址",
	})
	doc.AppendRow([]string{"sw-a", "10.0.0.1", "CE8865", "sw-b", "10.0.0.2"})
	doc.AppendRow([]string{"sw-a", "10.0.0.1", "S5755", "sw-b", "10.0.0.2"})

	res, err := FromDocument(doc, schema.Default(), report.New())
	if err != nil {
		t.Fatal(err)
	}

	dev, _ := res.Topology.Device(topology.DeviceKey("sw-a", "10.0.0.1"))
	if dev.Model != "CE8865" {
		t.Errorf("model = %q, want first-seen CE8865", dev.Model)
	}
	if len(res.Topology.Conflicts()) == 0 {
		t.Error("conflicting model must be recorded")
	}
}
