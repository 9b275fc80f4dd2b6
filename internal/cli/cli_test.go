package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func testCLI() *CLI {
	return New(io.Discard, log.FatalLevel)
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	root := testCLI().RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := testCLI().RootCommand()

	want := []string{"convert", "preview", "template", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestTemplateCommandWritesHeader(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "blank.csv")

	if err := runCommand(t, "template", "-o", out, "-e", "utf-8"); err != nil {
		t.Fatalf("template: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	header := string(data)
	for _, col := range []string{"序号", "源-设备名", "目标-设备名", "互联用途"} {
		if !strings.Contains(header, col) {
			t.Errorf("template header missing column %q", col)
		}
	}
	if strings.Count(strings.TrimSpace(header), "\n") != 0 {
		t.Error("template must contain only the header row")
	}
}

func TestTemplateCommandUniversalWritesSibling(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "blank.csv")

	if err := runCommand(t, "template", "-o", out); err != nil {
		t.Fatalf("template: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("missing UTF-8 artifact: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "blank.gbk.csv")); err != nil {
		t.Errorf("missing GBK sibling: %v", err)
	}
}

func TestConvertCommandRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "links.csv")
	csv := "序号,源-设备名,源-管理地址,源-物理接口,互联用途,目标-物理接口,目标-管理地址,目标-设备名\n" +
		"1,sw-a,10.0.0.1,GE1/0/1,uplink,GE0/0/1,10.0.0.2,fw-b\n"
	if err := os.WriteFile(input, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runCommand(t, "convert", input); err != nil {
		t.Fatalf("convert: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "links.drawio"))
	if err != nil {
		t.Fatalf("read diagram: %v", err)
	}
	if !strings.Contains(string(data), "<mxfile") {
		t.Error("convert must produce a draw.io document")
	}
}

func TestConvertCommandBatchPlain(t *testing.T) {
	dir := t.TempDir()
	csv := "序号,源-设备名,源-管理地址,互联用途,目标-管理地址,目标-设备名\n" +
		"1,sw-a,10.0.0.1,uplink,10.0.0.2,fw-b\n"
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte(csv), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := runCommand(t, "convert", "--plain", a, b); err != nil {
		t.Fatalf("batch convert: %v", err)
	}
	for _, p := range []string{"a.drawio", "b.drawio"} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("missing output %s: %v", p, err)
		}
	}
}

func TestConvertCommandBatchReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.csv")
	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(good, []byte("序号,源-设备名,目标-设备名\n1,a,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("序号,备注\n1,x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runCommand(t, "convert", "--plain", good, bad); err == nil {
		t.Error("batch with a structurally broken file must report failure")
	}
	if _, err := os.Stat(filepath.Join(dir, "good.drawio")); err != nil {
		t.Errorf("healthy input must still convert: %v", err)
	}
}

func TestConvertCommandInvalidDirection(t *testing.T) {
	if err := runCommand(t, "convert", "-d", "sideways", "whatever.csv"); err == nil {
		t.Error("invalid direction must be rejected before any file is read")
	}
}

func TestPreviewCommandDOT(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "links.csv")
	csv := "序号,源-所属区域,源-设备名,源-管理地址,互联用途,目标-管理地址,目标-设备名,目标-所属区域\n" +
		"1,核心区,sw-a,10.0.0.1,uplink,10.0.0.2,fw-b,核心区\n"
	if err := os.WriteFile(input, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "preview.dot")
	if err := runCommand(t, "preview", "-f", "dot", "-o", out, input); err != nil {
		t.Fatalf("preview: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)
	if !strings.Contains(dot, "graph topology {") {
		t.Error("preview must emit DOT")
	}
	if !strings.Contains(dot, `label="核心区"`) {
		t.Error("region must become a cluster label")
	}
}

func TestPreviewCommandRejectsUnknownFormat(t *testing.T) {
	if err := runCommand(t, "preview", "-f", "gif", "whatever.csv"); err == nil {
		t.Error("unknown preview format must be rejected")
	}
}

func TestCompletionCommandBash(t *testing.T) {
	root := testCLI().RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"completion", "bash"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(buf.String(), "topotab") {
		t.Error("bash completion script must reference the binary name")
	}
}

func TestCompletionCommandRejectsUnknownShell(t *testing.T) {
	if err := runCommand(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell must be rejected")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	if cfg.Encoding != "universal" {
		t.Errorf("default encoding = %q, want universal", cfg.Encoding)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "topotab.toml")
	if err := os.WriteFile(path, []byte("encoding = \"gbk\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Encoding != "gbk" {
		t.Errorf("encoding = %q, want gbk", cfg.Encoding)
	}

	if _, err := loadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing config file must be an error")
	}
}
