package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/topotab/topotab/pkg/detect"
	"github.com/topotab/topotab/pkg/drawio"
	"github.com/topotab/topotab/pkg/errors"
	"github.com/topotab/topotab/pkg/extract"
	"github.com/topotab/topotab/pkg/observability"
	"github.com/topotab/topotab/pkg/records"
	"github.com/topotab/topotab/pkg/report"
	"github.com/topotab/topotab/pkg/schema"
	"github.com/topotab/topotab/pkg/synth"
	"github.com/topotab/topotab/pkg/tabular"
	"github.com/topotab/topotab/pkg/topology"
)

// Runner executes conversions. It is stateless except for configuration and
// logging; multiple goroutines can safely share one Runner.
type Runner struct {
	Config *schema.Config
	Logger *log.Logger
}

// NewRunner creates a runner. A nil config means built-in defaults; a nil
// logger discards.
func NewRunner(cfg *schema.Config, logger *log.Logger) *Runner {
	if cfg == nil {
		cfg = schema.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Config: cfg, Logger: logger}
}

// Execute converts one file end to end.
func (r *Runner) Execute(ctx context.Context, path string, opts Options) (*Result, error) {
	if opts.Config == nil {
		opts.Config = r.Config
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}

	result := &Result{
		Input:  path,
		Report: report.New(),
	}
	hooks := observability.Conversion()

	// Stage 1: Load
	loadStart := time.Now()
	hooks.OnLoadStart(ctx, path)
	data, err := os.ReadFile(path)
	hooks.OnLoadComplete(ctx, path, len(data), time.Since(loadStart), err)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input %s", path)
	}
	result.Stats.LoadTime = time.Since(loadStart)

	result.Kind, err = resolveKind(opts.Direction, path, data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "conversion canceled")
	}

	// Stages 2 and 3: Convert and Serialize
	switch result.Kind {
	case detect.KindDiagram:
		err = r.diagramToTable(ctx, path, data, opts, result)
	case detect.KindTable:
		err = r.tableToDiagram(ctx, path, data, opts, result)
	}
	if err != nil {
		return nil, err
	}

	regions, devices, links := result.Topology.Counts()
	result.Stats.Regions = regions
	result.Stats.Devices = devices
	result.Stats.Links = links

	opts.Logger.Info("converted",
		"input", path,
		"outputs", result.Outputs,
		"regions", regions,
		"devices", devices,
		"links", links,
		"diagnostics", result.Report.Summary())
	return result, nil
}

// ExecuteBatch converts several files concurrently. Files fail independently:
// a structural error in one input is recorded and the rest keep going.
func (r *Runner) ExecuteBatch(ctx context.Context, paths []string, opts Options) *BatchResult {
	batch := &BatchResult{Failures: make(map[string]error)}
	if opts.OutputPath != "" && len(paths) > 1 {
		for _, path := range paths {
			batch.Failures[path] = errors.New(errors.ErrCodeInvalidConfig,
				"an explicit output path cannot apply to %d inputs", len(paths))
		}
		return batch
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			res, err := r.Execute(ctx, path, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				batch.Failures[path] = err
				return
			}
			batch.Results = append(batch.Results, res)
		}(path)
	}
	wg.Wait()
	return batch
}

// =============================================================================
// Directions
// =============================================================================

// diagramToTable extracts a topology from draw.io XML and serializes the
// connection-record table.
func (r *Runner) diagramToTable(ctx context.Context, path string, data []byte, opts Options, result *Result) error {
	hooks := observability.Conversion()

	convertStart := time.Now()
	hooks.OnExtractStart(ctx, path)
	file, err := drawio.Parse(data)
	var topo *topology.Topology
	if err == nil {
		topo, err = extract.FromFile(file, opts.Config, result.Report)
	}
	links := 0
	if topo != nil {
		_, _, links = topo.Counts()
	}
	hooks.OnExtractComplete(ctx, path, links, time.Since(convertStart), err)
	if err != nil {
		return err
	}
	result.Topology = topo

	tableSchema, err := r.outputSchema(opts)
	if err != nil {
		return err
	}
	doc := records.NewBuilder(tableSchema).Document(result.Topology, result.Report)
	result.Stats.ConvertTime = time.Since(convertStart)

	enc, err := tabular.ParseEncoding(opts.encoding())
	if err != nil {
		return err
	}
	outPath, err := outputPath(path, ".csv", opts)
	if err != nil {
		return err
	}
	artifacts, err := tabular.EncodeAll(doc, outPath, enc)
	if err != nil {
		return err
	}

	serializeStart := time.Now()
	hooks.OnSerializeStart(ctx, outPath)
	outputs, written, err := publishAll(artifacts)
	hooks.OnSerializeComplete(ctx, outPath, written, time.Since(serializeStart), err)
	result.Stats.SerializeTime = time.Since(serializeStart)
	if err != nil {
		return err
	}
	result.Outputs = append(result.Outputs, outputs...)
	return nil
}

// tableToDiagram synthesizes a topology from a table and serializes the
// draw.io document.
func (r *Runner) tableToDiagram(ctx context.Context, path string, data []byte, opts Options, result *Result) error {
	hooks := observability.Conversion()

	convertStart := time.Now()
	hooks.OnSynthesizeStart(ctx, path)
	res, err := func() (*synth.Result, error) {
		doc, err := tabular.ReadBytes(data, tabular.EncodingAuto)
		if err != nil {
			return nil, err
		}
		return synth.FromDocument(doc, opts.Config, result.Report)
	}()
	links := 0
	if res != nil {
		_, _, links = res.Topology.Counts()
	}
	hooks.OnSynthesizeComplete(ctx, path, links, time.Since(convertStart), err)
	if err != nil {
		return err
	}
	result.Topology = res.Topology
	result.Detection = res.Detection

	writer := drawio.NewWriter(opts.Config.Styles)
	file, err := writer.Write(res.Topology, result.Report)
	if err != nil {
		return err
	}
	out, err := drawio.Marshal(file)
	if err != nil {
		return err
	}
	result.Stats.ConvertTime = time.Since(convertStart)

	outPath, err := outputPath(path, ".drawio", opts)
	if err != nil {
		return err
	}

	serializeStart := time.Now()
	hooks.OnSerializeStart(ctx, outPath)
	err = writeAtomic(outPath, out)
	hooks.OnSerializeComplete(ctx, outPath, len(out), time.Since(serializeStart), err)
	if err != nil {
		return err
	}
	result.Outputs = append(result.Outputs, outPath)
	result.Stats.SerializeTime = time.Since(serializeStart)
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// resolveKind applies the forced direction or falls back to detection.
func resolveKind(d Direction, path string, data []byte) (detect.Kind, error) {
	switch d {
	case DirectionToTable:
		return detect.KindDiagram, nil
	case DirectionToDiagram:
		return detect.KindTable, nil
	default:
		return detect.Classify(path, data), nil
	}
}

// outputSchema resolves the output column order: template header first, then
// the configured columns.
func (r *Runner) outputSchema(opts Options) (*schema.Schema, error) {
	if opts.Template == "" {
		return opts.Config.Schema(), nil
	}
	doc, err := tabular.Read(opts.Template, tabular.EncodingAuto)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read template %s", opts.Template)
	}
	return schema.FromHeader(doc.Header, opts.Config), nil
}

// outputPath derives where the converted file lands: the explicit override,
// or the input name with the opposite extension, optionally redirected into
// the output directory.
func outputPath(input, ext string, opts Options) (string, error) {
	if opts.OutputPath != "" {
		return opts.OutputPath, nil
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ext
	dir := filepath.Dir(input)
	if opts.OutputDir != "" {
		dir = opts.OutputDir
	}
	out := filepath.Join(dir, base)
	if err := errors.ValidateOutputPath(out); err != nil {
		return "", err
	}
	return out, nil
}

// writeAtomic writes data through a temp file in the destination directory so
// a crash never leaves a half-written artifact.
func writeAtomic(path string, data []byte) error {
	tmpName, err := stageTemp(path, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "publish %s", path)
	}
	return nil
}

// publishAll stages every artifact as a temp file before renaming any of
// them. Sibling artifacts, such as the UTF-8 table and its GBK twin, appear
// together or not at all: a failure mid-publish removes the outputs that
// already landed.
func publishAll(artifacts []tabular.Artifact) ([]string, int, error) {
	temps := make([]string, 0, len(artifacts))
	defer func() {
		for _, tmp := range temps {
			os.Remove(tmp)
		}
	}()

	var written int
	for _, artifact := range artifacts {
		tmpName, err := stageTemp(artifact.Path, artifact.Data)
		if err != nil {
			return nil, written, err
		}
		temps = append(temps, tmpName)
		written += len(artifact.Data)
	}

	outputs := make([]string, 0, len(artifacts))
	for i, artifact := range artifacts {
		if err := os.Rename(temps[i], artifact.Path); err != nil {
			for _, out := range outputs {
				os.Remove(out)
			}
			return nil, written, errors.Wrap(errors.ErrCodeInvalidPath, err, "publish %s", artifact.Path)
		}
		outputs = append(outputs, artifact.Path)
	}
	return outputs, written, nil
}

// stageTemp writes data into a temp file next to path and returns the temp
// name; the caller renames or removes it.
func stageTemp(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", errors.Wrap(errors.ErrCodeInternal, err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", errors.Wrap(errors.ErrCodeInternal, err, "close %s", tmpName)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", errors.Wrap(errors.ErrCodeInternal, err, "chmod %s", tmpName)
	}
	return tmpName, nil
}
