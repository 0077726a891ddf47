// Package manifest hands the annotated IR to the TypeScript template
// renderer. It writes a single manifest file describing every model,
// operation group and index file the renderer must produce.
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bndr/gotabulate"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2ts/internal/codegen"
	"github.com/mark3labs/swagger2ts/internal/spec"
)

// Format selects the manifest encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// BaseName is the manifest file name without extension.
const BaseName = "swagger2ts.manifest"

// ParseFormat maps a user-supplied format name to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("unknown manifest format %q (expected json, yaml or msgpack)", s)
	}
}

// Ext is the file extension used for the format.
func (f Format) Ext() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "json"
	}
}

// Options controls how the manifest is written.
type Options struct {
	OutDir  string // required; target directory
	Format  Format
	Force   bool      // write into a non-empty directory
	DryRun  bool      // don't write, only plan
	Out     io.Writer // receives the dry-run table; defaults to os.Stdout
	Verbose bool
	Logger  *zap.Logger
}

// PlannedFile is a TypeScript file the renderer will produce.
type PlannedFile struct {
	RelPath string
	Kind    string // "model", "api" or "index"
	Source  string // qualified model name or group key
}

// Result returns the manifest location and the planned renderer output.
type Result struct {
	Manifest string // path relative to OutDir
	Format   Format
	Size     int
	Planned  []PlannedFile
}

// Document is the manifest content.
type Document struct {
	Generator  string                    `json:"generator" yaml:"generator" msgpack:"generator"`
	Title      string                    `json:"title" yaml:"title" msgpack:"title"`
	Version    string                    `json:"version" yaml:"version" msgpack:"version"`
	Settings   Settings                  `json:"settings" yaml:"settings" msgpack:"settings"`
	Models     []*spec.ModelNode         `json:"models" yaml:"models" msgpack:"models"`
	Groups     []*codegen.OperationGroup `json:"groups" yaml:"groups" msgpack:"groups"`
	ModelIndex codegen.Index             `json:"modelIndex" yaml:"modelIndex" msgpack:"modelIndex"`
	APIIndex   codegen.Index             `json:"apiIndex" yaml:"apiIndex" msgpack:"apiIndex"`
}

// Settings echoes the configuration the renderer needs to stay consistent
// with the planned paths.
type Settings struct {
	SourceRoot   string `json:"sourceRoot" yaml:"sourceRoot" msgpack:"sourceRoot"`
	ModelPackage string `json:"modelPackage" yaml:"modelPackage" msgpack:"modelPackage"`
	APIPackage   string `json:"apiPackage" yaml:"apiPackage" msgpack:"apiPackage"`
	FileSuffix   string `json:"fileSuffix" yaml:"fileSuffix" msgpack:"fileSuffix"`
	ResourceName string `json:"resourceName,omitempty" yaml:"resourceName,omitempty" msgpack:"resourceName,omitempty"`
}

// NewDocument assembles the manifest for one pipeline result.
func NewDocument(ir *spec.IR, cfg codegen.Config, res *codegen.Result) *Document {
	doc := &Document{
		Generator: "swagger2ts",
		Settings: Settings{
			SourceRoot:   cfg.SourceRoot,
			ModelPackage: cfg.ModelPackage,
			APIPackage:   cfg.APIPackage,
			FileSuffix:   cfg.FileSuffix,
			ResourceName: cfg.ResourceName,
		},
		Models:     res.Models,
		Groups:     res.Groups,
		ModelIndex: res.ModelIndex,
		APIIndex:   res.APIIndex,
	}
	if ir != nil {
		doc.Title = ir.Title
		doc.Version = ir.Version
	}
	return doc
}

// Plan lists every file the renderer will produce, sorted by path.
func (d *Document) Plan() []PlannedFile {
	planned := make([]PlannedFile, 0, len(d.Models)+len(d.Groups)+2)
	for _, m := range d.Models {
		planned = append(planned, PlannedFile{RelPath: m.FilePath, Kind: "model", Source: m.Name})
	}
	for _, g := range d.Groups {
		planned = append(planned, PlannedFile{RelPath: g.FilePath, Kind: "api", Source: g.Key})
	}
	if d.ModelIndex.FilePath != "" {
		planned = append(planned, PlannedFile{RelPath: d.ModelIndex.FilePath, Kind: "index", Source: "model"})
	}
	if d.APIIndex.FilePath != "" {
		planned = append(planned, PlannedFile{RelPath: d.APIIndex.FilePath, Kind: "index", Source: "api"})
	}
	sort.Slice(planned, func(i, j int) bool { return planned[i].RelPath < planned[j].RelPath })
	return planned
}

// Encode serializes the document. The output is deterministic for a given
// document.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	default:
		return nil, fmt.Errorf("manifest: unsupported format %q", format)
	}
}

// Decode reads a manifest written by Encode.
func Decode(data []byte, format Format) (*Document, error) {
	doc := &Document{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, doc)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, doc)
	case FormatJSON, "":
		err = json.Unmarshal(data, doc)
	default:
		err = fmt.Errorf("manifest: unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Emit writes the manifest for doc into opts.OutDir. With DryRun it renders
// the plan as a table instead.
func Emit(ctx context.Context, doc *Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("manifest: nil document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("manifest: OutDir is required")
	}
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	content, err := Encode(doc, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	res := &Result{
		Manifest: BaseName + "." + opts.Format.Ext(),
		Format:   opts.Format,
		Size:     len(content),
		Planned:  doc.Plan(),
	}

	if opts.DryRun {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		if _, err := io.WriteString(out, RenderPlan(res.Planned)); err != nil {
			return nil, fmt.Errorf("write plan: %w", err)
		}
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := writeFile(opts.OutDir, res.Manifest, content, opts.Force); err != nil {
		return nil, err
	}
	if opts.Verbose {
		logger.Info("manifest written",
			zap.String("path", filepath.Join(opts.OutDir, res.Manifest)),
			zap.Int("bytes", res.Size),
			zap.Int("planned", len(res.Planned)))
	}
	return res, nil
}

// RenderPlan renders planned files as a grid table.
func RenderPlan(planned []PlannedFile) string {
	if len(planned) == 0 {
		return "no files planned\n"
	}
	rows := make([][]string, 0, len(planned))
	for _, p := range planned {
		rows = append(rows, []string{p.Kind, p.RelPath, p.Source})
	}
	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"Kind", "Path", "Source"})
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(85)
	return t.Render("grid")
}

func writeFile(outDir, rel string, content []byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("manifest: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	p := filepath.Join(abs, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// atomic write via temp file + rename
	tmp := p + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", rel, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", rel, err)
	}
	return nil
}
