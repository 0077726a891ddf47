// Package codegen annotates the API intermediate representation for the
// TypeScript renderer. It resolves class names, plans file locations, builds
// the import graph between operation files and models, groups operations by
// tag and applies skip rules and description overrides.
//
// The package does not render text: its output is the annotated IR plus a
// Result describing every file the renderer should produce.
package codegen

import (
	"context"
	"fmt"
	"path"
	"sort"

	"go.uber.org/zap"

	"github.com/mark3labs/swagger2ts/internal/spec"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for diagnostics. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithFileNamer overrides the renderer's file naming convention.
func WithFileNamer(namer FileNamer) Option {
	return func(p *Pipeline) {
		if namer != nil {
			p.namer = namer
		}
	}
}

// IndexEntry is one re-export of a barrel file.
type IndexEntry struct {
	Name       string `json:"name" yaml:"name" msgpack:"name"`
	ImportPath string `json:"importPath" yaml:"importPath" msgpack:"importPath"`
}

// Index is a barrel file listing.
type Index struct {
	FilePath string       `json:"filePath" yaml:"filePath" msgpack:"filePath"`
	Entries  []IndexEntry `json:"entries" yaml:"entries" msgpack:"entries"`
}

// Result is the annotated output of one run.
type Result struct {
	Models     []*spec.ModelNode `json:"models" yaml:"models" msgpack:"models"`
	Groups     []*OperationGroup `json:"groups" yaml:"groups" msgpack:"groups"`
	ModelIndex Index             `json:"modelIndex" yaml:"modelIndex" msgpack:"modelIndex"`
	APIIndex   Index             `json:"apiIndex" yaml:"apiIndex" msgpack:"apiIndex"`
}

// Pipeline runs the annotation stages in a fixed order over one IR snapshot.
type Pipeline struct {
	cfg      Config
	resolver *Resolver
	namer    FileNamer
	planner  *Planner
	logger   *zap.Logger
}

// New validates cfg and builds a Pipeline. Configuration errors are reported
// here, before any IR is touched.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:    cfg.clone(),
		namer:  DefaultFileNamer{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.resolver = NewResolver(p.cfg.NamespacePrefix)
	planner, err := NewPlanner(p.cfg, p.resolver, p.namer)
	if err != nil {
		return nil, err
	}
	p.planner = planner
	return p, nil
}

// Config returns a copy of the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg.clone() }

// Resolver exposes the name resolver so the IR builder can name types the
// same way the pipeline does.
func (p *Pipeline) Resolver() *Resolver { return p.resolver }

// TypeName resolves a schema name with the configured safe prefix.
func (p *Pipeline) TypeName(schemaName string) string {
	return p.resolver.TypeName(schemaName, p.cfg.SafePrefix)
}

// Run annotates ir in place and returns the planned output. Running it twice
// on the same snapshot yields the same result. Any structural error aborts
// the run; there is no partial output.
func (p *Pipeline) Run(ctx context.Context, ir *spec.IR) (*Result, error) {
	if ir == nil {
		return nil, fmt.Errorf("codegen: nil IR")
	}

	overridden := InjectDescriptions(p.cfg.DescriptionOverrideKey, ir.Models, ir.Operations)
	p.logger.Debug("description overrides applied", zap.Int("nodes", overridden))

	for _, m := range ir.Models {
		m.ClassName = p.TypeName(m.Name)
		m.FilePath = p.planner.ModelFilePath(m.Name)
	}
	graph := NewImportGraph(p.resolver)
	if err := graph.AddModels(ir.Models); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grouper := NewGrouper(p.cfg.SkipRules, p.logger)
	groups := grouper.Filter(grouper.Group(ir.Operations))
	for _, grp := range groups {
		grp.ClassName = p.planner.APIFileName(grp.Key)
		grp.FilePath = p.planner.APIFilePath(grp.Key)
		grp.ImportPath = p.resolver.APIFolderSegment(grp.Key)
		if err := graph.ResolveGroup(grp); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Models:     ir.Models,
		Groups:     groups,
		ModelIndex: p.modelIndex(ir.Models),
		APIIndex:   p.apiIndex(groups),
	}
	p.logger.Info("codegen plan ready",
		zap.Int("models", len(res.Models)),
		zap.Int("groups", len(res.Groups)),
		zap.Int("operations", countOperations(groups)))
	return res, nil
}

func (p *Pipeline) modelIndex(models []*spec.ModelNode) Index {
	entries := make([]IndexEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, IndexEntry{Name: m.ClassName, ImportPath: m.ImportPath})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return Index{FilePath: p.planner.ModelIndexPath(), Entries: entries}
}

func (p *Pipeline) apiIndex(groups []*OperationGroup) Index {
	entries := make([]IndexEntry, 0, len(groups))
	for _, grp := range groups {
		entries = append(entries, IndexEntry{Name: grp.ClassName, ImportPath: path.Join(grp.ImportPath, grp.ClassName)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return Index{FilePath: p.planner.APIIndexPath(), Entries: entries}
}

func countOperations(groups []*OperationGroup) int {
	n := 0
	for _, grp := range groups {
		n += len(grp.Operations)
	}
	return n
}
