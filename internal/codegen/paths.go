package codegen

import (
	"path"
	"strings"
)

// Planner computes where generated files live, relative to the output root.
// Paths are always slash-separated; the writer converts them for the host OS.
type Planner struct {
	cfg      Config
	resolver *Resolver
	namer    FileNamer
}

// NewPlanner validates cfg and returns a Planner. Package names containing
// traversal characters are rejected so no path can escape the source root.
func NewPlanner(cfg Config, resolver *Resolver, namer FileNamer) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if namer == nil {
		namer = DefaultFileNamer{}
	}
	return &Planner{cfg: cfg, resolver: resolver, namer: namer}, nil
}

// ModelDir is the directory holding all model files.
func (p *Planner) ModelDir() string {
	return path.Join(p.cfg.SourceRoot, packageDir(p.cfg.ModelPackage))
}

// APIDir is the directory holding all operation-group files.
func (p *Planner) APIDir() string {
	return path.Join(p.cfg.SourceRoot, packageDir(p.cfg.APIPackage))
}

// ModelFilePath returns the file of the model with the given qualified name:
// sourceRoot/modelPackage/<folder>/<ClassName><suffix>. The folder is omitted
// when the name has none.
func (p *Planner) ModelFilePath(qualified string) string {
	className := p.resolver.TypeName(qualified, p.cfg.SafePrefix)
	return path.Join(p.ModelDir(), p.resolver.FolderSegment(qualified), p.namer.ModelFileName(className)+p.cfg.FileSuffix)
}

// APIFilePath returns the file of the operation group with the given key.
func (p *Planner) APIFilePath(groupKey string) string {
	return path.Join(p.APIDir(), p.resolver.APIFolderSegment(groupKey), p.APIFileName(groupKey)+p.cfg.FileSuffix)
}

// APIFileName is the base name (no suffix) of an operation group's file.
func (p *Planner) APIFileName(groupKey string) string {
	return p.namer.APIFileName(groupKey)
}

// ModelIndexPath is the barrel file re-exporting every model.
func (p *Planner) ModelIndexPath() string {
	return path.Join(p.ModelDir(), p.cfg.ResourceNamePrefix()+"index"+p.cfg.FileSuffix)
}

// APIIndexPath is the barrel file re-exporting every operation group.
func (p *Planner) APIIndexPath() string {
	return path.Join(p.APIDir(), p.cfg.ResourceNamePrefix()+"index"+p.cfg.FileSuffix)
}

// packageDir maps a dotted package name to nested directories.
func packageDir(pkg string) string {
	return strings.ReplaceAll(pkg, ".", "/")
}

// joinImport joins a folder segment and a file base name, dropping the
// folder when it is empty.
func joinImport(folder, name string) string {
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
