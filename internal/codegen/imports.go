package codegen

import (
	"sort"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/spec"
)

// ObjectPlaceholder is the generic return type the schema parser emits for
// responses without a named schema (typically deletions).
const ObjectPlaceholder = "object"

// ImportGraph maps class names to import paths and resolves the imports of
// models and operations through that map.
type ImportGraph struct {
	resolver  *Resolver
	paths     map[string]string   // className -> importPath
	owners    map[string]string   // className -> qualified model name
	ambiguous map[string][]string // className -> every model carrying it
}

// NewImportGraph returns an empty graph.
func NewImportGraph(resolver *Resolver) *ImportGraph {
	return &ImportGraph{
		resolver:  resolver,
		paths:     map[string]string{},
		owners:    map[string]string{},
		ambiguous: map[string][]string{},
	}
}

// AddModels runs the model pass: it assigns every model its import path,
// records it, then resolves every model's own imports. Models must already
// carry their ClassName.
//
// Two models planned onto the same import path fail immediately. A class
// name shared by models in different folders is only an error once some
// model or operation imports it.
func (g *ImportGraph) AddModels(models []*spec.ModelNode) error {
	byPath := make(map[string]string, len(models))
	for _, m := range models {
		importPath := joinImport(g.resolver.FolderSegment(m.Name), m.ClassName)
		if other, ok := byPath[importPath]; ok && other != m.Name {
			return &ImportError{OwnerKind: "model", Owner: m.Name, ClassName: m.ClassName, Ambiguous: true, Conflict: other}
		}
		byPath[importPath] = m.Name
		m.ImportPath = importPath
		if existing, ok := g.paths[m.ClassName]; ok && existing != importPath {
			if _, seen := g.ambiguous[m.ClassName]; !seen {
				g.ambiguous[m.ClassName] = []string{g.owners[m.ClassName]}
			}
			g.ambiguous[m.ClassName] = append(g.ambiguous[m.ClassName], m.Name)
			continue
		}
		g.paths[m.ClassName] = importPath
		g.owners[m.ClassName] = m.Name
	}
	for _, m := range models {
		resolved, err := g.resolve("model", m.Name, m.Imports)
		if err != nil {
			return err
		}
		m.ResolvedImports = resolved
	}
	return nil
}

// Lookup returns the import path of a class name. Class names carried by
// models in more than one folder have no single path and report false.
func (g *ImportGraph) Lookup(className string) (string, bool) {
	if _, ok := g.ambiguous[className]; ok {
		return "", false
	}
	p, ok := g.paths[className]
	return p, ok
}

// ResolveGroup runs the operation pass for one group: every operation gets
// its resolved imports, the group aggregates them by class name, and the
// generic object return type is cleared.
func (g *ImportGraph) ResolveGroup(group *OperationGroup) error {
	tsImports := make(map[string]string)
	for _, op := range group.Operations {
		resolved, err := g.resolve("operation", op.ID(), op.Imports)
		if err != nil {
			return err
		}
		op.ResolvedImports = resolved
		for _, imp := range resolved {
			tsImports[imp.ClassName] = imp.ImportPath
		}
		if op.ReturnType == ObjectPlaceholder {
			op.ReturnType = ""
		}
	}
	group.TSImports = tsImports
	return nil
}

func (g *ImportGraph) resolve(kind, owner string, classNames []string) ([]spec.ResolvedImport, error) {
	if len(classNames) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(classNames))
	out := make([]spec.ResolvedImport, 0, len(classNames))
	for _, cls := range classNames {
		if seen[cls] {
			continue
		}
		seen[cls] = true
		if models, ok := g.ambiguous[cls]; ok {
			return nil, &ImportError{OwnerKind: kind, Owner: owner, ClassName: cls, Ambiguous: true, Conflict: strings.Join(models, ", ")}
		}
		p, ok := g.paths[cls]
		if !ok || p == "" {
			return nil, &ImportError{OwnerKind: kind, Owner: owner, ClassName: cls}
		}
		out = append(out, spec.ResolvedImport{ClassName: cls, ImportPath: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassName < out[j].ClassName })
	return out, nil
}
