package spec

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const schemaRefPrefix = "#/components/schemas/"

// TypeNamer maps a fully-qualified schema name to the class name the
// renderer will emit for it.
type TypeNamer func(schemaName string) string

// BuildOption configures how the IR is built from an OpenAPI doc.
type BuildOption func(*buildConfig)

type buildConfig struct {
	typeNamer   TypeNamer
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
}

// WithTypeNamer sets the schema name → class name mapping used for models,
// imports and return types. Without it schema names are used verbatim.
func WithTypeNamer(fn TypeNamer) BuildOption {
	return func(c *buildConfig) {
		if fn != nil {
			c.typeNamer = fn
		}
	}
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// BuildIR converts an OpenAPI v3 document into the IR consumed by the codegen
// pipeline. Models and operations come out in a deterministic order.
func BuildIR(ctx context.Context, doc *openapi3.T, opts ...BuildOption) (*IR, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	cfg := &buildConfig{typeNamer: func(s string) string { return s }}
	for _, opt := range opts {
		opt(cfg)
	}

	ir := &IR{}
	if doc.Info != nil {
		ir.Title = safeStr(doc.Info.Title)
		ir.Version = safeStr(doc.Info.Version)
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, name := range names {
			ref := doc.Components.Schemas[name]
			if ref == nil {
				continue
			}
			ir.Models = append(ir.Models, buildModel(cfg, name, ref))
		}
	}

	if doc.Paths != nil {
		pathKeys := make([]string, 0, len(doc.Paths))
		for p := range doc.Paths {
			pathKeys = append(pathKeys, p)
		}
		sort.Strings(pathKeys)

		for _, p := range pathKeys {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			item := doc.Paths[p]
			if item == nil {
				continue
			}
			ops := []struct {
				m HttpMethod
				o *openapi3.Operation
			}{
				{GET, item.Get},
				{POST, item.Post},
				{PUT, item.Put},
				{DELETE, item.Delete},
				{PATCH, item.Patch},
				{HEAD, item.Head},
				{OPTIONS, item.Options},
				{TRACE, item.Trace},
			}
			for _, pair := range ops {
				if pair.o == nil {
					continue
				}
				tags := make([]string, 0, len(pair.o.Tags))
				for _, t := range pair.o.Tags {
					if t = strings.TrimSpace(t); t != "" {
						tags = append(tags, t)
					}
				}
				if !allowByTags(tags, cfg) {
					continue
				}
				ir.Operations = append(ir.Operations, buildOperation(cfg, pair.m, p, item.Parameters, pair.o, tags))
			}
		}
	}

	return ir, nil
}

func buildModel(cfg *buildConfig, name string, ref *openapi3.SchemaRef) *ModelNode {
	m := &ModelNode{
		Name:      name,
		ClassName: cfg.typeNamer(name),
	}
	if ref.Value != nil {
		m.UnescapedDescription = safeStr(ref.Value.Description)
		m.Description = EscapeText(m.UnescapedDescription)
		m.VendorExtensions = copyExtensions(ref.Value.Extensions)
	}
	imports := newImportSet()
	collectSchemaImports(cfg, ref.Value, imports, map[*openapi3.Schema]bool{})
	delete(imports, m.ClassName)
	m.Imports = imports.sorted()
	return m
}

func buildOperation(cfg *buildConfig, method HttpMethod, path string, pathParams openapi3.Parameters, o *openapi3.Operation, tags []string) *OperationNode {
	op := &OperationNode{
		OperationID:      safeStr(o.OperationID),
		HTTPMethod:       method,
		Path:             path,
		Summary:          safeStr(o.Summary),
		Tags:             tags,
		UnescapedNotes:   safeStr(o.Description),
		VendorExtensions: copyExtensions(o.Extensions),
	}
	op.Notes = EscapeText(op.UnescapedNotes)
	imports := newImportSet()

	// Path-level parameters first, overridden by operation-level ones.
	merged := make(map[string]*Parameter)
	var order []string
	for _, list := range []openapi3.Parameters{pathParams, o.Parameters} {
		for _, pref := range list {
			pm := toParameter(cfg, pref, imports)
			if pm == nil {
				continue
			}
			key := paramKey(pm.In, pm.Name)
			if _, seen := merged[key]; !seen {
				order = append(order, key)
			}
			merged[key] = pm
		}
	}
	for _, key := range order {
		op.Parameters = append(op.Parameters, merged[key])
	}

	if o.RequestBody != nil && o.RequestBody.Value != nil {
		if media := pickMedia(o.RequestBody.Value.Content); media != nil && media.Schema != nil {
			body := &Parameter{
				Name:     "body",
				In:       "body",
				Required: o.RequestBody.Value.Required,
				DataType: typeExpr(cfg, media.Schema, imports),
			}
			body.UnescapedDescription = safeStr(o.RequestBody.Value.Description)
			body.Description = EscapeText(body.UnescapedDescription)
			body.VendorExtensions = copyExtensions(o.RequestBody.Value.Extensions)
			op.Parameters = append(op.Parameters, body)
		}
	}

	op.ReturnType = returnType(cfg, o.Responses, imports)
	op.Imports = imports.sorted()
	return op
}

func toParameter(cfg *buildConfig, pref *openapi3.ParameterRef, imports importSet) *Parameter {
	if pref == nil || pref.Value == nil {
		return nil
	}
	p := pref.Value
	pm := &Parameter{
		Name:                 safeStr(p.Name),
		In:                   safeStr(p.In),
		Required:             p.Required,
		UnescapedDescription: safeStr(p.Description),
		VendorExtensions:     copyExtensions(p.Extensions),
	}
	pm.Description = EscapeText(pm.UnescapedDescription)
	if p.Schema != nil {
		pm.DataType = typeExpr(cfg, p.Schema, imports)
	}
	return pm
}

// returnType picks the first 2xx response with a body. Inline objects become
// the generic "object" placeholder which the pipeline later clears.
func returnType(cfg *buildConfig, responses openapi3.Responses, imports importSet) string {
	if responses == nil {
		return ""
	}
	codes := make([]string, 0, len(responses))
	for code := range responses {
		if strings.HasPrefix(code, "2") {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	for _, code := range codes {
		rref := responses[code]
		if rref == nil || rref.Value == nil {
			continue
		}
		media := pickMedia(rref.Value.Content)
		if media == nil || media.Schema == nil {
			continue
		}
		return typeExpr(cfg, media.Schema, imports)
	}
	return ""
}

func pickMedia(content openapi3.Content) *openapi3.MediaType {
	if len(content) == 0 {
		return nil
	}
	if mt, ok := content["application/json"]; ok && mt != nil {
		return mt
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return content[keys[0]]
}

// typeExpr renders a TypeScript type expression for a schema reference and
// records any referenced model class names.
func typeExpr(cfg *buildConfig, ref *openapi3.SchemaRef, imports importSet) string {
	if ref == nil {
		return "any"
	}
	if name, ok := refName(ref.Ref); ok {
		cls := cfg.typeNamer(name)
		imports.add(cls)
		return cls
	}
	s := ref.Value
	if s == nil {
		return "any"
	}
	switch s.Type {
	case "array":
		return "Array<" + typeExpr(cfg, s.Items, imports) + ">"
	case "string":
		if s.Format == "date-time" || s.Format == "date" {
			return "Date"
		}
		return "string"
	case "integer", "number":
		return "number"
	case "boolean":
		return "boolean"
	default:
		// grpc-gateway emits `{type: object}` for empty messages.
		collectSchemaImports(cfg, s, imports, map[*openapi3.Schema]bool{})
		return "object"
	}
}

func collectSchemaImports(cfg *buildConfig, s *openapi3.Schema, imports importSet, visited map[*openapi3.Schema]bool) {
	if s == nil || visited[s] {
		return
	}
	visited[s] = true
	visit := func(ref *openapi3.SchemaRef) {
		if ref == nil {
			return
		}
		if name, ok := refName(ref.Ref); ok {
			imports.add(cfg.typeNamer(name))
			return
		}
		collectSchemaImports(cfg, ref.Value, imports, visited)
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		visit(s.Properties[name])
	}
	visit(s.Items)
	for _, group := range [][]*openapi3.SchemaRef{s.AllOf, s.AnyOf, s.OneOf} {
		for _, r := range group {
			visit(r)
		}
	}
}

func refName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, schemaRefPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, schemaRefPrefix)
	return name, name != ""
}

// copyExtensions detaches the IR from the document and decodes raw JSON
// extension values into plain Go values.
func copyExtensions(ext map[string]interface{}) map[string]any {
	if len(ext) == 0 {
		return nil
	}
	out := make(map[string]any, len(ext))
	for k, v := range ext {
		if raw, ok := v.(json.RawMessage); ok {
			var decoded any
			if err := json.Unmarshal(raw, &decoded); err == nil {
				v = decoded
			}
		}
		out[k] = v
	}
	return out
}

type importSet map[string]struct{}

func newImportSet() importSet { return importSet{} }

func (s importSet) add(name string) {
	if name != "" {
		s[name] = struct{}{}
	}
}

func (s importSet) sorted() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func allowByTags(tags []string, cfg *buildConfig) bool {
	if len(cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := cfg.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }
