package spec

// Intermediate representation (IR) handed from the document loader to the
// codegen pipeline and, once annotated, to the template renderer.

type HttpMethod string

const (
	GET     HttpMethod = "GET"
	POST    HttpMethod = "POST"
	PUT     HttpMethod = "PUT"
	DELETE  HttpMethod = "DELETE"
	PATCH   HttpMethod = "PATCH"
	HEAD    HttpMethod = "HEAD"
	OPTIONS HttpMethod = "OPTIONS"
	TRACE   HttpMethod = "TRACE"
)

// IR is one snapshot of an API surface.
type IR struct {
	Title      string           `json:"title" yaml:"title" msgpack:"title"`
	Version    string           `json:"version" yaml:"version" msgpack:"version"`
	Models     []*ModelNode     `json:"models" yaml:"models" msgpack:"models"`
	Operations []*OperationNode `json:"operations" yaml:"operations" msgpack:"operations"`
}

// ResolvedImport pairs a referenced class name with the path it is imported from.
type ResolvedImport struct {
	ClassName  string `json:"classname" yaml:"classname" msgpack:"classname"`
	ImportPath string `json:"filename" yaml:"filename" msgpack:"filename"`
}

// ModelNode is one generated type. Name is the fully-qualified schema name
// (e.g. fullstory.v2.users.UsersRequest) and is never rewritten.
type ModelNode struct {
	Name                 string           `json:"name" yaml:"name" msgpack:"name"`
	ClassName            string           `json:"classname" yaml:"classname" msgpack:"classname"`
	ImportPath           string           `json:"importPath,omitempty" yaml:"importPath,omitempty" msgpack:"importPath,omitempty"`
	FilePath             string           `json:"filePath,omitempty" yaml:"filePath,omitempty" msgpack:"filePath,omitempty"`
	Imports              []string         `json:"imports,omitempty" yaml:"imports,omitempty" msgpack:"imports,omitempty"`
	ResolvedImports      []ResolvedImport `json:"tsImports,omitempty" yaml:"tsImports,omitempty" msgpack:"tsImports,omitempty"`
	Description          string           `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	UnescapedDescription string           `json:"unescapedDescription,omitempty" yaml:"unescapedDescription,omitempty" msgpack:"unescapedDescription,omitempty"`
	VendorExtensions     map[string]any   `json:"vendorExtensions,omitempty" yaml:"vendorExtensions,omitempty" msgpack:"vendorExtensions,omitempty"`
}

// Extensions returns the vendor extensions of the model.
func (m *ModelNode) Extensions() map[string]any { return m.VendorExtensions }

// OverrideDescription replaces the model's documentation text.
func (m *ModelNode) OverrideDescription(raw, escaped string) {
	m.UnescapedDescription = raw
	m.Description = escaped
}

// Parameter is one operation parameter.
type Parameter struct {
	Name                 string         `json:"name" yaml:"name" msgpack:"name"`
	In                   string         `json:"in" yaml:"in" msgpack:"in"` // path|query|header|cookie|body
	Required             bool           `json:"required,omitempty" yaml:"required,omitempty" msgpack:"required,omitempty"`
	DataType             string         `json:"dataType,omitempty" yaml:"dataType,omitempty" msgpack:"dataType,omitempty"`
	Description          string         `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
	UnescapedDescription string         `json:"unescapedDescription,omitempty" yaml:"unescapedDescription,omitempty" msgpack:"unescapedDescription,omitempty"`
	VendorExtensions     map[string]any `json:"vendorExtensions,omitempty" yaml:"vendorExtensions,omitempty" msgpack:"vendorExtensions,omitempty"`
}

func (p *Parameter) Extensions() map[string]any { return p.VendorExtensions }

func (p *Parameter) OverrideDescription(raw, escaped string) {
	p.UnescapedDescription = raw
	p.Description = escaped
}

// OperationNode is one API operation (method + path).
type OperationNode struct {
	OperationID      string           `json:"operationId" yaml:"operationId" msgpack:"operationId"`
	HTTPMethod       HttpMethod       `json:"httpMethod" yaml:"httpMethod" msgpack:"httpMethod"`
	Path             string           `json:"path" yaml:"path" msgpack:"path"`
	Summary          string           `json:"summary,omitempty" yaml:"summary,omitempty" msgpack:"summary,omitempty"`
	Tags             []string         `json:"tags,omitempty" yaml:"tags,omitempty" msgpack:"tags,omitempty"`
	Parameters       []*Parameter     `json:"parameters,omitempty" yaml:"parameters,omitempty" msgpack:"parameters,omitempty"`
	ReturnType       string           `json:"returnType,omitempty" yaml:"returnType,omitempty" msgpack:"returnType,omitempty"`
	Imports          []string         `json:"imports,omitempty" yaml:"imports,omitempty" msgpack:"imports,omitempty"`
	ResolvedImports  []ResolvedImport `json:"tsImports,omitempty" yaml:"tsImports,omitempty" msgpack:"tsImports,omitempty"`
	Notes            string           `json:"notes,omitempty" yaml:"notes,omitempty" msgpack:"notes,omitempty"`
	UnescapedNotes   string           `json:"unescapedNotes,omitempty" yaml:"unescapedNotes,omitempty" msgpack:"unescapedNotes,omitempty"`
	VendorExtensions map[string]any   `json:"vendorExtensions,omitempty" yaml:"vendorExtensions,omitempty" msgpack:"vendorExtensions,omitempty"`
}

func (o *OperationNode) Extensions() map[string]any { return o.VendorExtensions }

// OverrideDescription replaces the operation notes; parameters are handled separately.
func (o *OperationNode) OverrideDescription(raw, escaped string) {
	o.UnescapedNotes = raw
	o.Notes = escaped
}

// ID identifies an operation in diagnostics.
func (o *OperationNode) ID() string {
	if o.OperationID != "" {
		return o.OperationID
	}
	return string(o.HTTPMethod) + " " + o.Path
}
