package codegen

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultGroupKey is the group of operations that carry no tags.
const DefaultGroupKey = "default"

// tsReservedWords cannot be used as TypeScript class names. Matched
// case-insensitively since class names are PascalCase.
var tsReservedWords = map[string]bool{
	"abstract": true, "await": true, "boolean": true, "break": true, "byte": true,
	"case": true, "catch": true, "char": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"double": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "final": true, "finally": true, "float": true, "for": true,
	"formparams": true, "function": true, "goto": true, "headerparams": true, "if": true,
	"implements": true, "import": true, "in": true, "instanceof": true, "int": true,
	"interface": true, "let": true, "long": true, "native": true, "new": true,
	"null": true, "package": true, "private": true, "protected": true, "public": true,
	"queryparameters": true, "requestoptions": true, "return": true, "short": true,
	"static": true, "super": true, "switch": true, "synchronized": true, "this": true,
	"throw": true, "transient": true, "true": true, "try": true, "typeof": true,
	"useformdata": true, "var": true, "varlocaldeferred": true, "varlocalpath": true,
	"void": true, "volatile": true, "while": true, "with": true, "yield": true,
}

// tsPrimitives shadow built-in TypeScript types. Matched exactly.
var tsPrimitives = map[string]bool{
	"string": true, "String": true, "boolean": true, "Boolean": true, "Double": true,
	"Integer": true, "Long": true, "Float": true, "Object": true, "Array": true,
	"ReadonlyArray": true, "Date": true, "number": true, "any": true, "File": true,
	"Error": true, "Map": true, "object": true, "Set": true,
}

// Resolver derives class names and folder segments from qualified schema
// and tag names. All methods are pure.
type Resolver struct {
	prefix string
}

// NewResolver returns a Resolver for the given namespace prefix (e.g. "fullstory.v2").
func NewResolver(namespacePrefix string) *Resolver {
	return &Resolver{prefix: namespacePrefix}
}

// namespaced splits name into dot segments when it lives under the
// namespace prefix and has more than two segments.
func (r *Resolver) namespaced(name string) ([]string, bool) {
	if r.prefix == "" || !strings.HasPrefix(name, r.prefix) {
		return nil, false
	}
	segments := strings.Split(name, ".")
	if len(segments) <= 2 {
		return nil, false
	}
	return segments, true
}

// TypeName returns the class name for a qualified schema name.
//
//	fullstory.v2.users.UsersRequest  -> UsersRequest
//	fullstory.v1.events.EventRequest -> FullstoryV1EventsEventRequest
//	Integer                          -> <safePrefix>Integer
func (r *Resolver) TypeName(qualified, safePrefix string) string {
	name := qualified
	if segments, ok := r.namespaced(qualified); ok {
		name = segments[len(segments)-1]
	}
	full := Flatten(name)
	if full == "" {
		return safePrefix
	}
	if tsReservedWords[strings.ToLower(full)] || tsPrimitives[full] || unicode.IsDigit([]rune(full)[0]) {
		full = safePrefix + full
	}
	return full
}

// FolderSegment returns the sub-resource folder of a qualified schema name
// (the third segment, lower camel case), or "" when the model belongs at the
// package root.
func (r *Resolver) FolderSegment(qualified string) string {
	segments, ok := r.namespaced(qualified)
	if !ok {
		return ""
	}
	return LowerCamel(segments[2])
}

// APIFolderSegment returns the folder of an operation group: the first dot
// segment of the tag, lower camel case.
func (r *Resolver) APIFolderSegment(tag string) string {
	first, _, _ := strings.Cut(tag, ".")
	return LowerCamel(first)
}

// SanitizeTag flattens every dot segment of a tag and rejoins them with ".".
// An empty tag maps to DefaultGroupKey.
func SanitizeTag(tag string) string {
	var parts []string
	for _, seg := range strings.Split(tag, ".") {
		if flat := Flatten(seg); flat != "" {
			parts = append(parts, flat)
		}
	}
	if len(parts) == 0 {
		return DefaultGroupKey
	}
	return strings.Join(parts, ".")
}

// Flatten splits s on every non-alphanumeric rune, title-cases each part
// and concatenates the parts: "third.party.SomeType" -> "ThirdPartySomeType".
// The remainder of each part keeps its case.
func Flatten(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(parts) == 0 {
		return ""
	}
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(caser.String(p))
	}
	return b.String()
}

// LowerCamel flattens s and lower-cases its first letter.
func LowerCamel(s string) string {
	flat := Flatten(s)
	if flat == "" {
		return ""
	}
	runes := []rune(flat)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// FileNamer is the renderer's file naming convention. Implementations return
// base names without directory or suffix.
type FileNamer interface {
	ModelFileName(className string) string
	APIFileName(groupKey string) string
}

// DefaultFileNamer names model files after their class and operation-group
// files after the flattened group key plus "Api".
type DefaultFileNamer struct{}

func (DefaultFileNamer) ModelFileName(className string) string { return className }

func (DefaultFileNamer) APIFileName(groupKey string) string { return Flatten(groupKey) + "Api" }
