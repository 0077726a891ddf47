package codegen

import (
	"fmt"

	"github.com/mark3labs/swagger2ts/internal/spec"
)

// Describable is any IR node whose documentation text can be overridden
// through a vendor extension.
type Describable interface {
	Extensions() map[string]any
	OverrideDescription(raw, escaped string)
}

var (
	_ Describable = (*spec.ModelNode)(nil)
	_ Describable = (*spec.OperationNode)(nil)
	_ Describable = (*spec.Parameter)(nil)
)

// OverrideDescription applies the override stored under key to node and
// reports whether it did. Nodes without extensions are left untouched.
func OverrideDescription(node Describable, key string) bool {
	ext := node.Extensions()
	if ext == nil {
		return false
	}
	v, ok := ext[key]
	if !ok || v == nil {
		return false
	}
	raw, ok := v.(string)
	if !ok {
		raw = fmt.Sprint(v)
	}
	node.OverrideDescription(raw, spec.EscapeText(raw))
	return true
}

// InjectDescriptions walks all models, then every operation followed by its
// parameters, and returns how many nodes were rewritten.
func InjectDescriptions(key string, models []*spec.ModelNode, ops []*spec.OperationNode) int {
	n := 0
	for _, m := range models {
		if OverrideDescription(m, key) {
			n++
		}
	}
	for _, op := range ops {
		if OverrideDescription(op, key) {
			n++
		}
		for _, p := range op.Parameters {
			if OverrideDescription(p, key) {
				n++
			}
		}
	}
	return n
}
