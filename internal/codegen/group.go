package codegen

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mark3labs/swagger2ts/internal/spec"
)

// OperationGroup is the set of operations emitted into one file.
type OperationGroup struct {
	Key        string                `json:"key" yaml:"key" msgpack:"key"`
	ClassName  string                `json:"classname" yaml:"classname" msgpack:"classname"`
	FilePath   string                `json:"filePath" yaml:"filePath" msgpack:"filePath"`
	ImportPath string                `json:"importPath" yaml:"importPath" msgpack:"importPath"`
	Operations []*spec.OperationNode `json:"operations" yaml:"operations" msgpack:"operations"`
	TSImports  map[string]string     `json:"tsImports" yaml:"tsImports" msgpack:"tsImports"`
}

// Grouper assigns operations to tag-derived groups and applies skip rules.
type Grouper struct {
	rules  []SkipRule
	logger *zap.Logger
}

// NewGrouper returns a Grouper applying the given skip rules.
func NewGrouper(rules []SkipRule, logger *zap.Logger) *Grouper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Grouper{rules: rules, logger: logger}
}

// Group mirrors how the schema parser hands operations over: once per tag.
// Only the registration made under an operation's first tag is kept, so an
// operation tagged [A, B] lands in exactly one group, keyed "A.B".
// Groups are returned sorted by key; operations keep their input order.
func (g *Grouper) Group(ops []*spec.OperationNode) []*OperationGroup {
	groups := map[string]*OperationGroup{}
	for _, op := range ops {
		if len(op.Tags) == 0 {
			g.register(0, DefaultGroupKey, op, groups)
			continue
		}
		for i, tag := range op.Tags {
			g.register(i, tag, op, groups)
		}
	}

	out := make([]*OperationGroup, 0, len(groups))
	for _, grp := range groups {
		out = append(out, grp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// register is called once per tag with its position; only position 0 is
// kept, so a tag list that repeats its first tag still registers once.
func (g *Grouper) register(pos int, tag string, op *spec.OperationNode, groups map[string]*OperationGroup) {
	key := DefaultGroupKey
	switch {
	case len(op.Tags) == 0:
		g.logger.Debug("operation has no tags, using default group",
			zap.String("operation", op.ID()), zap.String("group", key))
	case pos != 0:
		g.logger.Debug("skipping duplicate registration",
			zap.String("operation", op.ID()), zap.String("tag", tag), zap.String("firstTag", op.Tags[0]))
		return
	default:
		key = joinTags(op.Tags)
	}
	grp, ok := groups[key]
	if !ok {
		grp = &OperationGroup{Key: key}
		groups[key] = grp
	}
	grp.Operations = append(grp.Operations, op)
}

func joinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		clean = append(clean, SanitizeTag(t))
	}
	return strings.Join(clean, ".")
}

// Filter drops every operation matched by a skip rule. Each group's list is
// rebuilt rather than edited in place; groups left empty are removed.
func (g *Grouper) Filter(groups []*OperationGroup) []*OperationGroup {
	if len(g.rules) == 0 {
		return groups
	}
	out := groups[:0:0]
	for _, grp := range groups {
		kept := make([]*spec.OperationNode, 0, len(grp.Operations))
		for _, op := range grp.Operations {
			if g.skip(op) {
				g.logger.Debug("skipping operation",
					zap.String("operation", op.ID()), zap.String("group", grp.Key))
				continue
			}
			kept = append(kept, op)
		}
		grp.Operations = kept
		if len(kept) > 0 {
			out = append(out, grp)
		}
	}
	return out
}

func (g *Grouper) skip(op *spec.OperationNode) bool {
	for _, r := range g.rules {
		if r.Matches(op) {
			return true
		}
	}
	return false
}
