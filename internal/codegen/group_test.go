package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mark3labs/swagger2ts/internal/spec"
)

func op(method spec.HttpMethod, path string, tags ...string) *spec.OperationNode {
	return &spec.OperationNode{HTTPMethod: method, Path: path, Tags: tags}
}

func groupKeys(groups []*OperationGroup) []string {
	keys := make([]string, 0, len(groups))
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	return keys
}

func TestGrouper_MultiTagDedup(t *testing.T) {
	t.Parallel()
	multi := op(spec.GET, "/v2/users/{id}", "A", "B")
	a := op(spec.GET, "/v2/a", "A")
	b := op(spec.GET, "/v2/b", "B")

	groups := NewGrouper(nil, nil).Group([]*spec.OperationNode{multi, a, b})
	require.Equal(t, []string{"A", "A.B", "B"}, groupKeys(groups))

	count := 0
	for _, g := range groups {
		for _, o := range g.Operations {
			if o == multi {
				count++
			}
		}
	}
	assert.Equal(t, 1, count, "multi-tag operation must appear in exactly one group")
	assert.Equal(t, []*spec.OperationNode{multi}, groups[1].Operations)
}

func TestGrouper_FirstTagWinsRegardlessOfOrder(t *testing.T) {
	t.Parallel()
	groups := NewGrouper(nil, nil).Group([]*spec.OperationNode{op(spec.GET, "/x", "users", "events")})
	require.Len(t, groups, 1)
	assert.Equal(t, "Users.Events", groups[0].Key)

	groups = NewGrouper(nil, nil).Group([]*spec.OperationNode{op(spec.GET, "/x", "events", "users")})
	require.Len(t, groups, 1)
	assert.Equal(t, "Events.Users", groups[0].Key)
}

func TestGrouper_RepeatedFirstTagRegistersOnce(t *testing.T) {
	t.Parallel()
	dup := op(spec.GET, "/v2/users", "Users", "Users")
	groups := NewGrouper(nil, nil).Group([]*spec.OperationNode{dup})
	require.Len(t, groups, 1)
	assert.Equal(t, "Users.Users", groups[0].Key)
	assert.Equal(t, []*spec.OperationNode{dup}, groups[0].Operations)
}

func TestGrouper_NoTagsUsesDefaultAndLogs(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	untagged := op(spec.GET, "/v2/ping")

	groups := NewGrouper(nil, zap.New(core)).Group([]*spec.OperationNode{untagged})
	require.Len(t, groups, 1)
	assert.Equal(t, DefaultGroupKey, groups[0].Key)
	assert.Equal(t, 1, logs.FilterMessage("operation has no tags, using default group").Len())
}

func TestGrouper_FilterSkipRules(t *testing.T) {
	t.Parallel()
	rules, err := ParseSkipRules("{DELETE=[/v2/beta]}")
	require.NoError(t, err)

	del := op(spec.DELETE, "/v2/beta/users", "Users")
	get := op(spec.GET, "/v2/beta/users", "Users")
	g := NewGrouper(rules, nil)
	groups := g.Filter(g.Group([]*spec.OperationNode{del, get}))

	require.Len(t, groups, 1)
	assert.Equal(t, []*spec.OperationNode{get}, groups[0].Operations)
}

func TestGrouper_FilterAdjacentMatches(t *testing.T) {
	t.Parallel()
	rules := []SkipRule{{Method: WildcardMethod, Prefixes: []string{"/v2/beta"}}}
	ops := []*spec.OperationNode{
		op(spec.GET, "/v2/beta/a", "Users"),
		op(spec.POST, "/v2/beta/b", "Users"),
		op(spec.PUT, "/v2/beta/c", "Users"),
		op(spec.GET, "/v2/users", "Users"),
		op(spec.DELETE, "/v2/beta/d", "Users"),
	}
	g := NewGrouper(rules, nil)
	groups := g.Filter(g.Group(ops))

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Operations, 1)
	assert.Equal(t, "/v2/users", groups[0].Operations[0].Path)
}

func TestGrouper_FilterDropsEmptyGroups(t *testing.T) {
	t.Parallel()
	rules := []SkipRule{{Method: "get", Prefixes: []string{"/v2/beta"}}}
	g := NewGrouper(rules, nil)
	groups := g.Filter(g.Group([]*spec.OperationNode{
		op(spec.GET, "/v2/beta/x", "Beta"),
		op(spec.GET, "/v2/users", "Users"),
	}))
	assert.Equal(t, []string{"Users"}, groupKeys(groups))
}
