package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mark3labs/swagger2ts/internal/spec"
)

const overrideKey = DefaultDescriptionOverrideKey

func TestInjectDescriptions(t *testing.T) {
	t.Parallel()

	model := &spec.ModelNode{
		Name:             "fullstory.v2.users.User",
		Description:      "proto comment",
		VendorExtensions: map[string]any{overrideKey: "A FullStory user."},
	}
	plain := &spec.ModelNode{Name: "fullstory.v2.users.Plain", Description: "keep me"}
	param := &spec.Parameter{
		Name:             "idempotencyKey",
		Description:      "old",
		VendorExtensions: map[string]any{overrideKey: `Optional "idempotency" header`},
	}
	// the operation itself carries no override; its parameter still gets one
	op := &spec.OperationNode{
		HTTPMethod: spec.POST,
		Path:       "/v2/users",
		Notes:      "notes",
		Parameters: []*spec.Parameter{param, {Name: "body"}},
	}
	opWithOverride := &spec.OperationNode{
		HTTPMethod:       spec.GET,
		Path:             "/v2/users/{id}",
		VendorExtensions: map[string]any{overrideKey: "Line one\nline two"},
	}

	n := InjectDescriptions(overrideKey, []*spec.ModelNode{model, plain}, []*spec.OperationNode{op, opWithOverride})
	assert.Equal(t, 3, n)

	assert.Equal(t, "A FullStory user.", model.UnescapedDescription)
	assert.Equal(t, "A FullStory user.", model.Description)
	assert.Equal(t, "keep me", plain.Description)
	assert.Empty(t, plain.UnescapedDescription)

	assert.Equal(t, `Optional "idempotency" header`, param.UnescapedDescription)
	assert.Equal(t, `Optional \"idempotency\" header`, param.Description)
	assert.Equal(t, "notes", op.Notes)

	assert.Equal(t, "Line one\nline two", opWithOverride.UnescapedNotes)
	assert.Equal(t, "Line one line two", opWithOverride.Notes)
}

func TestOverrideDescription_NonStringAndNil(t *testing.T) {
	t.Parallel()

	m := &spec.ModelNode{VendorExtensions: map[string]any{overrideKey: 42}}
	assert.True(t, OverrideDescription(m, overrideKey))
	assert.Equal(t, "42", m.UnescapedDescription)

	nilValue := &spec.ModelNode{Description: "d", VendorExtensions: map[string]any{overrideKey: nil}}
	assert.False(t, OverrideDescription(nilValue, overrideKey))
	assert.Equal(t, "d", nilValue.Description)

	otherKey := &spec.ModelNode{Description: "d", VendorExtensions: map[string]any{"x-other": "no"}}
	assert.False(t, OverrideDescription(otherKey, overrideKey))
}
