package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver_TypeName(t *testing.T) {
	t.Parallel()
	r := NewResolver("fullstory.v2")
	safe := "safe"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"namespaced takes last segment", "fullstory.v2.users.UsersRequest", "UsersRequest"},
		{"other namespace is flattened", "fullstory.v1.events.EventRequest", "FullstoryV1EventsEventRequest"},
		{"third party is flattened", "third.party.SomeType", "ThirdPartySomeType"},
		{"reserved primitive is prefixed", "Integer", "safeInteger"},
		{"namespaced primitive is prefixed", "fullstory.v2.users.Integer", "safeInteger"},
		{"reserved keyword is prefixed", "delete", "safeDelete"},
		{"leading digit is prefixed", "123", "safe123"},
		{"two segments under prefix keep full name", "fullstory.v2", "FullstoryV2"},
		{"underscores split words", "google_protobuf_Any", "GoogleProtobufAny"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.TypeName(tt.in, safe))
		})
	}
}

func TestResolver_TypeName_LastSegmentProperty(t *testing.T) {
	t.Parallel()
	r := NewResolver("fullstory.v2")
	for _, name := range []string{
		"fullstory.v2.users.CreateUserRequest",
		"fullstory.v2.events.Event",
		"fullstory.v2.job.JobMetadata",
		"fullstory.v2.a.b.c.Deep",
	} {
		segments := strings.Split(name, ".")
		assert.Equal(t, segments[len(segments)-1], r.TypeName(name, "safe"), name)
	}
}

func TestResolver_FolderSegment(t *testing.T) {
	t.Parallel()
	r := NewResolver("fullstory.v2")

	assert.Equal(t, "users", r.FolderSegment("fullstory.v2.users.UsersRequest"))
	assert.Equal(t, "batchImport", r.FolderSegment("fullstory.v2.batch_import.Job"))
	assert.Equal(t, "apiError", r.FolderSegment("fullstory.v2.ApiError.ErrorResponse"))
	// exactly three segments still counts as "more than two"
	assert.Equal(t, "foo", r.FolderSegment("fullstory.v2.Foo"))
	assert.Empty(t, r.FolderSegment("fullstory.v2"))
	assert.Empty(t, r.FolderSegment("third.party.SomeType"))
	assert.Empty(t, r.FolderSegment("Integer"))
}

func TestResolver_APIFolderSegment(t *testing.T) {
	t.Parallel()
	r := NewResolver("fullstory.v2")

	assert.Equal(t, "users", r.APIFolderSegment("Users"))
	assert.Equal(t, "users", r.APIFolderSegment("Users.BatchImport"))
	assert.Equal(t, "batchImport", r.APIFolderSegment("batch_import"))
	assert.Empty(t, r.APIFolderSegment(""))
}

func TestSanitizeTag(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Users", SanitizeTag("users"))
	assert.Equal(t, "Users.BatchImport", SanitizeTag("users.batchImport"))
	assert.Equal(t, "UsersBatchImport", SanitizeTag("Users Batch Import"))
	assert.Equal(t, DefaultGroupKey, SanitizeTag(""))
	assert.Equal(t, DefaultGroupKey, SanitizeTag(" . "))
}

func TestDefaultFileNamer(t *testing.T) {
	t.Parallel()
	var n DefaultFileNamer
	assert.Equal(t, "UsersRequest", n.ModelFileName("UsersRequest"))
	assert.Equal(t, "UsersApi", n.APIFileName("Users"))
	assert.Equal(t, "UsersBatchImportApi", n.APIFileName("Users.BatchImport"))
	assert.Equal(t, "DefaultApi", n.APIFileName(DefaultGroupKey))
}

func TestLowerCamel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "usersRequest", LowerCamel("UsersRequest"))
	assert.Equal(t, "batchImport", LowerCamel("batch-import"))
	assert.Empty(t, LowerCamel("__"))
}
