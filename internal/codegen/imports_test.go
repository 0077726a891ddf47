package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2ts/internal/spec"
)

func namedModels(r *Resolver, names ...string) []*spec.ModelNode {
	out := make([]*spec.ModelNode, 0, len(names))
	for _, n := range names {
		out = append(out, &spec.ModelNode{Name: n, ClassName: r.TypeName(n, DefaultSafePrefix)})
	}
	return out
}

func TestImportGraph_ModelPass(t *testing.T) {
	t.Parallel()
	r := NewResolver(DefaultNamespacePrefix)
	models := namedModels(r,
		"fullstory.v2.users.CreateUserRequest",
		"fullstory.v2.users.UserProperties",
		"third.party.SomeType",
	)
	models[0].Imports = []string{"UserProperties", "ThirdPartySomeType", "UserProperties"}

	g := NewImportGraph(r)
	require.NoError(t, g.AddModels(models))

	assert.Equal(t, "users/CreateUserRequest", models[0].ImportPath)
	assert.Equal(t, "ThirdPartySomeType", models[2].ImportPath)
	assert.Equal(t, []spec.ResolvedImport{
		{ClassName: "ThirdPartySomeType", ImportPath: "ThirdPartySomeType"},
		{ClassName: "UserProperties", ImportPath: "users/UserProperties"},
	}, models[0].ResolvedImports)
	assert.Nil(t, models[1].ResolvedImports)

	p, ok := g.Lookup("UserProperties")
	assert.True(t, ok)
	assert.Equal(t, "users/UserProperties", p)
}

func TestImportGraph_BrokenModelReference(t *testing.T) {
	t.Parallel()
	r := NewResolver(DefaultNamespacePrefix)
	models := namedModels(r, "fullstory.v2.users.User")
	models[0].Imports = []string{"Missing"}

	err := NewImportGraph(r).AddModels(models)
	require.ErrorIs(t, err, ErrBrokenImport)
	var ie *ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "fullstory.v2.users.User", ie.Owner)
	assert.Equal(t, "Missing", ie.ClassName)
	assert.Contains(t, err.Error(), "fullstory.v2.users.User")
}

func TestImportGraph_AmbiguousClassNameFailsOnlyWhenImported(t *testing.T) {
	t.Parallel()
	r := NewResolver(DefaultNamespacePrefix)
	models := namedModels(r, "fullstory.v2.users.JobMetadata", "fullstory.v2.events.JobMetadata")

	g := NewImportGraph(r)
	require.NoError(t, g.AddModels(models))
	assert.Equal(t, "users/JobMetadata", models[0].ImportPath)
	assert.Equal(t, "events/JobMetadata", models[1].ImportPath)
	_, ok := g.Lookup("JobMetadata")
	assert.False(t, ok)

	op := &spec.OperationNode{OperationID: "GetJob", Imports: []string{"JobMetadata"}}
	err := g.ResolveGroup(&OperationGroup{Key: "Jobs", Operations: []*spec.OperationNode{op}})
	require.ErrorIs(t, err, ErrAmbiguousImport)
	assert.NotErrorIs(t, err, ErrBrokenImport)
	assert.Contains(t, err.Error(), "fullstory.v2.users.JobMetadata, fullstory.v2.events.JobMetadata")

	withRef := namedModels(r, "fullstory.v2.users.JobMetadata", "fullstory.v2.events.JobMetadata", "fullstory.v2.jobs.Job")
	withRef[2].Imports = []string{"JobMetadata"}
	err = NewImportGraph(r).AddModels(withRef)
	require.ErrorIs(t, err, ErrAmbiguousImport)
	var ie *ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "fullstory.v2.jobs.Job", ie.Owner)
}

func TestImportGraph_SameImportPathFails(t *testing.T) {
	t.Parallel()
	r := NewResolver(DefaultNamespacePrefix)
	models := []*spec.ModelNode{
		{Name: "fullstory.v2.users.User", ClassName: "User"},
		{Name: "fullstory.v2.users.user", ClassName: "User"},
	}
	err := NewImportGraph(r).AddModels(models)
	require.ErrorIs(t, err, ErrAmbiguousImport)
}

func TestImportGraph_ResolveGroup(t *testing.T) {
	t.Parallel()
	r := NewResolver(DefaultNamespacePrefix)
	models := namedModels(r, "fullstory.v2.users.CreateUserRequest", "fullstory.v2.users.CreateUserResponse")
	g := NewImportGraph(r)
	require.NoError(t, g.AddModels(models))

	create := &spec.OperationNode{
		OperationID: "CreateUser",
		HTTPMethod:  spec.POST,
		Path:        "/v2/users",
		ReturnType:  "CreateUserResponse",
		Imports:     []string{"CreateUserRequest", "CreateUserResponse"},
	}
	del := &spec.OperationNode{
		OperationID: "DeleteUser",
		HTTPMethod:  spec.DELETE,
		Path:        "/v2/users/{id}",
		ReturnType:  ObjectPlaceholder,
	}
	grp := &OperationGroup{Key: "Users", Operations: []*spec.OperationNode{create, del}}
	require.NoError(t, g.ResolveGroup(grp))

	assert.Equal(t, map[string]string{
		"CreateUserRequest":  "users/CreateUserRequest",
		"CreateUserResponse": "users/CreateUserResponse",
	}, grp.TSImports)
	assert.Len(t, create.ResolvedImports, 2)
	assert.Equal(t, "CreateUserResponse", create.ReturnType)
	assert.Empty(t, del.ReturnType)
	assert.NotNil(t, grp.TSImports)
}

func TestImportGraph_BrokenOperationReference(t *testing.T) {
	t.Parallel()
	r := NewResolver(DefaultNamespacePrefix)
	g := NewImportGraph(r)
	require.NoError(t, g.AddModels(nil))

	op := &spec.OperationNode{HTTPMethod: spec.GET, Path: "/v2/users", Imports: []string{"ListUsersResponse"}}
	err := g.ResolveGroup(&OperationGroup{Key: "Users", Operations: []*spec.OperationNode{op}})
	require.ErrorIs(t, err, ErrBrokenImport)
	assert.Contains(t, err.Error(), "GET /v2/users")
}
