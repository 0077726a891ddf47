package codegen

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2ts/internal/spec"
)

// sampleIR mimics what the IR builder produces for a small FullStory API.
func sampleIR() *spec.IR {
	return &spec.IR{
		Title:   "FullStory Users API",
		Version: "v2",
		Models: []*spec.ModelNode{
			{
				Name:             "fullstory.v2.users.CreateUserRequest",
				Imports:          []string{"UserProperties"},
				Description:      "proto doc",
				VendorExtensions: map[string]any{DefaultDescriptionOverrideKey: "Creates a user."},
			},
			{Name: "fullstory.v2.users.CreateUserResponse"},
			{Name: "fullstory.v2.users.UserProperties"},
			{Name: "third.party.SomeType"},
		},
		Operations: []*spec.OperationNode{
			{
				OperationID: "CreateUser",
				HTTPMethod:  spec.POST,
				Path:        "/v2/users",
				Tags:        []string{"users"},
				ReturnType:  "CreateUserResponse",
				Imports:     []string{"CreateUserRequest", "CreateUserResponse"},
				Parameters:  []*spec.Parameter{{Name: "body", In: "body", DataType: "CreateUserRequest"}},
			},
			{
				OperationID: "DeleteUser",
				HTTPMethod:  spec.DELETE,
				Path:        "/v2/users/{id}",
				Tags:        []string{"users"},
				ReturnType:  ObjectPlaceholder,
			},
			{
				OperationID: "ImportUsers",
				HTTPMethod:  spec.POST,
				Path:        "/v2/users/batch",
				Tags:        []string{"users", "batch import"},
				ReturnType:  "SomeType",
				Imports:     []string{"ThirdPartySomeType"},
			},
			{
				OperationID: "DeleteBeta",
				HTTPMethod:  spec.DELETE,
				Path:        "/v2/beta/users",
				Tags:        []string{"beta"},
				Imports:     []string{"UserProperties"},
			},
		},
	}
}

func newTestPipeline(t *testing.T, mutate func(*Config)) *Pipeline {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, func(c *Config) {
		c.ResourceName = "users"
		c.SkipRules = []SkipRule{{Method: "DELETE", Prefixes: []string{"/v2/beta"}}}
	})
	ir := sampleIR()

	res, err := p.Run(context.Background(), ir)
	require.NoError(t, err)

	create := res.Models[0]
	assert.Equal(t, "CreateUserRequest", create.ClassName)
	assert.Equal(t, "src/model/users/CreateUserRequest.ts", create.FilePath)
	assert.Equal(t, "users/CreateUserRequest", create.ImportPath)
	assert.Equal(t, "Creates a user.", create.Description)
	assert.Equal(t, []spec.ResolvedImport{{ClassName: "UserProperties", ImportPath: "users/UserProperties"}}, create.ResolvedImports)
	assert.Equal(t, "src/model/ThirdPartySomeType.ts", res.Models[3].FilePath)

	require.Len(t, res.Groups, 2)
	users, batch := res.Groups[0], res.Groups[1]
	assert.Equal(t, "Users", users.Key)
	assert.Equal(t, "UsersApi", users.ClassName)
	assert.Equal(t, "src/api/users/UsersApi.ts", users.FilePath)
	assert.Equal(t, "users", users.ImportPath)
	assert.Len(t, users.Operations, 2)
	assert.Empty(t, users.Operations[1].ReturnType)
	assert.Equal(t, map[string]string{
		"CreateUserRequest":  "users/CreateUserRequest",
		"CreateUserResponse": "users/CreateUserResponse",
	}, users.TSImports)

	assert.Equal(t, "Users.BatchImport", batch.Key)
	assert.Equal(t, "src/api/users/UsersBatchImportApi.ts", batch.FilePath)
	assert.Equal(t, map[string]string{"ThirdPartySomeType": "ThirdPartySomeType"}, batch.TSImports)

	assert.Equal(t, "src/model/users.index.ts", res.ModelIndex.FilePath)
	assert.Len(t, res.ModelIndex.Entries, 4)
	assert.Equal(t, "src/api/users.index.ts", res.APIIndex.FilePath)
	assert.Equal(t, []IndexEntry{
		{Name: "UsersApi", ImportPath: "users/UsersApi"},
		{Name: "UsersBatchImportApi", ImportPath: "users/UsersBatchImportApi"},
	}, res.APIIndex.Entries)
}

func TestPipeline_Idempotent(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, nil)
	ir := sampleIR()

	first, err := p.Run(context.Background(), ir)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := p.Run(context.Background(), ir)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)

	assert.JSONEq(t, string(firstJSON), string(secondJSON))
}

func TestPipeline_SkippedOperationsContributeNoImports(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, func(c *Config) {
		c.SkipRules = []SkipRule{{Method: WildcardMethod, Prefixes: []string{"/v2/users"}}}
	})
	res, err := p.Run(context.Background(), sampleIR())
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "Beta", res.Groups[0].Key)
	assert.Equal(t, map[string]string{"UserProperties": "users/UserProperties"}, res.Groups[0].TSImports)
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.ModelPackage = "../escape"
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrConfig)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "modelPackage", ce.Option)
}

func TestPipeline_BrokenImportAborts(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, nil)
	ir := sampleIR()
	ir.Operations[0].Imports = append(ir.Operations[0].Imports, "NoSuchModel")

	res, err := p.Run(context.Background(), ir)
	require.ErrorIs(t, err, ErrBrokenImport)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "CreateUser")
}

func TestPipeline_ConfigIsCopied(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.SkipRules = []SkipRule{{Method: "GET", Prefixes: []string{"/a"}}}
	p, err := New(cfg)
	require.NoError(t, err)

	cfg.SkipRules[0].Prefixes[0] = "/b"
	assert.Equal(t, "/a", p.Config().SkipRules[0].Prefixes[0])
}

func TestPipeline_Cancelled(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, sampleIR())
	require.ErrorIs(t, err, context.Canceled)
}
