package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalSpecYAML = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: Test API\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /v2/users/{id}:\n" +
	"    get:\n" +
	"      tags: [users]\n" +
	"      parameters:\n" +
	"        - name: id\n" +
	"          in: path\n" +
	"          required: true\n" +
	"          schema: { type: string }\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n" +
	"          content:\n" +
	"            application/json:\n" +
	"              schema:\n" +
	"                $ref: '#/components/schemas/fullstory.v2.users.GetUserResponse'\n" +
	"components:\n" +
	"  schemas:\n" +
	"    fullstory.v2.users.GetUserResponse:\n" +
	"      type: object\n" +
	"      properties:\n" +
	"        id: { type: string }\n"

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	specPath := filepath.Join(t.TempDir(), "spec.yaml")
	if err := os.WriteFile(specPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return specPath
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	specPath := writeSpec(t, minimalSpecYAML)
	outDir := filepath.Join(t.TempDir(), "out")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", specPath, "--out", outDir, "--dry-run"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	s := out.String()
	for _, want := range []string{"src/model/users/GetUserResponse.ts", "src/api/users/UsersApi.ts", "Planned 4 files"} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %q in dry-run output, got:\n%s", want, s)
		}
	}
	if _, err := os.Stat(outDir); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_WritesManifest(t *testing.T) {
	specPath := writeSpec(t, minimalSpecYAML)
	outDir := filepath.Join(t.TempDir(), "out")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", specPath, "--out", outDir, "--format", "yaml"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "swagger2ts.manifest.yaml"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(data), "users/GetUserResponse") {
		t.Fatalf("manifest missing import path:\n%s", data)
	}
}

func TestGeneratePipeline_BrokenReference(t *testing.T) {
	// a $ref to an undefined schema
	broken := strings.Replace(minimalSpecYAML, "fullstory.v2.users.GetUserResponse'", "fullstory.v2.users.Missing'", 1)
	specPath := writeSpec(t, broken)

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", specPath, "--out", filepath.Join(t.TempDir(), "out")})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
}
