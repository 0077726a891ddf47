package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool

	stdout io.Writer
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2ts configuration file",
		Long:  "Scaffold a commented swagger2ts configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
				stdout:     cmd.OutOrStdout(),
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", "swagger2ts.yaml", "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "swagger2ts.yaml"
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	stdout := cfg.stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	fmt.Fprintf(stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# swagger2ts configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Path or URL to the Swagger/OpenAPI document (http/https or local file).
# input: ./fullstory.swagger.json

# Output directory for the manifest. When omitted, derived from the spec title.
# out: ./client

# Schema names under this namespace are shortened to their last segment and
# placed in a folder named after the third segment:
# fullstory.v2.users.CreateUserRequest -> model/users/CreateUserRequest.ts
# namespacePrefix: fullstory.v2

# Layout of the generated client.
# sourceRoot: src
# modelPackage: model
# apiPackage: api
# fileSuffix: .ts

# Prefix for class names colliding with TypeScript reserved words or builtins.
# safePrefix: model

# Prefix for index files: users -> users.index.ts
# resourceName: users

# Vendor extension whose value replaces model, operation and parameter docs.
# descriptionOverrideKey: x-fullstory-sdk-description-override

# Operations to leave out, by HTTP method ("*" for any) and path prefix.
# The flag form '{DELETE=[/v2/beta],*=[/internal]}' is accepted too.
# skipOperations:
#   DELETE: [/v2/beta]
#   "*": [/internal]

# Only include operations with these tags (comma-separated or list).
# includeTags: [users,events]

# Exclude operations with these tags (comma-separated or list).
# excludeTags: [internal]

# Manifest format: json, yaml or msgpack.
# format: json

# Preview planned files without writing the manifest.
# dryRun: false

# Overwrite a non-empty output directory.
# force: false

# Enable verbose logging; logFile also writes rotated JSON logs.
# verbose: false
# logFile: ./swagger2ts.log
`
