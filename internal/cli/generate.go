package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2ts/internal/codegen"
	"github.com/mark3labs/swagger2ts/internal/emitter/manifest"
	genspec "github.com/mark3labs/swagger2ts/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input                  string
	Out                    string
	NamespacePrefix        string
	SourceRoot             string
	ModelPackage           string
	APIPackage             string
	FileSuffix             string
	SafePrefix             string
	ResourceName           string
	DescriptionOverrideKey string
	SkipRules              []codegen.SkipRule
	IncludeTags            []string
	ExcludeTags            []string
	Format                 string
	LogFile                string
	ConfigPath             string
	DryRun                 bool
	Force                  bool
	Verbose                bool

	// stdout receives the dry-run plan and the summary line.
	stdout io.Writer
}

func defaultGenerateConfig() GenerateConfig {
	d := codegen.DefaultConfig()
	return GenerateConfig{
		NamespacePrefix:        d.NamespacePrefix,
		SourceRoot:             d.SourceRoot,
		ModelPackage:           d.ModelPackage,
		APIPackage:             d.APIPackage,
		FileSuffix:             d.FileSuffix,
		SafePrefix:             d.SafePrefix,
		DescriptionOverrideKey: d.DescriptionOverrideKey,
		Format:                 string(manifest.FormatJSON),
	}
}

// codegenConfig converts the merged CLI settings into the pipeline configuration.
func (c *GenerateConfig) codegenConfig() codegen.Config {
	return codegen.Config{
		NamespacePrefix:        c.NamespacePrefix,
		SourceRoot:             c.SourceRoot,
		ModelPackage:           c.ModelPackage,
		APIPackage:             c.APIPackage,
		FileSuffix:             c.FileSuffix,
		SafePrefix:             c.SafePrefix,
		ResourceName:           c.ResourceName,
		DescriptionOverrideKey: c.DescriptionOverrideKey,
		SkipRules:              c.SkipRules,
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Plan a TypeScript client from an OpenAPI/Swagger document",
		Long: "Resolve class names, file locations, imports and operation groups for a TypeScript client " +
			"and write them as a manifest for the template renderer. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2ts generate --input fullstory.swagger.json --out ./client
  swagger2ts generate --input users.yaml --resource-name users --skip-operations '{DELETE=[/v2/beta]}'
  swagger2ts --config swagger2ts.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			cfg.stdout = cmd.OutOrStdout()
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Output directory (derived from spec title when omitted)")
	flags.String("namespace-prefix", "", "Schema namespace shortened to its last segment (default fullstory.v2)")
	flags.String("source-root", "", "Source root of the generated client (default src)")
	flags.String("model-package", "", "Dotted package holding model files (default model)")
	flags.String("api-package", "", "Dotted package holding operation files (default api)")
	flags.String("file-suffix", "", "Generated file suffix (default .ts)")
	flags.String("safe-prefix", "", "Prefix for class names that collide with reserved words (default model)")
	flags.String("resource-name", "", "Prefix for index file names, e.g. users -> users.index.ts")
	flags.String("description-override-key", "", "Vendor extension carrying documentation overrides")
	flags.String("skip-operations", "", "Operations to skip, e.g. '{POST=[/v2/beta],*=[/internal]}'")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.String("format", "", "Manifest format (json|yaml|msgpack); defaults to json")
	flags.Bool("dry-run", false, "Print the planned files without writing the manifest")
	flags.Bool("force", false, "Write into a non-empty output directory")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// stringFlags maps string flags to the config field they override.
func stringFlags(cfg *GenerateConfig) map[string]*string {
	return map[string]*string{
		"input":                    &cfg.Input,
		"out":                      &cfg.Out,
		"namespace-prefix":         &cfg.NamespacePrefix,
		"source-root":              &cfg.SourceRoot,
		"model-package":            &cfg.ModelPackage,
		"api-package":              &cfg.APIPackage,
		"file-suffix":              &cfg.FileSuffix,
		"safe-prefix":              &cfg.SafePrefix,
		"resource-name":            &cfg.ResourceName,
		"description-override-key": &cfg.DescriptionOverrideKey,
		"format":                   &cfg.Format,
		"log-file":                 &cfg.LogFile,
	}
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	for name, target := range stringFlags(cfg) {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*target = strings.TrimSpace(value)
	}
	if flags.Changed("skip-operations") {
		value, err := flags.GetString("skip-operations")
		if err != nil {
			return err
		}
		rules, err := codegen.ParseSkipRules(value)
		if err != nil {
			return wrapUsage(err, "generate: --skip-operations: %v", err)
		}
		cfg.SkipRules = rules
	}
	if flags.Changed("include-tags") {
		value, err := flags.GetStringSlice("include-tags")
		if err != nil {
			return err
		}
		cfg.IncludeTags = sanitizeTags(value)
	}
	if flags.Changed("exclude-tags") {
		value, err := flags.GetStringSlice("exclude-tags")
		if err != nil {
			return err
		}
		cfg.ExcludeTags = sanitizeTags(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	for _, field := range stringFlags(c) {
		*field = strings.TrimSpace(*field)
	}
	c.Format = strings.ToLower(c.Format)
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}

	format, err := manifest.ParseFormat(c.Format)
	if err != nil {
		return wrapUsage(err, "generate: %v", err)
	}
	c.Format = string(format)

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	if err := c.codegenConfig().Validate(); err != nil {
		return wrapUsage(err, "generate: %v", err)
	}

	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	stdout := cfg.stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	logger, flush, err := newLogger(os.Stderr, cfg.Verbose, cfg.LogFile)
	if err != nil {
		return wrapUsage(err, "generate: log file %q: %v", cfg.LogFile, err)
	}
	defer flush()

	// 1) Load the document (file or http/https URL) with validation and conversion
	doc, err := genspec.Load(ctx, cfg.Input)
	if err != nil {
		return wrapSpecError(err)
	}

	// 2) Set up the pipeline; it owns the naming rules the IR builder needs
	pipeline, err := codegen.New(cfg.codegenConfig(), codegen.WithLogger(logger))
	if err != nil {
		return wrapUsage(err, "generate: %v", err)
	}

	ir, err := genspec.BuildIR(
		ctx,
		doc,
		genspec.WithTypeNamer(pipeline.TypeName),
		genspec.WithIncludeTags(cfg.IncludeTags),
		genspec.WithExcludeTags(cfg.ExcludeTags),
	)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	logger.Debug("document loaded",
		zap.String("input", cfg.Input),
		zap.Int("schemas", len(ir.Models)),
		zap.Int("operations", len(ir.Operations)))

	// 3) Annotate
	res, err := pipeline.Run(ctx, ir)
	if err != nil {
		var ie *codegen.ImportError
		if errors.As(err, &ie) {
			return wrapUsage(err, "generate: %v\nHint: check that every referenced schema is defined in the document.", err)
		}
		return err
	}

	// 4) Hand off to the renderer
	outDir := cfg.Out
	if outDir == "" {
		outDir = deriveOutDir(ir.Title)
	}
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	emitted, err := manifest.Emit(ctx, manifest.NewDocument(ir, pipeline.Config(), res), manifest.Options{
		OutDir:  outDir,
		Format:  manifest.Format(cfg.Format),
		Force:   cfg.Force,
		DryRun:  cfg.DryRun,
		Out:     stdout,
		Verbose: cfg.Verbose,
		Logger:  logger,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		fmt.Fprintf(stdout, "Planned %d files under %s (manifest %s not written)\n", len(emitted.Planned), absOut, emitted.Manifest)
		return nil
	}
	fmt.Fprintf(stdout, "Wrote %s (%d planned files)\n", filepath.Join(absOut, emitted.Manifest), len(emitted.Planned))
	return nil
}

func wrapSpecError(err error) error {
	var se *genspec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("spec: %s", se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return wrapUsage(err, "%s", msg)
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return wrapUsage(err, "output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg)
	}
	return err
}

func deriveOutDir(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	parts := strings.Fields(repl.Replace(t))
	if len(parts) == 0 {
		return "swagger2ts-out"
	}
	return strings.Join(parts, "-")
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	strs := map[string]*string{
		"input":                  &cfg.Input,
		"out":                    &cfg.Out,
		"namespaceprefix":        &cfg.NamespacePrefix,
		"sourceroot":             &cfg.SourceRoot,
		"modelpackage":           &cfg.ModelPackage,
		"apipackage":             &cfg.APIPackage,
		"filesuffix":             &cfg.FileSuffix,
		"safeprefix":             &cfg.SafePrefix,
		"resourcename":           &cfg.ResourceName,
		"descriptionoverridekey": &cfg.DescriptionOverrideKey,
		"format":                 &cfg.Format,
		"logfile":                &cfg.LogFile,
	}
	bools := map[string]*bool{
		"dryrun":  &cfg.DryRun,
		"force":   &cfg.Force,
		"verbose": &cfg.Verbose,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		if target, ok := strs[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*target = str
			continue
		}
		if target, ok := bools[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*target = val
			continue
		}
		switch normalized {
		case "includetags":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.IncludeTags = sanitizeTags(list)
		case "excludetags":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ExcludeTags = sanitizeTags(list)
		case "skipoperations":
			rules, err := codegen.SkipRulesFromValue(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.SkipRules = rules
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
