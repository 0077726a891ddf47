package codegen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/spec"
)

const (
	DefaultNamespacePrefix        = "fullstory.v2"
	DefaultSourceRoot             = "src"
	DefaultModelPackage           = "model"
	DefaultAPIPackage             = "api"
	DefaultFileSuffix             = ".ts"
	DefaultSafePrefix             = "model"
	DefaultDescriptionOverrideKey = "x-fullstory-sdk-description-override"

	// WildcardMethod matches every HTTP method in a skip rule.
	WildcardMethod = "*"
)

// Config is the static configuration of one generation run. It is passed by
// value into New and never mutated afterwards.
type Config struct {
	// NamespacePrefix marks schema names that are shortened to their last
	// segment and placed into a sub-resource folder.
	NamespacePrefix string
	// SourceRoot is the directory, relative to the output root, holding both
	// the model and api packages.
	SourceRoot   string
	ModelPackage string // dotted, e.g. "model" or "namespace.model"
	APIPackage   string
	FileSuffix   string
	// SafePrefix is prepended to class names colliding with reserved words.
	SafePrefix string
	// ResourceName, when set, prefixes the index file names ("users.index.ts").
	ResourceName           string
	DescriptionOverrideKey string
	SkipRules              []SkipRule
}

// DefaultConfig returns the configuration used for the FullStory TypeScript client.
func DefaultConfig() Config {
	return Config{
		NamespacePrefix:        DefaultNamespacePrefix,
		SourceRoot:             DefaultSourceRoot,
		ModelPackage:           DefaultModelPackage,
		APIPackage:             DefaultAPIPackage,
		FileSuffix:             DefaultFileSuffix,
		SafePrefix:             DefaultSafePrefix,
		DescriptionOverrideKey: DefaultDescriptionOverrideKey,
	}
}

// ResourceNamePrefix is the string prepended to generated index file names.
func (c Config) ResourceNamePrefix() string {
	if c.ResourceName == "" {
		return ""
	}
	return c.ResourceName + "."
}

var (
	packageRe    = regexp.MustCompile(`^[A-Za-z0-9_\-]+([./][A-Za-z0-9_\-]+)*$`)
	sourceRootRe = regexp.MustCompile(`^([A-Za-z0-9_\-.]+)(/[A-Za-z0-9_\-.]+)*$`)
	suffixRe     = regexp.MustCompile(`^\.[A-Za-z0-9.]+$`)
)

// Validate rejects configurations that would place files outside the source
// root or that cannot be interpreted.
func (c Config) Validate() error {
	if strings.TrimSpace(c.NamespacePrefix) == "" {
		return &ConfigError{Option: "namespacePrefix", Message: "must not be empty"}
	}
	if c.SourceRoot != "" {
		if !sourceRootRe.MatchString(c.SourceRoot) {
			return &ConfigError{Option: "sourceRoot", Value: c.SourceRoot, Message: "must be a relative slash-separated path"}
		}
		for _, seg := range strings.Split(c.SourceRoot, "/") {
			if seg == "." || seg == ".." {
				return &ConfigError{Option: "sourceRoot", Value: c.SourceRoot, Message: "must not contain traversal segments"}
			}
		}
	}
	if !packageRe.MatchString(c.ModelPackage) {
		return &ConfigError{Option: "modelPackage", Value: c.ModelPackage, Message: "must be a dotted package name without traversal characters"}
	}
	if !packageRe.MatchString(c.APIPackage) {
		return &ConfigError{Option: "apiPackage", Value: c.APIPackage, Message: "must be a dotted package name without traversal characters"}
	}
	if !suffixRe.MatchString(c.FileSuffix) {
		return &ConfigError{Option: "fileSuffix", Value: c.FileSuffix, Message: `must start with "."`}
	}
	if c.ResourceName != "" && strings.ContainsAny(c.ResourceName, `/\`) {
		return &ConfigError{Option: "resourceName", Value: c.ResourceName, Message: "must not contain path separators"}
	}
	if strings.TrimSpace(c.DescriptionOverrideKey) == "" {
		return &ConfigError{Option: "descriptionOverrideKey", Message: "must not be empty"}
	}
	for _, r := range c.SkipRules {
		if err := r.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.SkipRules = make([]SkipRule, len(c.SkipRules))
	for i, r := range c.SkipRules {
		out.SkipRules[i] = SkipRule{Method: r.Method, Prefixes: append([]string(nil), r.Prefixes...)}
	}
	return out
}

// SkipRule excludes operations whose method matches Method (or any method
// for "*") and whose path starts with one of Prefixes.
type SkipRule struct {
	Method   string   `json:"method" yaml:"method"`
	Prefixes []string `json:"prefixes" yaml:"prefixes"`
}

var knownMethods = map[string]bool{
	string(spec.GET): true, string(spec.POST): true, string(spec.PUT): true,
	string(spec.DELETE): true, string(spec.PATCH): true, string(spec.HEAD): true,
	string(spec.OPTIONS): true, string(spec.TRACE): true,
}

func (r SkipRule) validate() error {
	if r.Method != WildcardMethod && !knownMethods[strings.ToUpper(r.Method)] {
		return &ConfigError{Option: "skipOperations", Value: r.Method, Message: "unknown HTTP method"}
	}
	for _, p := range r.Prefixes {
		// An empty prefix matches every path.
		if strings.TrimSpace(p) == "" {
			return &ConfigError{Option: "skipOperations", Value: r.Method, Message: "empty path prefix"}
		}
	}
	return nil
}

// Matches reports whether the rule suppresses op.
func (r SkipRule) Matches(op *spec.OperationNode) bool {
	if r.Method != WildcardMethod && !strings.EqualFold(r.Method, string(op.HTTPMethod)) {
		return false
	}
	for _, prefix := range r.Prefixes {
		if strings.HasPrefix(op.Path, prefix) {
			return true
		}
	}
	return false
}

// SkipRulesFromValue interprets a decoded configuration value as a
// method → path prefixes mapping. It accepts a mapping whose values are a
// list of strings or a single string, or the flag form handled by
// ParseSkipRules.
func SkipRulesFromValue(v any) ([]SkipRule, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return ParseSkipRules(val)
	case []SkipRule:
		return normalizeRules(val)
	case map[string]any:
		rules := make([]SkipRule, 0, len(val))
		for method, raw := range val {
			prefixes, err := prefixList(raw)
			if err != nil {
				return nil, &ConfigError{Option: "skipOperations", Value: method, Message: "cannot be interpreted as method→prefixes mapping", Cause: err}
			}
			rules = append(rules, SkipRule{Method: method, Prefixes: prefixes})
		}
		return normalizeRules(rules)
	case map[string][]string:
		rules := make([]SkipRule, 0, len(val))
		for method, raw := range val {
			prefixes, _ := prefixList(raw)
			rules = append(rules, SkipRule{Method: method, Prefixes: prefixes})
		}
		return normalizeRules(rules)
	default:
		return nil, &ConfigError{Option: "skipOperations", Value: fmt.Sprintf("%T", v), Message: "cannot be interpreted as method→prefixes mapping"}
	}
}

// prefixList drops blank entries, the same way ParseSkipRules does.
func prefixList(raw any) ([]string, error) {
	var out []string
	keep := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch p := raw.(type) {
	case nil:
	case string:
		keep(p)
	case []string:
		for _, s := range p {
			keep(s)
		}
	case []any:
		for i, item := range p {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %T", i, item)
			}
			keep(s)
		}
	default:
		return nil, fmt.Errorf("expected string or list, got %T", raw)
	}
	return out, nil
}

// ParseSkipRules parses the command-line form of skip rules:
//
//	{POST=[/path/prefix/to/ignore],*=[/ignore/all/methods]}
//
// The surrounding braces are optional and an entry may omit its brackets when
// it carries a single prefix (GET=/v2/beta).
func ParseSkipRules(s string) ([]SkipRule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "{") {
		if !strings.HasSuffix(s, "}") {
			return nil, &ConfigError{Option: "skipOperations", Value: s, Message: "unbalanced braces"}
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	entries, err := splitTopLevel(s)
	if err != nil {
		return nil, &ConfigError{Option: "skipOperations", Value: s, Message: err.Error()}
	}
	rules := make([]SkipRule, 0, len(entries))
	for _, entry := range entries {
		method, value, ok := strings.Cut(entry, "=")
		method = strings.TrimSpace(method)
		value = strings.TrimSpace(value)
		if !ok || method == "" {
			return nil, &ConfigError{Option: "skipOperations", Value: entry, Message: "expected METHOD=[prefix,...]"}
		}
		var prefixes []string
		if strings.HasPrefix(value, "[") {
			if !strings.HasSuffix(value, "]") {
				return nil, &ConfigError{Option: "skipOperations", Value: entry, Message: "unbalanced brackets"}
			}
			for _, p := range strings.Split(value[1:len(value)-1], ",") {
				if p = strings.TrimSpace(p); p != "" {
					prefixes = append(prefixes, p)
				}
			}
		} else if value != "" {
			prefixes = []string{value}
		}
		rules = append(rules, SkipRule{Method: method, Prefixes: prefixes})
	}
	return normalizeRules(rules)
}

// splitTopLevel splits on commas that are not inside brackets.
func splitTopLevel(s string) ([]string, error) {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets")
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts, nil
}

// normalizeRules upper-cases methods, merges duplicate methods and sorts the
// result so equal configurations compare equal.
func normalizeRules(rules []SkipRule) ([]SkipRule, error) {
	byMethod := make(map[string][]string, len(rules))
	for _, r := range rules {
		m := strings.ToUpper(strings.TrimSpace(r.Method))
		rule := SkipRule{Method: m, Prefixes: r.Prefixes}
		if err := rule.validate(); err != nil {
			return nil, err
		}
		byMethod[m] = append(byMethod[m], r.Prefixes...)
	}
	out := make([]SkipRule, 0, len(byMethod))
	for m, prefixes := range byMethod {
		out = append(out, SkipRule{Method: m, Prefixes: prefixes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out, nil
}
