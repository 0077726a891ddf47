package spec

import (
	"strings"

	"gopkg.in/yaml.v3"
)

var v2OperationKeys = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true,
	"patch": true, "options": true, "head": true,
}

// fixupSwagger2 rewrites Swagger 2.0 operations that openapi2conv refuses to
// convert. grpc-gateway emits one body parameter per operation, but
// hand-edited documents sometimes carry several, or mix body and formData:
//
//   - several body parameters are merged into one object-typed "body"
//     parameter with a property per original parameter;
//   - body parameters next to formData ones become formData themselves and
//     the operation consumes multipart/form-data.
//
// The original bytes are returned unchanged when nothing needed fixing.
func fixupSwagger2(data []byte) ([]byte, bool, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, false, err
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok || len(paths) == 0 {
		return data, false, nil
	}

	modified := false
	for _, item := range paths {
		methods, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for method, raw := range methods {
			if !v2OperationKeys[strings.ToLower(method)] {
				continue
			}
			if op, ok := raw.(map[string]any); ok && fixupOperation(op) {
				modified = true
			}
		}
	}
	if !modified {
		return data, false, nil
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

func fixupOperation(op map[string]any) bool {
	params, ok := op["parameters"].([]any)
	if !ok || len(params) == 0 {
		return false
	}
	bodies, hasFormData := 0, false
	for _, p := range params {
		switch paramIn(p) {
		case "body":
			bodies++
		case "formdata":
			hasFormData = true
		}
	}
	switch {
	case bodies == 0:
		return false
	case hasFormData:
		out := make([]any, 0, len(params))
		for _, p := range params {
			if paramIn(p) == "body" {
				out = append(out, bodyToFormData(p.(map[string]any)))
				continue
			}
			out = append(out, p)
		}
		op["parameters"] = out
		consumes, _ := op["consumes"].([]any)
		if !containsString(consumes, "multipart/form-data") {
			op["consumes"] = append(consumes, "multipart/form-data")
		}
		return true
	case bodies > 1:
		props := map[string]any{}
		var required []any
		rest := make([]any, 0, len(params))
		for _, p := range params {
			if paramIn(p) != "body" {
				rest = append(rest, p)
				continue
			}
			pm := p.(map[string]any)
			name := stringOr(pm["name"], "field")
			schema := schemaOfParam(pm)
			if schema == nil {
				schema = map[string]any{"type": "string"}
			}
			props[name] = schema
			if req, _ := pm["required"].(bool); req {
				required = append(required, name)
			}
		}
		body := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			body["required"] = required
		}
		merged := map[string]any{"in": "body", "name": "body", "schema": body}
		op["parameters"] = append([]any{merged}, rest...)
		return true
	}
	return false
}

func paramIn(p any) string {
	pm, _ := p.(map[string]any)
	if pm == nil {
		return ""
	}
	return strings.ToLower(stringOr(pm["in"], ""))
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

// schemaOfParam returns the parameter's schema, synthesizing one from the
// inline type/items/format fields when needed.
func schemaOfParam(pm map[string]any) map[string]any {
	if sch, ok := pm["schema"].(map[string]any); ok {
		return sch
	}
	t := stringOr(pm["type"], "")
	if t == "" {
		return nil
	}
	m := map[string]any{"type": t}
	if it, ok := pm["items"].(map[string]any); ok {
		m["items"] = it
	}
	if f := stringOr(pm["format"], ""); f != "" {
		m["format"] = f
	}
	return m
}

func bodyToFormData(pm map[string]any) map[string]any {
	out := map[string]any{
		"in":   "formData",
		"name": stringOr(pm["name"], "field"),
	}
	if desc := stringOr(pm["description"], ""); desc != "" {
		out["description"] = desc
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	typ := "string"
	if sch := schemaOfParam(pm); sch != nil {
		// a referenced message cannot travel as a form field
		if t := stringOr(sch["type"], ""); t != "" {
			typ = t
		}
		if it, ok := sch["items"].(map[string]any); ok {
			out["items"] = it
		}
		if f := stringOr(sch["format"], ""); f != "" {
			out["format"] = f
		}
	}
	out["type"] = typ
	return out
}
