package mcpserver

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

// compileSchema builds the JSON Schema for a tool definition. Extra
// argument keys are rejected, not ignored.
func compileSchema(def protocol.ToolDefinition) (*gojsonschema.Schema, error) {
	properties := make(map[string]interface{}, len(def.Parameters))
	required := []string{}

	for _, param := range def.Parameters {
		paramSchema := map[string]interface{}{
			"type":        param.Type,
			"description": param.Description,
		}
		if param.Default != nil {
			paramSchema["default"] = param.Default
		}
		if len(param.Enum) > 0 {
			paramSchema["enum"] = param.Enum
		}
		properties[param.Name] = paramSchema

		if param.Required {
			required = append(required, param.Name)
		}
	}

	schemaMap := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           properties,
	}
	if len(required) > 0 {
		schemaMap["required"] = required
	}

	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
}

// Validate checks arguments against a tool definition and returns the
// normalized argument map: every declared parameter present, defaults
// substituted for absent optional ones. Violations come back as kinded
// errors naming the offending parameter.
func Validate(def protocol.ToolDefinition, args map[string]interface{}) (map[string]interface{}, error) {
	schema, err := compileSchema(def)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema for tool %s: %w", def.Name, err)
	}
	return validateWithSchema(schema, def, args)
}

func validateWithSchema(schema *gojsonschema.Schema, def protocol.ToolDefinition, args map[string]interface{}) (map[string]interface{}, error) {
	if args == nil {
		args = map[string]interface{}{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		return nil, classifyViolations(def, result.Errors())
	}

	normalized := make(map[string]interface{}, len(def.Parameters))
	for k, v := range args {
		normalized[k] = v
	}
	for _, param := range def.Parameters {
		if _, ok := normalized[param.Name]; !ok && param.Default != nil {
			normalized[param.Name] = param.Default
		}
	}

	return normalized, nil
}

// classifyViolations maps schema violations onto the error taxonomy.
// Declared parameters are diagnosed first, in declaration order (type
// mismatches, then missing required values); leftover undeclared keys
// are flagged last.
func classifyViolations(def protocol.ToolDefinition, violations []gojsonschema.ResultError) error {
	mismatched := make(map[string]bool)
	missing := make(map[string]bool)
	var extras []string
	var fallback gojsonschema.ResultError

	for _, v := range violations {
		param := violationParam(v)
		switch v.Type() {
		case "invalid_type":
			mismatched[param] = true
		case "required":
			missing[param] = true
		case "additional_property_not_allowed":
			extras = append(extras, param)
		default:
			if fallback == nil {
				fallback = v
			}
		}
	}

	for _, param := range def.Parameters {
		if mismatched[param.Name] {
			return typeMismatch(param.Name, param.Type)
		}
		if missing[param.Name] {
			return missingParameter(param.Name)
		}
	}
	if len(extras) > 0 {
		return unexpectedParameter(extras[0])
	}
	if fallback != nil {
		return &Error{
			Kind:    protocol.ErrKindTypeMismatch,
			Param:   violationParam(fallback),
			Message: fallback.Description(),
		}
	}

	return typeMismatch(def.Name, "valid arguments")
}

func violationParam(v gojsonschema.ResultError) string {
	if p, ok := v.Details()["property"].(string); ok && p != "" {
		return p
	}
	return v.Field()
}
