// internal/interpreter/schema.go
package interpreter

import "kiosk-dialog/internal/common/validation"

// ResponseSchema describes the parse response fields the dialog relies on.
func ResponseSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"intent": {
				Type: []string{"object", "null"},
				Properties: map[string]validation.Property{
					"name":       {Type: []string{"string", "null"}},
					"confidence": {Type: "number", Minimum: validation.FloatPtr(0), Maximum: validation.FloatPtr(1)},
				},
			},
			"entities": {
				Type: "array",
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"entity"},
					Properties: map[string]validation.Property{
						"entity": {Type: "string", MinLength: validation.IntPtr(1)},
						"start":  {Type: "integer"},
						"end":    {Type: "integer"},
					},
				},
			},
		},
		Required: []string{"intent"},
	}
}
