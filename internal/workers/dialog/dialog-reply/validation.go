// internal/workers/dialog/dialog-reply/validation.go
package dialogreply

import "kiosk-dialog/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"sessionId"},
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:        "string",
				Description: "Conversation identifier, one per kiosk session",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(128),
			},
			"text": {
				Type:        "string",
				Description: "Raw utterance, interpreted when intent is absent",
				MaxLength:   validation.IntPtr(2000),
			},
			"intent": {
				Type:        "object",
				Description: "Already interpreted intent",
				Required:    []string{"name"},
				Properties: map[string]validation.Property{
					"name":       {Type: "string"},
					"confidence": {Type: "number", Minimum: validation.FloatPtr(0), Maximum: validation.FloatPtr(1)},
				},
			},
			"entities": {
				Type:        "array",
				Description: "Entities of the interpreted intent",
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"entity"},
					Properties: map[string]validation.Property{
						"entity": {Type: "string", MinLength: validation.IntPtr(1)},
						"value":  {Type: []string{"string", "null"}},
					},
				},
			},
		},
	}
}
