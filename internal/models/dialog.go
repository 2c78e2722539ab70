// internal/models/dialog.go
package models

import "strings"

// DefaultIntentName is used when the interpreter returns an intent without a name.
const DefaultIntentName = "default"

// Intent is the classified user goal for one utterance.
type Intent struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Normalized returns the intent with the missing name replaced by DefaultIntentName.
// A missing confidence is already the zero value.
func (i Intent) Normalized() Intent {
	if strings.TrimSpace(i.Name) == "" {
		i.Name = DefaultIntentName
	}
	return i
}

// Key is the lower-cased name used for rule lookup.
func (i Intent) Key() string {
	return strings.ToLower(strings.TrimSpace(i.Name))
}

// Entity is a tagged fragment extracted from the utterance.
type Entity struct {
	Entity     string  `json:"entity"`
	Value      string  `json:"value,omitempty"`
	Start      int     `json:"start,omitempty"`
	End        int     `json:"end,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Extractor  string  `json:"extractor,omitempty"`
}

// Turn is one interpreted utterance.
type Turn struct {
	Text     string   `json:"text,omitempty"`
	Intent   Intent   `json:"intent"`
	Entities []Entity `json:"entities"`
}
