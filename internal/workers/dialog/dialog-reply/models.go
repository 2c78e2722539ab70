// internal/workers/dialog/dialog-reply/models.go
package dialogreply

import "kiosk-dialog/internal/models"

// Input carries either raw text or an already interpreted intent.
type Input struct {
	SessionID string          `json:"sessionId"`
	Text      string          `json:"text,omitempty"`
	Intent    *models.Intent  `json:"intent,omitempty"`
	Entities  []models.Entity `json:"entities,omitempty"`
}

type Output struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
	Rule      string `json:"rule"`
	Status    string `json:"status"`
	Repeated  bool   `json:"repeated"`
	ErrorCode string `json:"errorCode,omitempty"`
}
