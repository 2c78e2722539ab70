// internal/dialog/memory.go
package dialog

import "kiosk-dialog/internal/models"

// Memory is the last dispatched turn of one conversation.
// The zero value is an empty session.
type Memory struct {
	Last *models.Turn `json:"last,omitempty"`
}

// Remember returns memory holding a copy of turn.
func Remember(turn models.Turn) Memory {
	t := turn
	t.Entities = append([]models.Entity(nil), turn.Entities...)
	return Memory{Last: &t}
}

// IsEmpty reports whether no turn has been dispatched yet.
func (m Memory) IsEmpty() bool {
	return m.Last == nil
}
