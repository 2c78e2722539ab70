// internal/models/session.go
package models

import "time"

// Session is the persisted state of one kiosk conversation.
type Session struct {
	ID           string    `json:"id"`
	LastTurn     *Turn     `json:"lastTurn,omitempty"`
	TurnCount    int       `json:"turnCount"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// IsExpired reports whether the session has been idle longer than ttl.
// A non-positive ttl never expires.
func (s *Session) IsExpired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.LastActivity) > ttl
}

// UpdateActivity records a processed turn.
func (s *Session) UpdateActivity(now time.Time) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.LastActivity = now
	s.TurnCount++
}
