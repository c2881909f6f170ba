package domain

import "time"

// Session is the registry record of one controller session: a panel and the
// map surface it drives. It carries no painted state.
type Session struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// IdleSince reports whether the session has seen no activity for at least timeout.
func (s *Session) IdleSince(now time.Time, timeout time.Duration) bool {
	last := s.LastActive
	if last.IsZero() {
		last = s.CreatedAt
	}
	return now.Sub(last) >= timeout
}
