package domain

import "time"

// Mentorship pairs a mentor with a mentee. A mentee has at most one open
// (EndedAt == nil) pairing at a time.
type Mentorship struct {
	ID        string     `db:"id"`
	MentorID  string     `db:"mentor_id"`
	MenteeID  string     `db:"mentee_id"`
	StartedAt time.Time  `db:"started_at"`
	EndedAt   *time.Time `db:"ended_at"`
}

// Open reports whether the pairing is still running.
func (m Mentorship) Open() bool { return m.EndedAt == nil }
