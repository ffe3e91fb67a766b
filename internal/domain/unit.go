package domain

import "time"

// Unit is a local community group (a chapter, a sitting group). Members join
// and leave freely; the leader is the member who created it.
type Unit struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"` // unique
	Description string    `db:"description"`
	LeaderID    string    `db:"leader_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// UnitMember links a user to a unit.
type UnitMember struct {
	UnitID   string    `db:"unit_id"`
	UserID   string    `db:"user_id"`
	JoinedAt time.Time `db:"joined_at"`
}
