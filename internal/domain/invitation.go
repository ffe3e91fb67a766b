package domain

import "time"

// InvitationTTL is how long a magic link stays redeemable.
const InvitationTTL = 7 * 24 * time.Hour

// Invitation is a single-use, time-limited magic link. The token is the sole
// lookup key and is stored verbatim: re-inviting the same address must hand
// back the original link, which a fingerprint scheme could not do.
type Invitation struct {
	Token     string     `db:"token"`
	Email     string     `db:"email"`
	CreatedBy string     `db:"created_by"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"` // set exactly once, never cleared
	CreatedAt time.Time  `db:"created_at"`
}

// Used reports whether the invitation reached its terminal redeemed state.
func (i Invitation) Used() bool { return i.UsedAt != nil }

// Expired reports whether the invitation lapsed without being redeemed.
// Expiry is evaluated lazily on read; there is no background sweep.
func (i Invitation) Expired(now time.Time) bool { return now.After(i.ExpiresAt) }

// Active means redeemable right now: neither used nor expired.
func (i Invitation) Active(now time.Time) bool { return !i.Used() && !i.Expired(now) }
