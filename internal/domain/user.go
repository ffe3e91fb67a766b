package domain

import "time"

// User is a member record. Deletion is an administrative action outside this
// service; the core only creates users and mutates their credentials/profile.
type User struct {
	ID    string `db:"id"`
	Email string `db:"email"` // unique, stored lowercased

	// PasswordHash is a PHC Argon2id string. Nil means the account cannot
	// log in with a password (e.g. created by an admin import and never
	// reset).
	PasswordHash *string `db:"password_hash"`

	WorldlyName   string `db:"worldly_name"`
	SpiritualName string `db:"spiritual_name"`
	PreferredName string `db:"preferred_name"`
	DisplayName   string `db:"display_name"`

	MFASecret  *string    `db:"mfa_secret"`
	MFAEnabled *time.Time `db:"mfa_enabled"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasMFA reports whether the user has completed TOTP activation.
func (u User) HasMFA() bool {
	return u.MFAEnabled != nil && u.MFASecret != nil && *u.MFASecret != ""
}

// ProfileNames bundles the three name fields supplied at registration or
// invitation completion.
type ProfileNames struct {
	WorldlyName   string
	SpiritualName string
	PreferredName string
}

// DeriveDisplayName resolves the display name by fixed precedence:
// preferred name, then spiritual name, then worldly name; first non-empty
// wins. fallback covers the case where all three are empty.
func DeriveDisplayName(n ProfileNames, fallback string) string {
	switch {
	case n.PreferredName != "":
		return n.PreferredName
	case n.SpiritualName != "":
		return n.SpiritualName
	case n.WorldlyName != "":
		return n.WorldlyName
	default:
		return fallback
	}
}
