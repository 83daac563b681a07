// Package identity persists externally authenticated accounts. Each
// record is keyed by the pair (provider, subject id) assigned by the
// remote identity provider; at most one record exists per external
// account.
package identity

import "time"

// Identity is the local representation of one externally authenticated
// account. Profile fields (username, email, avatar) are captured at
// first login; repeat logins only bump LastLoginAt.
type Identity struct {
	ID          int64
	Provider    string
	SubjectID   string
	Username    string
	Email       *string
	AvatarURL   *string
	CreatedAt   time.Time
	LastLoginAt time.Time
}

// NewIdentity carries the fields needed to create a record on first login.
type NewIdentity struct {
	Provider  string
	SubjectID string
	Username  string
	Email     *string
	AvatarURL *string
}
