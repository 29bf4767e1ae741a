package sessions

import "time"

// Session represents a persistent refresh session
type Session struct {
	ID           string    `bson:"_id,omitempty" json:"id,omitempty"`
	RefreshToken string    `bson:"refreshToken" json:"refreshToken"`
	Sub          string    `bson:"sub" json:"sub"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	ExpiresAt    time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
