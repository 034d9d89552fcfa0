package domain

import (
	"time"
)

// RefreshToken is a long-lived credential used to mint new access tokens
// without re-authenticating the user.
type RefreshToken struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ApplicationID string    `json:"application_id"`
	Token         string    `json:"-"`
	Expiration    time.Time `json:"expiration"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Expired reports whether the refresh token has passed its expiration.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.Expiration)
}

// AccessToken is a short-lived per-request credential minted after login.
// RefreshTokenID is nullable: an access token without one cannot be rotated.
type AccessToken struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ApplicationID  string    `json:"application_id"`
	RefreshTokenID *string   `json:"refresh_token_id,omitempty"`
	Token          string    `json:"-"`
	Expiration     time.Time `json:"expiration"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsValid reports whether the token is still usable: it has not passed its
// expiration and its parent application is still active.
func (t *AccessToken) IsValid(app *Application, now time.Time) bool {
	if app == nil || !app.Active {
		return false
	}
	return now.Before(t.Expiration)
}

// TokenPair holds an access and refresh token pair returned from login.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
