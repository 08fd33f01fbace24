package entity

import "time"

// TokenPair is the access and refresh token issued together at login or refresh.
// It is never persisted: validity is defined by signature and embedded expiry.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
