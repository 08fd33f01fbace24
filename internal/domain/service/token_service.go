package service

import (
	"time"

	"authsvc/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the typ claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims defines the custom claims for the JWT tokens.
// Role, Username and Email are only set on access tokens.
type Claims struct {
	UserID   uuid.UUID `json:"uid"`
	Role     string    `json:"role,omitempty"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	Type     string    `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies access and refresh tokens.
// Access tokens are signed with the global secret. Refresh tokens are signed with the
// global secret followed by the user's password hash, so changing the password
// invalidates every refresh token issued before.
type TokenService interface {
	// IssueTokenPair signs a new access and refresh token for the user.
	// The user must have an ID and a non-empty password hash.
	IssueTokenPair(user *entity.User) (*entity.TokenPair, error)

	// RotateTokenPair is IssueTokenPair for a refresh. The new pair's iat is strictly
	// later than previous.IssuedAt, even when the refresh lands in the same second.
	RotateTokenPair(user *entity.User, previous *Claims) (*entity.TokenPair, error)

	// VerifyAccessToken returns the claims of a valid access token,
	// ErrTokenExpired when it is well-formed but past expiry, and ErrTokenInvalid otherwise.
	VerifyAccessToken(token string) (*Claims, error)

	// VerifyRefreshToken checks a refresh token against the secret derived from passwordHash.
	// Any failure yields ErrRefreshTokenInvalid.
	VerifyRefreshToken(token, passwordHash string) (*Claims, error)

	// SubjectOf reads the user id from a token without verifying its signature.
	SubjectOf(token string) (uuid.UUID, error)

	// RefreshTokenTTL returns the configured lifetime of refresh tokens.
	RefreshTokenTTL() time.Duration
}
