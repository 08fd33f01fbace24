package usecase

import (
	"context"

	"authsvc/internal/domain/entity"
	"authsvc/internal/domain/service"

	"github.com/google/uuid"
)

// SessionUsecase verifies access tokens and rotates token pairs.
type SessionUsecase interface {
	// Authenticate returns the claims of a valid access token, or ErrTokenExpired / ErrTokenInvalid.
	Authenticate(ctx context.Context, accessToken string) (*service.Claims, error)

	// Refresh verifies refreshToken against the user's current password hash and issues a new pair.
	// It fails with ErrRefreshTokenInvalid or ErrUserNotFound.
	Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error)

	// Issue loads the user with its password hash and issues a pair.
	Issue(ctx context.Context, userID uuid.UUID) (*entity.TokenPair, error)
}
