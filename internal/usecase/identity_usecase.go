package usecase

import (
	"context"

	"authsvc/internal/domain/entity"
)

// IdentityUsecase reconciles external identity-provider logins with local users.
type IdentityUsecase interface {
	// LinkOrCreate finds the user for profile (external id first, then email), creating or linking as needed.
	// Persistence failures yield ErrIdentityLinkFailed and the caller must not issue tokens.
	LinkOrCreate(ctx context.Context, profile *entity.ExternalProfile) (*entity.User, error)

	// AuthorizationURL starts the authorization-code flow with a fresh single-use state.
	AuthorizationURL(ctx context.Context) (string, error)

	// HandleCallback completes the flow: consumes state, exchanges code, links and issues tokens.
	HandleCallback(ctx context.Context, code, state string) (*LoginOutput, error)

	// HandleIDToken logs in a native client presenting a provider ID token.
	HandleIDToken(ctx context.Context, idToken string) (*LoginOutput, error)
}
