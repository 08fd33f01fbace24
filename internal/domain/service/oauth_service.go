package service

import (
	"context"
	"time"

	"authsvc/internal/domain/entity"
)

// OAuthProvider runs the authorization-code handshake with an external identity provider.
type OAuthProvider interface {
	// AuthCodeURL returns the provider consent URL carrying state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for the provider's view of the user.
	Exchange(ctx context.Context, code string) (*entity.ExternalProfile, error)

	// Provider returns the provider type.
	Provider() entity.ProviderType
}

// IDTokenVerifier verifies ID tokens sent directly by native clients
// (like Google Sign-In on mobile) and returns the user they describe.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*entity.ExternalProfile, error)
}

// StateStore keeps OAuth state parameters between the redirect and the callback.
type StateStore interface {
	// Save records state for ttl.
	Save(ctx context.Context, state string, ttl time.Duration) error

	// Consume removes state and reports whether it was present. A state can be consumed once.
	Consume(ctx context.Context, state string) (bool, error)
}
