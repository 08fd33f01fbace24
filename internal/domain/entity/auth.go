package entity

import (
	"github.com/google/uuid"
)

// ProviderType names an external identity provider.
type ProviderType string

const (
	// ProviderTypeGoogle is Google Sign-In.
	ProviderTypeGoogle ProviderType = "google"
)

// String returns the string representation of the ProviderType.
func (p ProviderType) String() string {
	return string(p)
}

// ExternalIdentity links a subject id issued by an external provider to a local user.
type ExternalIdentity struct {
	ExternalID  string       // The user's unique ID at the provider (e.g., Google's 'sub' claim).
	DisplayName string       // Name reported by the provider at link time.
	UserID      uuid.UUID    // The local user this identity belongs to.
	Provider    ProviderType // The provider that issued ExternalID.
}

// ExternalProfile is what a provider reports about a user after a successful handshake.
type ExternalProfile struct {
	ExternalID    string
	Email         string
	EmailVerified bool
	DisplayName   string
	GivenName     string
	FamilyName    string
}
