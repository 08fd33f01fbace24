// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"authsvc/internal/domain/entity"

	"github.com/google/uuid"
)

// UserRepository is the credential store contract.
// Absence is signaled by a nil user and a nil error, never by an error.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID. PasswordHash is left empty.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by email, including the password hash.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByExternalIDOrEmail retrieves the user linked to externalID, falling back to
	// the user registered under email. The external id match wins when both exist.
	FindByExternalIDOrEmail(ctx context.Context, externalID, email string) (*entity.User, error)

	// FindWithPasswordHash retrieves a user by ID including the password hash.
	FindWithPasswordHash(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// Create persists a new user and returns its ID.
	// A duplicate email yields ErrUserAlreadyExists.
	Create(ctx context.Context, user *entity.User) (uuid.UUID, error)

	// LinkExternalIdentity attaches an external identity to an existing user.
	// An external id or provider already linked yields ErrIdentityAlreadyLinked.
	LinkExternalIdentity(ctx context.Context, identity *entity.ExternalIdentity) error

	// UpdateProfile replaces the profile fields of a user. An unknown id yields ErrUserNotFound.
	UpdateProfile(ctx context.Context, id uuid.UUID, profile *entity.UserProfile) error

	// UpdatePasswordHash stores a new password hash, which revokes every refresh token issued before.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}
