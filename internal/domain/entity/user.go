// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a unique "person" or "account".
// Email is unique across users and PasswordHash is never empty for a usable account.
type User struct {
	ID           uuid.UUID    // The Global Unique Identifier (GUID) for the user.
	Username     string       // The user's login name. External logins use the email.
	Email        string       // The user's primary contact email, unique per account.
	PasswordHash string       // bcrypt hash. Also the per-user half of the refresh signing secret.
	Role         Role         // Authorization role carried by access tokens.
	IsActive     bool         // Inactive accounts cannot log in.
	ExternalID   string       // Linked external subject id, empty when none is linked.
	Profile      *UserProfile // Optional profile fields. Nil when never set.
	CreatedAt    time.Time    // Timestamp of when this user account was created.
	UpdatedAt    time.Time    // Timestamp of the last modification to this user's data.
}

// UserProfile holds the editable personal fields of a user.
type UserProfile struct {
	FirstName string
	LastName  string
}

// HasExternalIdentity reports whether an external identity is linked to the user.
func (u *User) HasExternalIdentity() bool {
	return u.ExternalID != ""
}

// CanIssueTokens reports whether the account is in a state that can hold a token pair.
func (u *User) CanIssueTokens() bool {
	return u.ID != uuid.Nil && u.PasswordHash != ""
}
