package handler

import (
	"time"

	"authsvc/internal/domain/entity"

	"github.com/google/uuid"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type idTokenRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type updateProfileRequest struct {
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Linked    bool      `json:"externalLinked"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

type tokenResponse struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

type loginResponse struct {
	User   *userResponse  `json:"user"`
	Tokens *tokenResponse `json:"tokens"`
}

func toUserResponse(user *entity.User) *userResponse {
	if user == nil {
		return nil
	}

	out := &userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role.String(),
		Linked:    user.HasExternalIdentity(),
		CreatedAt: user.CreatedAt,
	}
	if user.Profile != nil {
		out.FirstName = user.Profile.FirstName
		out.LastName = user.Profile.LastName
	}

	return out
}

func toTokenResponse(pair *entity.TokenPair) *tokenResponse {
	return &tokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}
