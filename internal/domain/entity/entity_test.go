package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRole(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("merchant").IsValid())

	assert.Equal(t, RoleAdmin, RoleFromString("admin"))
	assert.Equal(t, RoleUser, RoleFromString("root"))
	assert.Equal(t, "admin", RoleAdmin.String())
}

func TestUser_CanIssueTokens(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{name: "usable account", user: User{ID: uuid.New(), PasswordHash: "h"}, want: true},
		{name: "missing id", user: User{PasswordHash: "h"}, want: false},
		{name: "missing hash", user: User{ID: uuid.New()}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.CanIssueTokens())
		})
	}
}

func TestUser_HasExternalIdentity(t *testing.T) {
	u := &User{}
	assert.False(t, u.HasExternalIdentity())

	u.ExternalID = "g-1"
	assert.True(t, u.HasExternalIdentity())
}
