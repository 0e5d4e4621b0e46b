package identity

import (
	"errors"
	"strings"
	"testing"

	"github.com/gym/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("  Jan Kowalski ", " Admin@Gym.Local ", "password123", RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, "Jan Kowalski", user.Name)
	assert.Equal(t, "admin@gym.local", user.Email)
	assert.Equal(t, RoleAdmin, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, user.VerifyPassword("password123"))
	assert.False(t, user.VerifyPassword("password124"))
	assert.False(t, user.CreatedAt.IsZero())
}

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		role     Role
		code     string
	}{
		{"empty name", " ", "a@gym.pl", "password123", RoleClient, "INVALID_NAME"},
		{"bad email", "Anna", "not-an-email", "password123", RoleClient, "INVALID_EMAIL"},
		{"empty email", "Anna", "", "password123", RoleClient, "INVALID_EMAIL"},
		{"short password", "Anna", "a@gym.pl", "short", RoleClient, "INVALID_PASSWORD"},
		{"long password", "Anna", "a@gym.pl", strings.Repeat("x", 73), RoleClient, "INVALID_PASSWORD"},
		{"unknown role", "Anna", "a@gym.pl", "password123", Role("owner"), "INVALID_ROLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.userName, tt.email, tt.password, tt.role)
			var derr *shared.DomainError
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, tt.code, derr.Code)
		})
	}
}

func TestRole(t *testing.T) {
	assert.True(t, RoleAdmin.CanGenerateReports())
	assert.True(t, RoleEmployee.CanGenerateReports())
	assert.False(t, RoleTrainer.CanGenerateReports())
	assert.False(t, RoleClient.CanGenerateReports())
	assert.False(t, Role("").IsValid())
}

func TestDomainError_Is(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), shared.NewDomainError("NOT_FOUND", "user missing"))
	assert.ErrorIs(t, wrapped, shared.ErrNotFound)
	assert.NotErrorIs(t, wrapped, shared.ErrForbidden)
}
