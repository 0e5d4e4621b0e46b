package identity

import (
	"time"

	"github.com/gym/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // client IP, logged only
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
	User        UserInfo  `json:"user"`
}

// UserInfo contains basic user information returned after login
type UserInfo struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  identity.Role `json:"role"`
	// CanGenerateReports tells clients whether to offer report generation
	CanGenerateReports bool `json:"can_generate_reports"`
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Role:               u.Role,
		CanGenerateReports: u.Role.CanGenerateReports(),
	}
}
