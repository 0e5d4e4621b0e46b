package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/gym/backend/internal/domain/identity"
	"github.com/gym/backend/internal/domain/shared"
	"github.com/gym/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles login, logout and token checks
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Login verifies email and password and issues an access token.
// Unknown emails and wrong passwords both yield shared.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := identity.NormalizeEmail(input.Email)
	s.logger.Info("Login attempt", zap.String("email", email), zap.String("ip", input.IP))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("User not found during login", zap.String("email", email))
			return nil, shared.ErrInvalidCredentials
		}
		s.logger.Error("Failed to load user during login", zap.Error(err))
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("email", email))
		return nil, shared.ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue access token", zap.Error(err))
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in successfully",
		zap.String("email", email),
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return &LoginResult{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		User:        toUserInfo(user),
	}, nil
}

// Authenticate validates an access token and rejects revoked ones
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.jwtService.Validate(accessToken)
	if err != nil {
		return nil, err
	}
	if s.blacklist == nil {
		return claims, nil
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		// a token that cannot be checked is rejected
		s.logger.Error("Failed to check token blacklist", zap.Error(err))
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return nil, auth.ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return auth.ErrInvalidClaims
	}
	if s.blacklist == nil {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke token", zap.Error(err))
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.Info("User logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

// CurrentUser loads the account behind the token
func (s *AuthService) CurrentUser(ctx context.Context, claims *auth.Claims) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}
