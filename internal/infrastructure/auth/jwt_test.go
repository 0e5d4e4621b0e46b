package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gym/backend/internal/domain/identity"
	"github.com/gym/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                testSecret,
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "gym-test",
	})
}

func testUser() *identity.User {
	return &identity.User{ID: 7, Name: "Ewa", Email: "ewa@gym.local", Role: identity.RoleEmployee}
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.Issue(testUser())
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 5*time.Second)

	claims, err := svc.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ewa@gym.local", claims.Email)
	assert.Equal(t, identity.RoleEmployee, claims.Role)
	assert.Equal(t, strconv.Itoa(7), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Greater(t, claims.RemainingTTL(), 14*time.Minute)
}

func TestIssue_UniqueTokenIDs(t *testing.T) {
	svc := newTestJWTService()
	a, err := svc.Issue(testUser())
	require.NoError(t, err)
	b, err := svc.Issue(testUser())
	require.NoError(t, err)

	ca, err := svc.Validate(a.AccessToken)
	require.NoError(t, err)
	cb, err := svc.Validate(b.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestValidate_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_NotYetValid(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestValidate_Rejects(t *testing.T) {
	svc := newTestJWTService()
	good, err := svc.Issue(testUser())
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                "another-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Minute,
		Issuer:                "gym-test",
	})
	foreign, err := other.Issue(testUser())
	require.NoError(t, err)

	wrongIssuer := NewJWTService(config.JWTConfig{
		Secret:                testSecret,
		AccessTokenExpiration: time.Minute,
		Issuer:                "someone-else",
	})
	misissued, err := wrongIssuer.Issue(testUser())
	require.NoError(t, err)

	noneSigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, Email: "a@b.pl", Role: identity.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"empty", ""},
		{"tampered", good.AccessToken + "x"},
		{"wrong secret", foreign.AccessToken},
		{"wrong issuer", misissued.AccessToken},
		{"alg none", noneSigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidate_MissingClaims(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Issuer:    "gym-test",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: "ewa@gym.local",
		Role:  identity.Role("owner"),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestClaims_RemainingTTL(t *testing.T) {
	assert.Zero(t, (&Claims{}).RemainingTTL())

	expired := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}
	assert.Zero(t, expired.RemainingTTL())
}
