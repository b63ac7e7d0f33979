package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ristomkd/LibraryNetwork/internal/models"
)

func testRSAKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	authService, err := NewAuthService(
		testRSAKeyPEM(t),
		testRSAKeyPEM(t),
		time.Hour,
		24*time.Hour,
		logger,
		nil,
	)
	require.NoError(t, err)
	return authService
}

func TestAuthService_HashPassword(t *testing.T) {
	authService := newTestAuthService(t)

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "minimum length password",
			password: "12345678",
			wantErr:  false,
		},
		{
			name:     "too short password",
			password: "123",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := authService.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, hash)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, hash)
				assert.Contains(t, hash, "$argon2id$")
			}
		})
	}
}

func TestAuthService_VerifyPassword(t *testing.T) {
	authService := newTestAuthService(t)

	password := "password123"
	hash, err := authService.HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
		wantErr  bool
	}{
		{
			name:     "correct password",
			hash:     hash,
			password: password,
			want:     true,
		},
		{
			name:     "incorrect password",
			hash:     hash,
			password: "wrongpassword",
			want:     false,
		},
		{
			name:     "invalid hash format",
			hash:     "invalid-hash",
			password: password,
			want:     false,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.VerifyPassword(tt.hash, tt.password)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	authService := newTestAuthService(t)

	user := &models.User{
		ID:       7,
		Email:    "ana@example.com",
		Role:     models.RoleMember,
		MemberID: int32Ptr(42),
		IsActive: true,
	}

	accessToken, refreshToken, err := authService.GenerateTokens(user)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	claims, err := authService.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, int32(7), claims.UserID)
	assert.Equal(t, models.RoleMember, claims.Role)
	require.NotNil(t, claims.MemberID)
	assert.Equal(t, int32(42), *claims.MemberID)

	caller := claims.AsCaller()
	assert.True(t, caller.IsMember())
	assert.Nil(t, caller.LibraryID)

	refreshClaims, err := authService.ValidateRefreshToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, int32(7), refreshClaims.UserID)
}

func TestAuthService_TokensAreNotInterchangeable(t *testing.T) {
	authService := newTestAuthService(t)

	user := &models.User{ID: 7, Email: "ana@example.com", Role: models.RoleMember}
	accessToken, refreshToken, err := authService.GenerateTokens(user)
	require.NoError(t, err)

	// Separate key pairs: a refresh token must not validate as an access
	// token, nor the other way round.
	_, err = authService.ValidateToken(refreshToken)
	assert.Error(t, err)

	_, err = authService.ValidateRefreshToken(accessToken)
	assert.Error(t, err)
}

func TestAuthService_RejectsForeignKey(t *testing.T) {
	authService := newTestAuthService(t)
	otherService := newTestAuthService(t)

	user := &models.User{ID: 7, Email: "ana@example.com", Role: models.RoleAdmin, LibraryID: int32Ptr(3)}
	accessToken, _, err := otherService.GenerateTokens(user)
	require.NoError(t, err)

	_, err = authService.ValidateToken(accessToken)
	assert.Error(t, err)
}

func TestNewAuthService_InvalidKey(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	_, err := NewAuthService("not a pem key", "also not a key", time.Hour, time.Hour, logger, nil)
	assert.Error(t, err)
}
