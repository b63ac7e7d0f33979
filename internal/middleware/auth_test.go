package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ristomkd/LibraryNetwork/internal/models"
	"github.com/ristomkd/LibraryNetwork/internal/services"
)

// generateTestRSAKey generates a test RSA private key
func generateTestRSAKey() string {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}

	privateKeyPEM := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	return string(pem.EncodeToMemory(privateKeyPEM))
}

func createTestAuthService() *services.AuthService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	authService, err := services.NewAuthService(
		generateTestRSAKey(),
		generateTestRSAKey(),
		time.Hour,
		24*time.Hour,
		logger,
		nil, // Redis client not needed for middleware tests
	)
	if err != nil {
		panic(err)
	}
	return authService
}

func int32Ptr(v int32) *int32 { return &v }

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authService := createTestAuthService()
	authMiddleware := NewAuthMiddleware(authService)

	user := &models.User{
		ID:       7,
		Email:    "ana@example.com",
		Role:     models.RoleMember,
		MemberID: int32Ptr(42),
	}
	validToken, _, err := authService.GenerateTokens(user)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing authorization header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "MISSING_AUTH_HEADER",
		},
		{
			name:           "invalid authorization format",
			authHeader:     "InvalidToken",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "INVALID_AUTH_FORMAT",
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic dGVzdDp0ZXN0",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "INVALID_AUTH_FORMAT",
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer not-a-token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "INVALID_TOKEN",
		},
		{
			name:           "valid token",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/protected", authMiddleware.RequireAuth(), func(c *gin.Context) {
				caller, ok := GetCaller(c)
				require.True(t, ok)
				assert.Equal(t, int32(7), caller.UserID)
				require.NotNil(t, caller.MemberID)
				assert.Equal(t, int32(42), *caller.MemberID)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestAuthMiddleware_RoleGates(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authService := createTestAuthService()
	authMiddleware := NewAuthMiddleware(authService)

	admin := &models.User{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin, LibraryID: int32Ptr(3)}
	member := &models.User{ID: 2, Email: "ana@example.com", Role: models.RoleMember, MemberID: int32Ptr(42)}

	adminToken, _, err := authService.GenerateTokens(admin)
	require.NoError(t, err)
	memberToken, _, err := authService.GenerateTokens(member)
	require.NoError(t, err)

	r := gin.New()
	protected := r.Group("", authMiddleware.RequireAuth())
	protected.GET("/admin-only", authMiddleware.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	protected.GET("/member-only", authMiddleware.RequireMember(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name           string
		path           string
		token          string
		expectedStatus int
	}{
		{"admin reaches admin route", "/admin-only", adminToken, http.StatusOK},
		{"member blocked from admin route", "/admin-only", memberToken, http.StatusForbidden},
		{"member reaches member route", "/member-only", memberToken, http.StatusOK},
		{"admin blocked from member route", "/member-only", adminToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
