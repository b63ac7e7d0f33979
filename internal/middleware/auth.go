package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ristomkd/LibraryNetwork/internal/models"
	"github.com/ristomkd/LibraryNetwork/internal/services"
)

const callerKey = "caller"

type AuthMiddleware struct {
	authService *services.AuthService
}

func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// RequireAuth validates the bearer token and stores the resulting caller in
// the request context. Everything below the middleware receives the caller
// explicitly; no handler reads claims on its own.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_AUTH_HEADER",
					"message": "Authorization header is required",
				},
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_AUTH_FORMAT",
					"message": "Authorization header must be in format 'Bearer <token>'",
				},
			})
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := m.authService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Invalid or expired token",
				},
			})
			c.Abort()
			return
		}

		c.Set(callerKey, claims.AsCaller())
		c.Set("access_token", tokenString)

		c.Next()
	}
}

func (m *AuthMiddleware) requireRole(allowedRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_CALLER",
					"message": "Caller not found in context",
				},
			})
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if caller.Role == allowedRole {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INSUFFICIENT_PERMISSIONS",
				"message": "Insufficient permissions to access this resource",
			},
		})
		c.Abort()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.requireRole(models.RoleAdmin)
}

func (m *AuthMiddleware) RequireMember() gin.HandlerFunc {
	return m.requireRole(models.RoleMember)
}

// GetCaller returns the authenticated caller placed in the context by
// RequireAuth.
func GetCaller(c *gin.Context) (models.Caller, bool) {
	value, exists := c.Get(callerKey)
	if !exists {
		return models.Caller{}, false
	}

	caller, ok := value.(models.Caller)
	return caller, ok
}

// GetAccessToken returns the raw bearer token of the request, for logout.
func GetAccessToken(c *gin.Context) string {
	value, exists := c.Get("access_token")
	if !exists {
		return ""
	}

	if token, ok := value.(string); ok {
		return token
	}

	return ""
}
