package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ristomkd/LibraryNetwork/internal/models"
)

// Logger emits one structured line per request. Authenticated requests also
// carry the caller's identity and library scope, so scoped admin actions can
// be traced back to a library from the access log alone.
func Logger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		args := []any{
			slog.String("method", param.Method),
			slog.String("path", param.Path),
			slog.Int("status", param.StatusCode),
			slog.Duration("latency", param.Latency),
			slog.String("client_ip", param.ClientIP),
			slog.String("user_agent", param.Request.UserAgent()),
			slog.Int("body_size", param.BodySize),
		}

		if value, ok := param.Keys[callerKey]; ok {
			if caller, ok := value.(models.Caller); ok {
				args = append(args,
					slog.Int("user_id", int(caller.UserID)),
					slog.String("role", string(caller.Role)),
				)
				if caller.LibraryID != nil {
					args = append(args, slog.Int("library_id", int(*caller.LibraryID)))
				}
				if caller.MemberID != nil {
					args = append(args, slog.Int("member_id", int(*caller.MemberID)))
				}
			}
		}

		slog.Default().Info("HTTP Request", args...)
		return ""
	})
}

func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger := slog.Default()

		logger.Error("Panic recovered",
			slog.Any("error", recovered),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("client_ip", c.ClientIP()),
		)

		c.JSON(500, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Internal server error",
			},
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}
