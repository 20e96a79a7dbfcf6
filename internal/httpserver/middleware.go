package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskman/internal/handler"
	"taskman/internal/model"
	"taskman/internal/util"
	"taskman/pkg/metrics"
	"taskman/pkg/rbac"
)

// AuthMiddleware validates the bearer token and attaches the caller's
// identity. Permissions are derived from the role, so guards downstream
// never touch storage.
func AuthMiddleware(jwtSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			c.Abort()
			return
		}

		userID, role, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			logger.Debug("Token rejected", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			c.Abort()
			return
		}

		handler.SetIdentity(c, model.Identity{
			UserID:      userID,
			Role:        role,
			Permissions: rbac.DefaultPermissions(role),
		})
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allow list.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := handler.CurrentIdentity(c)
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
		c.Abort()
	}
}

// RequirePermission rejects callers lacking a permission. Admins pass
// regardless.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := handler.CurrentIdentity(c)
		if err := rbac.CheckPermission(actor.UserID, actor.Role, actor.Permissions, permission); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// MetricsMiddleware records request latency per route template.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
