package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fitcoach/internal/pkg/ctxutil"
	"fitcoach/internal/pkg/jwt"
)

// AdminChecker reports whether a user id belongs to a provisioned admin.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Auth extracts the Bearer token, validates it, and injects the user id
// into the request context. Requests without a valid token are rejected.
func Auth(jwtUtil *jwt.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			c.Abort()
			return
		}

		claims, err := validateBearer(jwtUtil, authHeader)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Token is invalid or expired",
			})
			c.Abort()
			return
		}

		ctx := ctxutil.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// OptionalAuth injects the user id when a Bearer token is present, but lets
// anonymous requests through. A token that is present and invalid is still
// rejected so callers cannot smuggle a stale identity.
func OptionalAuth(jwtUtil *jwt.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		claims, err := validateBearer(jwtUtil, authHeader)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Token is invalid or expired",
			})
			c.Abort()
			return
		}

		ctx := ctxutil.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// AdminRequired rejects callers whose user id has no admin marker.
// Must run after Auth.
func AdminRequired(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := ctxutil.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			c.Abort()
			return
		}

		isAdmin, err := checker.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}
		if !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Unauthorized: Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func validateBearer(jwtUtil *jwt.JWT, authHeader string) (*jwt.Claims, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, jwt.ErrInvalidToken
	}
	return jwtUtil.ValidateToken(parts[1])
}
