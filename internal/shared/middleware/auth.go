package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"connect-digitals-backend/internal/domains/user"
	"connect-digitals-backend/internal/shared/response"
	"connect-digitals-backend/pkg/jwt"
)

const (
	ctxUserID   = "user_id"
	ctxUserRole = "user_role"
	ctxUserName = "user_name"
)

// UserLoader fetches the account behind a token so the middleware can
// check that it is still active and its credentials unchanged.
type UserLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Authenticate validates the bearer token and loads the account.
// Rejects inactive accounts and tokens issued before the last password
// change.
func Authenticate(jwtMgr *jwt.Manager, loader UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, jwtMgr)
		if !ok {
			response.Unauthorized(c, "Invalid or missing token")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "Invalid token subject")
			c.Abort()
			return
		}

		u, err := loader.FindByID(c.Request.Context(), userID)
		if err != nil {
			response.Unauthorized(c, "Account no longer exists")
			c.Abort()
			return
		}

		if !u.IsActive {
			response.Unauthorized(c, "Account is deactivated")
			c.Abort()
			return
		}

		if claims.IssuedAt != nil && u.TokenIssuedBeforePasswordChange(claims.IssuedAt.Time) {
			response.Unauthorized(c, "Password changed recently, please log in again")
			c.Abort()
			return
		}

		c.Set(ctxUserID, u.ID)
		c.Set(ctxUserRole, u.Role)
		c.Set(ctxUserName, u.Name)

		c.Next()
	}
}

// OptionalAuthenticate attaches identity when a valid token is present
// but never rejects the request.
func OptionalAuthenticate(jwtMgr *jwt.Manager, loader UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, jwtMgr)
		if !ok {
			c.Next()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		u, err := loader.FindByID(c.Request.Context(), userID)
		if err != nil || !u.IsActive {
			c.Next()
			return
		}
		if claims.IssuedAt != nil && u.TokenIssuedBeforePasswordChange(claims.IssuedAt.Time) {
			c.Next()
			return
		}

		c.Set(ctxUserID, u.ID)
		c.Set(ctxUserRole, u.Role)
		c.Set(ctxUserName, u.Name)

		c.Next()
	}
}

// RequireRoles allows only the listed roles past. Must run after
// Authenticate.
func RequireRoles(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "Access denied: insufficient role")
		c.Abort()
	}
}

func parseBearer(c *gin.Context, jwtMgr *jwt.Manager) (*jwt.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}

	claims, err := jwtMgr.ValidateToken(parts[1])
	if err != nil {
		return nil, false
	}

	return claims, true
}

// GetUserID returns the authenticated account ID from the context.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(ctxUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// GetUserName returns the authenticated account display name.
func GetUserName(c *gin.Context) string {
	return c.GetString(ctxUserName)
}

// GetUserRole returns the authenticated account role from the context.
func GetUserRole(c *gin.Context) (user.Role, bool) {
	value, exists := c.Get(ctxUserRole)
	if !exists {
		return "", false
	}
	role, ok := value.(user.Role)
	return role, ok
}
