package middleware

import (
	"net/http"

	"github.com/autocare/platform/internal/domain/identity"
	"github.com/autocare/platform/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, allowed []identity.Role)
}

// RequireRoles allows the request when the caller holds one of roles
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return RequireRolesWithConfig(RoleConfig{}, roles...)
}

// RequireRolesWithConfig creates role middleware with custom config
func RequireRolesWithConfig(cfg RoleConfig, roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetJWTRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		handleRoleDenied(c, cfg, roles, role)
	}
}

// RequireMinRole allows the request when the caller's role ranks at least min
func RequireMinRole(min identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetJWTRole(c)
		if role.IsValid() && role.AtLeast(min) {
			c.Next()
			return
		}
		handleRoleDenied(c, RoleConfig{}, []identity.Role{min}, role)
	}
}

func handleRoleDenied(c *gin.Context, cfg RoleConfig, allowed []identity.Role, role identity.Role) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, allowed)
		return
	}
	if cfg.Logger != nil {
		cfg.Logger.Warn("Role check failed",
			zap.String("user_id", GetJWTUserID(c)),
			zap.String("role", string(role)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	code, msg := dto.ErrCodeForbidden, "Access denied: insufficient role"
	status := http.StatusForbidden
	if role == "" {
		code, msg = dto.ErrCodeUnauthorized, "Authentication required"
		status = http.StatusUnauthorized
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(code, msg, GetRequestID(c)))
}
