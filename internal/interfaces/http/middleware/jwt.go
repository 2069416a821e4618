package middleware

import (
	"net/http"
	"strings"

	"github.com/agencycrm/backend/internal/infrastructure/auth"
	"github.com/agencycrm/backend/internal/infrastructure/logger"
	"github.com/agencycrm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTTenantIDKey = "jwt_tenant_id"
	JWTUserIDKey   = "jwt_user_id"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTConfig holds configuration for the auth middleware
type JWTConfig struct {
	Service *auth.JWTService
	// SkipPaths are paths served without authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultJWTConfig returns the default auth middleware configuration
func DefaultJWTConfig(service *auth.JWTService) JWTConfig {
	return JWTConfig{
		Service: service,
		SkipPaths: []string{
			"/health",
			"/ready",
		},
	}
}

// JWTAuth creates the authentication middleware. On success the tenant
// claim lands both in the gin context and in the request context, where
// the tenant-scoped persistence layer reads it.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" || !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Authentication required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := cfg.Service.ValidateToken(tokenString)
		if err != nil {
			log.Warn("token validation failed",
				zap.Error(err),
				zap.String("path", path))
			switch err {
			case auth.ErrExpiredToken:
				abortUnauthorized(c, "Token has expired")
			default:
				abortUnauthorized(c, "Invalid token")
			}
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTTenantIDKey, claims.TenantID)
		c.Set(JWTUserIDKey, claims.UserID)

		ctx := c.Request.Context()
		ctxLog := logger.FromContext(ctx)
		ctx, ctxLog = logger.WithTenantID(ctx, ctxLog, claims.TenantID)
		if claims.UserID != "" {
			ctx, _ = logger.WithUserID(ctx, ctxLog, claims.UserID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// GetTenantID retrieves the tenant claim set by JWTAuth
func GetTenantID(c *gin.Context) string {
	if tenantID, exists := c.Get(JWTTenantIDKey); exists {
		if id, ok := tenantID.(string); ok {
			return id
		}
	}
	return ""
}

// GetUserID retrieves the user claim set by JWTAuth
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}
