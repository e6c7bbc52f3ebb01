package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/procurio/backend/internal/infrastructure/auth"
	"github.com/procurio/backend/internal/infrastructure/logger"
)

// Gin context keys set by the authentication middleware
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"

	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// JWTMiddlewareConfig configures the authentication middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// RevocationStore is consulted when set; a nil store skips revocation checks
	RevocationStore auth.TokenRevocationStore
	// SkipPaths are exact paths served without authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultJWTConfig returns the middleware config with the standard
// unauthenticated paths.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
	}
}

// JWTAuthMiddlewareWithConfig validates the bearer token on every request and
// stores the verified claims in the gin context.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			abortUnauthorized(c, cfg, err, "token validation failed")
			return
		}

		if revoked := checkRevocation(c, cfg, claims); revoked {
			abortUnauthorized(c, cfg, auth.ErrTokenRevoked, "token revoked")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTTenantIDKey, claims.TenantID)

		// Tag the request-scoped logger so downstream logs carry the identity
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
		ctx, _ = logger.WithTenantID(ctx, log, claims.TenantID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(authHeader)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	return token, token != ""
}

// checkRevocation reports whether the token or the whole user session has
// been revoked. Revocation store errors fail open so an unavailable store
// does not take the API down.
func checkRevocation(c *gin.Context, cfg JWTMiddlewareConfig, claims *auth.Claims) bool {
	if cfg.RevocationStore == nil {
		return false
	}
	ctx := c.Request.Context()

	if claims.ID != "" {
		revoked, err := cfg.RevocationStore.IsRevoked(ctx, claims.ID)
		if err != nil {
			logRevocationError(cfg, "token revocation check failed", claims, err)
		} else if revoked {
			return true
		}
	}

	if claims.UserID != "" {
		revoked, err := cfg.RevocationStore.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			logRevocationError(cfg, "user revocation check failed", claims, err)
		} else if revoked {
			return true
		}
	}
	return false
}

func logRevocationError(cfg JWTMiddlewareConfig, msg string, claims *auth.Claims, err error) {
	if cfg.Logger == nil {
		return
	}
	cfg.Logger.Error(msg,
		zap.String("jti", claims.ID),
		zap.String("user_id", claims.UserID),
		zap.Error(err))
}

func abortUnauthorized(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path))
	}

	code, msg := "UNAUTHORIZED", "Authentication required"
	switch err {
	case auth.ErrExpiredToken:
		code, msg = "TOKEN_EXPIRED", "Token has expired"
	case auth.ErrInvalidToken:
		code, msg = "INVALID_TOKEN", "Invalid token"
	case auth.ErrInvalidTokenType:
		code, msg = "INVALID_TOKEN_TYPE", "Invalid token type"
	case auth.ErrTokenNotYetValid:
		code, msg = "TOKEN_NOT_VALID", "Token is not yet valid"
	case auth.ErrTokenRevoked:
		code, msg = "TOKEN_REVOKED", "Token has been revoked"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": msg},
	})
}

// GetJWTClaims returns the verified claims, or nil outside an authenticated
// request.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(JWTClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTUserID returns the authenticated user id, or "" when absent
func GetJWTUserID(c *gin.Context) string {
	if v, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetJWTTenantID returns the authenticated tenant id, or "" when absent
func GetJWTTenantID(c *gin.Context) string {
	if v, exists := c.Get(JWTTenantIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// RequirePermission rejects requests whose claims do not carry the given
// permission. Mount after the authentication middleware.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"},
			})
			return
		}
		if !claims.HasPermission(permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "Insufficient permissions"},
			})
			return
		}
		c.Next()
	}
}
