package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"wallet-core.backend/internal/domain/entities"
	"wallet-core.backend/internal/interfaces/http/response"
	"wallet-core.backend/internal/usecases"
	"wallet-core.backend/pkg/jwt"
	"wallet-core.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for bearer authorization
	AuthorizationHeader = "Authorization"
	// ApiKeyHeader is the header key for API key authentication
	ApiKeyHeader = "x-api-key"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
	// AuthMethodKey is the context key for the authentication method used
	AuthMethodKey = "authMethod"
	// PermissionsKey is the context key for API key permissions
	PermissionsKey = "permissions"
)

const (
	// AuthMethodJWT marks a request authenticated with a bearer token.
	AuthMethodJWT = "jwt"
	// AuthMethodApiKey marks a request authenticated with an API key.
	AuthMethodApiKey = "api_key"
)

// AuthMiddleware authenticates the request with either an API key or a
// bearer token. Presence of the API key header selects the key path
// exclusively: an invalid key rejects the request even when a valid
// bearer token is also attached.
func AuthMiddleware(jwtService *jwt.JWTService, apiKeyUsecase *usecases.ApiKeyUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey := c.GetHeader(ApiKeyHeader); apiKey != "" {
			key, err := apiKeyUsecase.Authenticate(c.Request.Context(), apiKey)
			if err != nil {
				logger.Warn(c.Request.Context(), "api key authentication failed")
				response.AbortError(c, err)
				return
			}

			c.Set(UserIDKey, key.UserID)
			c.Set(AuthMethodKey, AuthMethodApiKey)
			c.Set(PermissionsKey, key.Permissions)
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if err == jwt.ErrExpiredToken {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Token has expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(AuthMethodKey, AuthMethodJWT)
		c.Next()
	}
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	return userID.(uuid.UUID), true
}

// GetUserEmail gets the user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetAuthMethod gets the authentication method from context
func GetAuthMethod(c *gin.Context) (string, bool) {
	method, exists := c.Get(AuthMethodKey)
	if !exists {
		return "", false
	}
	return method.(string), true
}

// GetPermissions gets the API key permissions from context
func GetPermissions(c *gin.Context) ([]entities.Permission, bool) {
	perms, exists := c.Get(PermissionsKey)
	if !exists {
		return nil, false
	}
	return perms.([]entities.Permission), true
}

// RequireBearerAuth gates a route to bearer token identities. Key
// management stays off-limits to API keys so a leaked key cannot mint
// replacements for itself.
func RequireBearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		method, exists := GetAuthMethod(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		if method != AuthMethodJWT {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "bearer token required",
			})
			return
		}
		c.Next()
	}
}

// RequirePermission gates a route on the given permission. Bearer token
// identities pass unconditionally; API key identities pass only when
// the key carries the permission.
func RequirePermission(required entities.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		method, exists := GetAuthMethod(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		if method == AuthMethodJWT {
			c.Next()
			return
		}

		perms, _ := GetPermissions(c)
		for _, p := range perms {
			if p == required {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "insufficient permissions",
		})
	}
}
