package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"venture-match-backend/internal/common/config"
)

const identityKey = "identity"

// Identity is the authenticated caller as asserted by the identity provider.
// Subject is the provider's opaque user reference; the profile fields are the
// defaults used when a user record has to be created lazily.
type Identity struct {
	Subject  string
	Name     string
	Email    string
	ImageURL string
}

type providerClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token issued by the identity provider and stores
// the caller identity in the request context. No store access happens here.
func Auth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated: bearer token required"})
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated: malformed Authorization header"})
			return
		}

		claims := &providerClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Auth.JWTSecret), nil
		}, jwt.WithIssuer(cfg.Auth.Issuer))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated: invalid token"})
			return
		}

		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated: token has no subject"})
			return
		}

		c.Set(identityKey, Identity{
			Subject:  claims.Subject,
			Name:     claims.Name,
			Email:    claims.Email,
			ImageURL: claims.Picture,
		})
		c.Next()
	}
}

// CallerIdentity returns the identity stored by the Auth middleware.
func CallerIdentity(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}

	identity, ok := v.(Identity)
	return identity, ok
}
