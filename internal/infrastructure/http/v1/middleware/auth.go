package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"stockroom/internal/core/apperror"
	appctx "stockroom/internal/core/context"
)

// TokenValidator validates a bearer token and resolves the caller identity.
// Tokens are minted by an external identity provider; this service only
// verifies them.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.User, error)
}

// Claims are the JWT claims this service understands.
type Claims struct {
	jwt.RegisteredClaims

	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// HMACValidator validates HS256 tokens with a shared secret.
type HMACValidator struct {
	secret []byte
}

// NewHMACValidator creates a validator for HS256-signed tokens.
func NewHMACValidator(secret []byte) *HMACValidator {
	return &HMACValidator{secret: secret}
}

// ValidateToken parses and verifies the token, returning the caller.
func (v *HMACValidator) ValidateToken(tokenString string) (*appctx.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return &appctx.User{
		ID:    claims.Subject,
		Name:  claims.Name,
		Roles: claims.Roles,
	}, nil
}

// Auth middleware validates bearer tokens and populates the caller
// identity in the request context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		user, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithUser(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
