package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "stockroom/internal/core/context"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func defaultClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name:  "Alice",
		Roles: []string{"inventory"},
	}
}

func TestValidateToken(t *testing.T) {
	validator := NewHMACValidator(testSecret)
	token := signToken(t, testSecret, defaultClaims())

	user, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, []string{"inventory"}, user.Roles)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	validator := NewHMACValidator(testSecret)
	token := signToken(t, []byte("other-secret"), defaultClaims())

	_, err := validator.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	validator := NewHMACValidator(testSecret)
	claims := defaultClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token := signToken(t, testSecret, claims)

	_, err := validator.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenNoSubject(t *testing.T) {
	validator := NewHMACValidator(testSecret)
	claims := defaultClaims()
	claims.Subject = ""
	token := signToken(t, testSecret, claims)

	_, err := validator.ValidateToken(token)
	require.Error(t, err)
}

func newAuthRouter(validator TokenValidator) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seenUserID string
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(Auth(validator))
	r.GET("/ping", func(c *gin.Context) {
		seenUserID = appctx.GetUserID(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return r, &seenUserID
}

func TestAuthMiddleware(t *testing.T) {
	validator := NewHMACValidator(testSecret)
	token := signToken(t, testSecret, defaultClaims())

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, seenUserID := newAuthRouter(validator)

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-1", *seenUserID)
			}
		})
	}
}
