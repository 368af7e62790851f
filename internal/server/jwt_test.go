package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applicant-tracker/internal/config"
)

func testJWTService() *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: "test-secret-of-sufficient-length", ExpirationHours: 1})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := testJWTService()

	token, err := svc.GenerateToken(7)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.GetUserID())
	assert.Equal(t, "7", claims.Subject)

	getter, err := svc.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), getter.GetUserID())
}

func TestJWTService_Rejects(t *testing.T) {
	svc := testJWTService()
	valid, err := svc.GenerateToken(7)
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "another-secret-of-enough-length", ExpirationHours: 1})
	foreign, err := other.GenerateToken(7)
	require.NoError(t, err)

	expiredSvc := testJWTService()
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.GenerateToken(7)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 7})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{"empty", "", "token string is empty"},
		{"garbage", "not-a-token", "malformed token"},
		{"wrong secret", foreign, "invalid token signature"},
		{"expired", expired, "token expired"},
		{"alg none", unsigned, "failed to parse token"},
		{"tampered", valid[:len(valid)-2] + "xx", "invalid token signature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestJWTService_TTL(t *testing.T) {
	svc := NewJWTService(&config.JWTConfig{Secret: "test-secret-of-sufficient-length", ExpirationHours: 24})
	assert.Equal(t, 24*time.Hour, svc.TTL())
}
