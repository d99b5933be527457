package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "lifedebt-jwt-test"

func TestGenerateToken_RoundTrip(t *testing.T) {
	for _, userID := range []int64{1, 42, 9223372036854775807} {
		token, err := GenerateToken(userID, testSecret, 24)
		require.NoError(t, err)

		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
	}
}

func TestGenerateToken_Claims(t *testing.T) {
	token, err := GenerateToken(42, testSecret, 168)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Equal(t, "42", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), claims.ExpiresAt.Time, time.Minute)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Minute)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(7, testSecret, -1)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestParseToken_Invalid(t *testing.T) {
	valid, err := GenerateToken(7, testSecret, 24)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "other-secret"},
		{"empty", "", testSecret},
		{"malformed", "not-a-jwt", testSecret},
		{"three garbage segments", "a.b.c", testSecret},
		{"alg none", unsigned, testSecret},
		{"alg not allowed", hs512, testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}
