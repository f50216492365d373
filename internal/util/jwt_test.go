package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("s3cret", "saha-erp", 7, "admin", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", "saha-erp", token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestParseTokenRejects(t *testing.T) {
	token, err := GenerateToken("s3cret", "saha-erp", 7, "staff", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other", "saha-erp", token)
	assert.Error(t, err, "wrong secret")

	_, err = ParseToken("s3cret", "someone-else", token)
	assert.Error(t, err, "wrong issuer")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "saha-erp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = ParseToken("s3cret", "saha-erp", signed)
	assert.Error(t, err, "expired")

	anonymous, err := GenerateToken("s3cret", "saha-erp", 0, "staff", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", "saha-erp", anonymous)
	assert.Error(t, err, "user id 0")

	_, err = ParseToken("s3cret", "saha-erp", "not-a-token")
	assert.Error(t, err)
}
