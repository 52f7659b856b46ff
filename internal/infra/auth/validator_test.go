package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/traveldesk/internal/domain"
)

func signToken(t *testing.T, key *rsa.PrivateKey, claims domain.CustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func testClaims(ttl time.Duration) domain.CustomClaims {
	return domain.CustomClaims{
		UserID: "u1",
		Email:  "user@example.com",
		Role:   "Employee",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

func TestVerifyToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	v := NewBaseValidator(&key.PublicKey)
	tokenStr := signToken(t, key, testClaims(time.Hour))

	claims, err := v.VerifyToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Employee", claims.Role)

	// Префикс Bearer из заголовка Authorization тоже принимается
	claims, err = v.VerifyToken("Bearer " + tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestVerifyToken_Expired(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	v := NewBaseValidator(&key.PublicKey)
	tokenStr := signToken(t, key, testClaims(-time.Minute))

	_, err = v.VerifyToken(tokenStr)
	assert.Error(t, err)
}

func TestVerifyToken_WrongKey(t *testing.T) {
	signingKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	v := NewBaseValidator(&otherKey.PublicKey)
	_, err = v.VerifyToken(signToken(t, signingKey, testClaims(time.Hour)))
	assert.Error(t, err)
}

func TestVerifyToken_RejectsHMAC(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	// Токен, подписанный симметричным алгоритмом, не проходит
	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, testClaims(time.Hour)).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	v := NewBaseValidator(&key.PublicKey)
	_, err = v.VerifyToken(hmacToken)
	assert.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	v := NewBaseValidator(&key.PublicKey)
	_, err = v.VerifyToken("not-a-token")
	assert.Error(t, err)
}

func TestParseRSAKeys_Empty(t *testing.T) {
	_, err := ParseRSAPublicKey(nil)
	assert.Error(t, err)
	_, err = ParseRSAPrivateKey([]byte{})
	assert.Error(t, err)
}
