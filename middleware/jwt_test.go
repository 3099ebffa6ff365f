package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-32bytes-padded!!"

func TestGenerateToken_Valid(t *testing.T) {
	tok, err := GenerateToken(42, testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
}

func TestParseToken_Valid(t *testing.T) {
	tok, err := GenerateToken(99, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(99), claims.UserID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken(1, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, "wrong-secret")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := GenerateToken(1, testSecret, -time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, testSecret)
	assert.Error(t, err)
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := ParseToken("not.a.jwt", testSecret)
	assert.Error(t, err)
}

func TestParseToken_Empty(t *testing.T) {
	_, err := ParseToken("", testSecret)
	assert.Error(t, err)
}

func TestGenerateToken_DifferentUsers(t *testing.T) {
	t1, _ := GenerateToken(1, testSecret, time.Hour)
	t2, _ := GenerateToken(2, testSecret, time.Hour)
	assert.NotEqual(t, t1, t2)

	c1, _ := ParseToken(t1, testSecret)
	c2, _ := ParseToken(t2, testSecret)
	assert.Equal(t, int64(1), c1.UserID)
	assert.Equal(t, int64(2), c2.UserID)
}

// signMobile signs a token with arbitrary claims the way a mobile client
// backend would.
func signMobile(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestParseMobileToken_SubClaim(t *testing.T) {
	tok := signMobile(t, testSecret, jwt.MapClaims{"sub": "42"})
	id, err := ParseMobileToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestParseMobileToken_NumericSub(t *testing.T) {
	tok := signMobile(t, testSecret, jwt.MapClaims{"sub": 7})
	id, err := ParseMobileToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestParseMobileToken_NestedUserID(t *testing.T) {
	tok := signMobile(t, testSecret, jwt.MapClaims{
		"user": map[string]interface{}{"id": 123, "name": "alice"},
	})
	id, err := ParseMobileToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(123), id)
}

func TestParseMobileToken_NoIdentity(t *testing.T) {
	tok := signMobile(t, testSecret, jwt.MapClaims{"aud": "gatherly"})
	_, err := ParseMobileToken(tok, testSecret)
	assert.Error(t, err)
}

func TestParseMobileToken_WrongSecret(t *testing.T) {
	tok := signMobile(t, testSecret, jwt.MapClaims{"sub": "1"})
	_, err := ParseMobileToken(tok, "other-secret")
	assert.Error(t, err)
}
