package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)

	token, expiresAt, err := manager.Issue(42, "john@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.ID)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt)
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := manager.Issue(1, "john@example.com")
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret", time.Hour).Issue(1, "john@example.com")
	require.NoError(t, err)

	_, err = NewTokenManager("other-secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Verify_Tampered(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)
	token, _, err := manager.Issue(1, "john@example.com")
	require.NoError(t, err)

	// Replace the first signature character; every bit of it is significant.
	sigStart := strings.LastIndex(token, ".") + 1
	replacement := "A"
	if token[sigStart] == 'A' {
		replacement = "B"
	}
	tampered := token[:sigStart] + replacement + token[sigStart+1:]

	_, err = manager.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Verify_RejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		ID:    1,
		Email: "john@example.com",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Verify_Garbage(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)

	for _, token := range []string{"", "abc", "a.b.c"} {
		claims, err := manager.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
		assert.Nil(t, claims)
	}
}
