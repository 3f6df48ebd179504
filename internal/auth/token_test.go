package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", "FlertaAI-api")
	tok, err := m.GenerateToken("user-1", "a@b.c")
	require.NoError(t, err)

	claims, err := m.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, "FlertaAI-api", claims.Issuer)
}

func TestValidate_WrongKey(t *testing.T) {
	tok, err := NewManager("one", "").GenerateToken("u", "")
	require.NoError(t, err)

	_, err = NewManager("two", "").ValidateToken(tok)
	assert.Error(t, err)
}

func TestValidate_Expired(t *testing.T) {
	m := NewManager("secret", "")
	m.ttl = -time.Minute
	tok, err := m.GenerateToken("u", "")
	require.NoError(t, err)

	_, err = m.ValidateToken(tok)
	var vErr *jwt.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.NotZero(t, vErr.Errors&jwt.ValidationErrorExpired)
}

func TestValidate_MissingSubject(t *testing.T) {
	m := NewManager("secret", "")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestValidate_SubjectWithSeparator(t *testing.T) {
	m := NewManager("secret", "")
	for _, sub := range []string{"a/b", `a\b`, ".."} {
		tok, err := m.GenerateToken(sub, "")
		require.NoError(t, err)
		_, err = m.ValidateToken(tok)
		assert.ErrorIs(t, err, ErrInvalidSubject, sub)
	}

	tok, err := m.GenerateToken("0b6f3d0e-8f5a-4a4e-b1f5-7d1c2e3f4a5b", "")
	require.NoError(t, err)
	_, err = m.ValidateToken(tok)
	assert.NoError(t, err)
}

func TestValidate_RejectsNoneAlg(t *testing.T) {
	m := NewManager("secret", "")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ValidateToken(tok)
	assert.Error(t, err)
}
