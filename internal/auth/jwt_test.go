package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
)

const secret = "test-secret"

func TestVerifyValidToken(t *testing.T) {
	user := uuid.New()
	token, err := Sign(secret, user, "authenticated", time.Hour)
	require.NoError(t, err)

	got, err := NewVerifier(secret, "authenticated").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestVerifyRejects(t *testing.T) {
	user := uuid.New()
	expired, _ := Sign(secret, user, "", -time.Hour)
	wrongKey, _ := Sign("other", user, "", time.Hour)
	wrongAud, _ := Sign(secret, user, "someone-else", time.Hour)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: user.String()}).SignedString([]byte(secret))
	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   user.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))

	v := NewVerifier(secret, "authenticated")
	for name, token := range map[string]string{
		"expired":     expired,
		"wrong key":   wrongKey,
		"wrong aud":   wrongAud,
		"no exp":      noExp,
		"bad subject": badSubject,
		"wrong alg":   wrongAlg,
		"garbage":     "abc.def.ghi",
	} {
		_, err := v.Verify(token)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAuthentication), name)
	}
}

func TestAudienceOptional(t *testing.T) {
	user := uuid.New()
	token, err := Sign(secret, user, "anything", time.Hour)
	require.NoError(t, err)

	got, err := NewVerifier(secret, "").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = BearerToken("bearer   xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}
