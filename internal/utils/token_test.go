package utils

import (
	"testing"
	"time"

	"keepcooking/internal/apperrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenToken(42)
	require.NoError(t, err)

	userID, err := ParseToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = ParseToken("")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	now := time.Now()
	claims := UserClaims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * AccessTTL)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-AccessTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(getJwtKey())
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, apperrors.ErrExpiredToken)
}

func TestParseTokenRejectsWrongKey(t *testing.T) {
	claims := UserClaims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("some other key"))
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

// Tokens without an expiry must not validate, whatever signed them.
func TestParseTokenRequiresExpiry(t *testing.T) {
	claims := UserClaims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(getJwtKey())
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
