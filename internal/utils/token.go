package utils

import (
	"crypto/rand"
	"errors"
	"os"
	"sync"
	"time"

	"keepcooking/internal/apperrors"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie the access token travels in.
const CookieName = "access_token"

// AccessTTL bounds how long an issued token stays valid.
const AccessTTL = 24 * time.Hour

type UserClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

var (
	jwtKey     []byte
	jwtKeyOnce sync.Once
)

// getJwtKey reads JWT_SECRET once. Without a configured secret a random key
// is generated, which invalidates all tokens on restart.
func getJwtKey() []byte {
	jwtKeyOnce.Do(func() {
		if secret := os.Getenv("JWT_SECRET"); secret != "" {
			jwtKey = []byte(secret)
			return
		}
		jwtKey = make([]byte, 64)
		if _, err := rand.Read(jwtKey); err != nil {
			panic(err)
		}
	})
	return jwtKey
}

// GenToken issues a signed access token with the user id as subject.
func GenToken(userID uint) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJwtKey())
}

// ParseToken validates a token string and returns the user id it names.
func ParseToken(tokenStr string) (uint, error) {
	claims := new(UserClaims)
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return getJwtKey(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperrors.ErrExpiredToken
		}
		return 0, apperrors.ErrInvalidToken
	}
	return claims.UserID, nil
}
