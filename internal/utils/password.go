package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt cost for new hashes. Raising it makes existing
// hashes report PasswordNeedsRehash on the next successful login.
const hashCost = 12

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordNeedsRehash reports whether a stored hash was produced with a
// weaker cost than the current one.
func PasswordNeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return cost < hashCost
}
