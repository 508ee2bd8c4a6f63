package security

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

const (
	CodeMin = 100000
	CodeMax = 999999
)

// NewCode returns a uniformly random confirmation code in [CodeMin, CodeMax].
func NewCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(CodeMax-CodeMin+1))
	if err != nil {
		return 0, fmt.Errorf("generate code: %w", err)
	}
	return CodeMin + int(n.Int64()), nil
}
