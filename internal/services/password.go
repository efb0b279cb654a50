package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// passwordHasher hashes and verifies passwords with bcrypt at a fixed cost
type passwordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher using the given bcrypt cost
// Costs outside the bcrypt range are rejected by Hash
func NewPasswordHasher(cost int) *passwordHasher {
	return &passwordHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of password
func (h *passwordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash
// A mismatch is (false, nil); a malformed hash is an error
func (h *passwordHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to verify password: %w", err)
}
