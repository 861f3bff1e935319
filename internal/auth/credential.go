package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type BcryptCredentialStore struct {
	cost int
}

func NewBcryptCredentialStore(cost int) *BcryptCredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptCredentialStore{cost: cost}
}

func (s *BcryptCredentialStore) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes never match.
func (s *BcryptCredentialStore) Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
