package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Hasher derives password digests. The salt is pre-mixed through SHA-256 so
// the bcrypt input stays under its 72-byte limit for any password length.
type Hasher struct {
	Cost int
}

// NewSalt returns 32 hex characters of fresh randomness.
func NewSalt() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(id[:]), nil
}

func (h Hasher) Hash(password, salt string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword(premix(password, salt), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches hash under salt.
func (h Hasher) Verify(hash, password, salt string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), premix(password, salt))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

func premix(password, salt string) []byte {
	sum := sha256.Sum256([]byte(salt + password))
	return []byte(hex.EncodeToString(sum[:]))
}
