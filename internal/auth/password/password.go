// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "inkwell/pkg/domain-errors"
)

const (
	MinLength = 8
	// MaxLength is bcrypt's input limit in bytes.
	MaxLength = 72
)

// Hasher hashes with a configurable cost so tests can use bcrypt.MinCost.
type Hasher struct {
	cost int
}

// NewHasher returns a hasher using cost, or bcrypt.DefaultCost when cost is 0.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// CheckPolicy enforces the length policy on a plaintext password.
func CheckPolicy(plain string) error {
	if len(plain) < MinLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", MinLength))
	}
	if len(plain) > MaxLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("password must be at most %d bytes", MaxLength))
	}
	return nil
}

// Hash creates a bcrypt hash of the provided password.
func (h *Hasher) Hash(plain string) (string, error) {
	if err := CheckPolicy(plain); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks if a plaintext password matches a bcrypt hash.
func (h *Hasher) Verify(plain, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return fmt.Errorf("could not verify password: %w", err)
	}
	return nil
}
