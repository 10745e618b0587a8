package models

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/email"
)

const (
	MaxEmailLength = 254
	MaxNameLength  = 100
	MaxBioLength   = 500
	MaxImageLength = 2048
)

// User is a registered author or commenter.
//
// Invariants:
//   - Email is trimmed, lowercased and a valid address
//   - Name is at most MaxNameLength runes
//   - PasswordHash is never empty and never serialized
type User struct {
	ID           id.UserID
	Email        string
	Name         string
	Bio          string
	Image        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks a normalized address.
func ValidateEmail(email string) error {
	if email == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "email is required")
	}
	if len(email) > MaxEmailLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return dErrors.New(dErrors.CodeInvariantViolation, "email is invalid")
	}
	return nil
}

// NewUser constructs a user, enforcing invariants. An empty name defaults to
// one derived from the address.
func NewUser(userID id.UserID, address, name, passwordHash string, now time.Time) (*User, error) {
	address = NormalizeEmail(address)
	if err := ValidateEmail(address); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name is too long")
	}
	if derived := email.DisplayName(address); name == "" && utf8.RuneCountInString(derived) <= MaxNameLength {
		name = derived
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	return &User{
		ID:           userID,
		Email:        address,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ProfileUpdate carries optional profile changes; nil fields are unchanged.
type ProfileUpdate struct {
	Name  *string
	Bio   *string
	Image *string
}

// IsEmpty reports whether the update changes nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Bio == nil && p.Image == nil
}

// ApplyProfile validates and applies a profile update.
func (u *User) ApplyProfile(p ProfileUpdate, now time.Time) error {
	if p.Name != nil && utf8.RuneCountInString(strings.TrimSpace(*p.Name)) > MaxNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "name is too long")
	}
	if p.Bio != nil && utf8.RuneCountInString(*p.Bio) > MaxBioLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "bio is too long")
	}
	if p.Image != nil && len(*p.Image) > MaxImageLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "image URL is too long")
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Bio != nil {
		u.Bio = strings.TrimSpace(*p.Bio)
	}
	if p.Image != nil {
		u.Image = strings.TrimSpace(*p.Image)
	}
	u.UpdatedAt = now
	return nil
}

// Profile is the public view of a user.
type Profile struct {
	ID        id.UserID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Bio:       u.Bio,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
	}
}

// Author is the minimal user view embedded in posts and comments.
type Author struct {
	ID    id.UserID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image,omitempty"`
}

// Author returns the embedded view of u.
func (u *User) Author() Author {
	return Author{ID: u.ID, Name: u.Name, Image: u.Image}
}
