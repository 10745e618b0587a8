package handler

import (
	"strings"

	"inkwell/internal/auth/models"
	"inkwell/internal/auth/password"
	dErrors "inkwell/pkg/domain-errors"
)

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = models.NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

// Follows validation order: Size -> Required -> Syntax.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Email) > models.MaxEmailLength {
		return dErrors.New(dErrors.CodeValidation, "email is too long")
	}
	if len(r.Name) > models.MaxNameLength*4 {
		return dErrors.New(dErrors.CodeValidation, "name is too long")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	if err := models.ValidateEmail(r.Email); err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return password.CheckPolicy(r.Password)
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = models.NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Email) > models.MaxEmailLength || len(r.Password) > password.MaxLength {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

// UpdateProfileRequest is the body of PATCH /api/auth/user. Absent fields
// are left unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Bio   *string `json:"bio"`
	Image *string `json:"image"`
}

func (r *UpdateProfileRequest) Normalize() {
	if r == nil {
		return
	}
	for _, f := range []*string{r.Name, r.Bio, r.Image} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (r *UpdateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Name == nil && r.Bio == nil && r.Image == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	return nil
}

// Update converts the request to the domain update.
func (r *UpdateProfileRequest) Update() models.ProfileUpdate {
	return models.ProfileUpdate{Name: r.Name, Bio: r.Bio, Image: r.Image}
}
