package jwttoken

import (
	authmw "inkwell/pkg/platform/middleware/auth"
)

// SessionValidator satisfies the auth middleware's validator port. The
// middleware only needs the subject and the JTI used for revocation checks.
type SessionValidator struct {
	service *JWTService
}

func NewSessionValidator(service *JWTService) *SessionValidator {
	return &SessionValidator{service: service}
}

func (v *SessionValidator) ValidateToken(token string) (*authmw.JWTClaims, error) {
	claims, err := v.service.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{UserID: claims.Subject, JTI: claims.ID}, nil
}
