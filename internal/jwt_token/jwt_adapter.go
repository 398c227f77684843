package jwttoken

import (
	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
	authmw "didanchor/pkg/platform/middleware/auth"
)

type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

// ValidateToken satisfies authmw.JWTValidator.
func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	sender, err := domain.ParsePublicKey(claims.Sender)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid sender claim")
	}
	return &authmw.JWTClaims{Sender: sender, JTI: claims.ID}, nil
}
