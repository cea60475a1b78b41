package jwttoken

import (
	"fleetdesk/pkg/platform/middleware/auth"
)

// AuthAdapter adapts JWTService to the auth middleware's TokenValidator
// interface so the middleware package stays free of JWT specifics.
type AuthAdapter struct {
	service *JWTService
}

func NewAuthAdapter(service *JWTService) *AuthAdapter {
	return &AuthAdapter{service: service}
}

func (a *AuthAdapter) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.Claims{
		OrgID: claims.OrgID,
		Actor: claims.Subject,
	}, nil
}
