package jwttoken

import (
	authmw "selfid/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) (*authmw.JWTClaims, error) {
	account, err := claims.Account()
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{
		Account: account,
		JTI:     claims.ID,
	}, nil
}

type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims)
}
