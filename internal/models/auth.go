package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access token payload issued by the hosted auth provider.
type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *JWTClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
