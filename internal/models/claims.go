package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims is the JWT payload the auth middleware extracts for every
// authenticated request.
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
