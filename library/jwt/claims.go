package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims carries the authenticated workspace member identity.
type UserClaims struct {
	jwt.RegisteredClaims
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}
