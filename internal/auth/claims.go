// Package auth implements the minimal single-operator session guarding
// the HTTP/UI surface: one JWT subject, no tenant scoping.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of the operator session token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the token returned to a logged-in operator.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
