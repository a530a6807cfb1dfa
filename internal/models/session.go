package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims identify an anonymous cart session. The token carries no
// cart data; the cart itself lives in the durable store under the session id.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
