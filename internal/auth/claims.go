package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Role enumerates the portal account roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleClient  Role = "client"
	RoleManager Role = "manager"
)

// ParseRole normalizes a raw role string.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.TrimSpace(strings.ToLower(raw)))
	return r, r.Valid()
}

// Valid reports whether the role belongs to the closed enum.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleManager:
		return true
	}
	return false
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the closed identity payload embedded into portal tokens.
//
// Access tokens carry the full field set. Refresh tokens carry only the user
// id and token type; the remaining fields are re-derived from the store when
// the token is exchanged.
type Claims struct {
	UserID    int64  `json:"uid"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	INN       string `json:"inn,omitempty"`
	Role      Role   `json:"role,omitempty"`
	Access    int    `json:"access"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// validateSchema rejects payloads that do not match the expected shape for
// the given token type. Arbitrary extra fields are dropped by the decoder;
// what remains must be well-formed.
func (c *Claims) validateSchema(tokenType string) error {
	if c.UserID <= 0 {
		return ErrInvalidToken
	}
	if c.TokenType != tokenType {
		return ErrInvalidToken
	}
	switch tokenType {
	case TokenTypeAccess:
		if !c.Role.Valid() {
			return ErrInvalidToken
		}
		if c.Access != 0 && c.Access != 1 {
			return ErrInvalidToken
		}
	case TokenTypeRefresh:
		// id-only payload; nothing further to check
	default:
		return ErrInvalidToken
	}
	return nil
}
