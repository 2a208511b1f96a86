package auth

import "errors"

var (
	// ErrInvalidToken indicates the token is malformed, carries a bad
	// signature, or its payload does not match the claims schema.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrTokenExpired indicates a structurally valid token whose expiry has
	// passed. Expiry is a routine, recoverable condition for callers.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrUnauthenticated indicates no usable credential was presented.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrForbidden indicates a valid identity with a disallowed role or a
	// failed ownership check.
	ErrForbidden = errors.New("auth: forbidden")

	// ErrInvalidCredentials indicates the password did not match.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrAccountDisabled indicates the account exists but may not
	// authenticate (active=false or access flag cleared).
	ErrAccountDisabled = errors.New("auth: account disabled")
)
