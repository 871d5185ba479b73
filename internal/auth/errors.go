package auth

import "errors"

var (
	// ErrUnauthorized means the request carried no usable credentials.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrForbidden means the caller's role is below what the ledger
	// operation requires.
	ErrForbidden = errors.New("auth: forbidden")
	// ErrInvalidToken means the bearer token failed signature or claim
	// checks.
	ErrInvalidToken = errors.New("auth: invalid token")
)
