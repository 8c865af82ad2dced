package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation")               // 400
	ErrInvalidCredentials    = errors.New("invalid credentials")      // 401
	ErrMissingToken          = errors.New("missing token")            // 401
	ErrInvalidSignature      = errors.New("invalid signature")        // 401
	ErrForbidden             = errors.New("forbidden")                // 403
	ErrTokenNotRegistered    = errors.New("token not registered")     // 403
	ErrTokenInvalidOrExpired = errors.New("token invalid or expired") // 403
	ErrNotFound              = errors.New("not found")                // 404
	ErrPrincipalGone         = errors.New("principal gone")           // 404
	ErrConflict              = errors.New("conflict")                 // 409
)

// Error carries a client-facing message and the sentinel it belongs to.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
