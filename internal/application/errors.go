package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrLoanNotFound       = errors.New("loan not found")
	// ErrQuotaExceeded means the authoritative pre-insert count check
	// failed. Recoverable: surfaced with an upgrade call-to-action.
	ErrQuotaExceeded = errors.New("loan limit reached for current plan")
)
