package session

import "errors"

var (
	ErrValidation        = errors.New("invalid input")
	ErrAuthRejected      = errors.New("authentication rejected")
	ErrNetworkFailure    = errors.New("network failure")
	ErrSessionCorrupted  = errors.New("session corrupted")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrInvalidTransition = errors.New("invalid session transition")
)
