package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrRoundLocked           = errors.New("round is locked for roster edits")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
