package services

import "errors"

// Sentinel errors for the engine's failure taxonomy. Handlers map these to
// HTTP statuses; services wrap them with context via fmt.Errorf("%w: ...").
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidDifficulty = errors.New("invalid difficulty tier")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrAlreadyLinked     = errors.New("account already linked")
	ErrAlreadyCompleted  = errors.New("quest already completed")
	ErrAlreadyConfirmed  = errors.New("quest already confirmed")
	ErrInsufficientGold  = errors.New("not enough gold")
	ErrInvalidState      = errors.New("invalid state")
)
