package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid status transition")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnavailable       = errors.New("collaborator unavailable")
)
