package errors

import "errors"

var (
	ErrPOINotFound        = errors.New("poi not found")
	ErrInvalidPOIInput    = errors.New("invalid poi input")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrInvalidListFilter  = errors.New("invalid list filter")
)
