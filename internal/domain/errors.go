package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidReservation = errors.New("invalid reservation")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrDuplicate          = errors.New("duplicate")
	ErrNoPath             = errors.New("no path")
)
