package services

import (
	"errors"
)

// Error classes handlers use to pick a response status. Request errors carry
// a user-facing message and unwrap to one of these.
var (
	ErrInvalid   = errors.New("invalid request")
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

type reqError struct {
	class error
	msg   string
}

func (e *reqError) Error() string { return e.msg }
func (e *reqError) Unwrap() error { return e.class }

func invalid(msg string) error   { return &reqError{class: ErrInvalid, msg: msg} }
func notFound(msg string) error  { return &reqError{class: ErrNotFound, msg: msg} }
func forbidden(msg string) error { return &reqError{class: ErrForbidden, msg: msg} }
