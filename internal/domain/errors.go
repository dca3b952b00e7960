package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrEmptyGroup           = errors.New("empty group")
	ErrUnrecognizedCategory = errors.New("unrecognized category value")
	ErrNotFound             = errors.New("not found")
)

// Error carries one of the sentinel kinds above plus a human readable detail.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// Invalidf builds an ErrInvalidArgument error.
func Invalidf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// EmptyGroupf builds an ErrEmptyGroup error.
func EmptyGroupf(format string, args ...any) error {
	return &Error{Kind: ErrEmptyGroup, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds an ErrNotFound error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func unrecognized(field, value string) error {
	return &Error{Kind: ErrUnrecognizedCategory, Msg: fmt.Sprintf("%s %q", field, value)}
}
