package records

import (
	"errors"
)

var (
	ErrNotInitialized     = errors.New("not initialized")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserNotFound       = errors.New("user not found")
	ErrRecordNotFound     = errors.New("record not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAccessDenied       = errors.New("access denied")
	ErrPaused             = errors.New("paused")
	ErrVersionNotFound    = errors.New("version not found")
)

// ErrorCode is the stable numeric code of a domain error
type ErrorCode uint32

const (
	CodeNone ErrorCode = iota
	CodeNotInitialized
	CodeAlreadyInitialized
	CodeUnauthorized
	CodeUserNotFound
	CodeRecordNotFound
	CodeInvalidInput
	CodeAccessDenied
	CodePaused
	CodeVersionNotFound
)

var errorCodes = []struct {
	err  error
	code ErrorCode
}{
	{ErrNotInitialized, CodeNotInitialized},
	{ErrAlreadyInitialized, CodeAlreadyInitialized},
	{ErrUnauthorized, CodeUnauthorized},
	{ErrUserNotFound, CodeUserNotFound},
	{ErrRecordNotFound, CodeRecordNotFound},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrAccessDenied, CodeAccessDenied},
	{ErrPaused, CodePaused},
	{ErrVersionNotFound, CodeVersionNotFound},
}

// Code returns the numeric code for err, CodeNone if it is not a domain error
func Code(err error) ErrorCode {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeNone
}
