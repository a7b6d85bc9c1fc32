package errors

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidProfile    Code = "INVALID_PROFILE"
	CodeNoCandidates      Code = "NO_CANDIDATES"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeDeliveryFailure   Code = "DELIVERY_FAILURE"
	CodeDimensionMismatch Code = "DIMENSION_MISMATCH"
	CodeInternal          Code = "INTERNAL"
)

// AppError is a domain error carrying a taxonomy code. Two AppErrors match
// under errors.Is when their codes are equal, so callers can test against
// the code sentinels below regardless of the message.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Code sentinels for errors.Is.
var (
	ErrInvalidArgument   = &AppError{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrNotFound          = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrInvalidProfile    = &AppError{Code: CodeInvalidProfile, Message: "invalid profile"}
	ErrNoCandidates      = &AppError{Code: CodeNoCandidates, Message: "no candidates"}
	ErrInvalidTransition = &AppError{Code: CodeInvalidTransition, Message: "invalid transition"}
	ErrUnauthorized      = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrDeliveryFailure   = &AppError{Code: CodeDeliveryFailure, Message: "delivery failure"}
	ErrDimensionMismatch = &AppError{Code: CodeDimensionMismatch, Message: "dimension mismatch"}
)

func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func NotFound(msg string) error { return New(CodeNotFound, msg) }

func InvalidProfile(msg string) error { return New(CodeInvalidProfile, msg) }

func NoCandidates(msg string) error { return New(CodeNoCandidates, msg) }

func InvalidTransition(format string, args ...any) error {
	return New(CodeInvalidTransition, fmt.Sprintf(format, args...))
}

func Unauthorized(msg string) error { return New(CodeUnauthorized, msg) }

func DeliveryFailure(cause error) error {
	return Wrap(CodeDeliveryFailure, "message delivery failed", cause)
}

func DimensionMismatch(a, b int) error {
	return New(CodeDimensionMismatch, fmt.Sprintf("embedding dimensions differ: %d vs %d", a, b))
}

// CodeOf extracts the taxonomy code of err, or CodeInternal when err is not
// an AppError.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
