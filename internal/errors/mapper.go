// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Map converts domain/repo/infra errors into gRPC status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}

	switch appErr.Code {
	case CodeInvalidArgument, CodeDimensionMismatch:
		return status.Error(codes.InvalidArgument, appErr.Error())
	case CodeNotFound:
		return status.Error(codes.NotFound, appErr.Error())
	case CodeInvalidProfile, CodeNoCandidates, CodeInvalidTransition:
		// distinct messages let the UI pick the corrective action
		return status.Error(codes.FailedPrecondition, string(appErr.Code)+": "+appErr.Error())
	case CodeUnauthorized:
		return status.Error(codes.PermissionDenied, appErr.Error())
	case CodeDeliveryFailure:
		return status.Error(codes.Unavailable, appErr.Error())
	default:
		return status.Error(codes.Internal, appErr.Error())
	}
}

// HTTPStatus picks the HTTP status for err in the gin handlers.
func HTTPStatus(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	switch CodeOf(err) {
	case CodeInvalidArgument, CodeDimensionMismatch:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidProfile, CodeNoCandidates, CodeInvalidTransition:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeDeliveryFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// BadInput reports invalid caller input on any transport.
func BadInput(msg string) error {
	return New(CodeInvalidArgument, msg)
}

// NotFoundOr turns a missing-record error from the store into a NotFound
// AppError with the given message and returns any other error unchanged.
func NotFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return New(CodeNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
