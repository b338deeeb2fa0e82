package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound               ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized           ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden              ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest             ErrorCode = "BAD_REQUEST"
	ErrCodeConflict               ErrorCode = "CONFLICT"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation             ErrorCode = "VALIDATION_ERROR"
	ErrCodeLifecycleViolation     ErrorCode = "LIFECYCLE_VIOLATION"
	ErrCodeMissingTransitionData  ErrorCode = "MISSING_TRANSITION_DATA"
	ErrCodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"
	ErrCodePayoutCreation         ErrorCode = "PAYOUT_CREATION_ERROR"
	ErrCodeJobNotOpen             ErrorCode = "JOB_NOT_OPEN_FOR_PROPOSALS"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches two AppErrors by code, so sentinel values below keep working
// as errors.Is targets after wrapping.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeLifecycleViolation, ErrCodeMissingTransitionData:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeConcurrentModification, ErrCodeJobNotOpen:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsConcurrentModification(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeConcurrentModification
}

// Code extracts the taxonomy code from an error chain.
func Code(err error) (ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

var (
	ErrJobNotFound            = New(ErrCodeNotFound, "job not found")
	ErrProposalNotFound       = New(ErrCodeNotFound, "proposal not found")
	ErrPayoutNotFound         = New(ErrCodeNotFound, "payout not found")
	ErrUserNotFound           = New(ErrCodeNotFound, "user not found")
	ErrUnauthorized           = New(ErrCodeUnauthorized, "authorization required")
	ErrInvalidCredentials     = New(ErrCodeUnauthorized, "invalid credentials")
	ErrNotOwner               = New(ErrCodeForbidden, "you do not own this resource")
	ErrRoleNotAllowed         = New(ErrCodeForbidden, "role is not allowed to perform this action")
	ErrDuplicateProposal      = New(ErrCodeConflict, "contractor already has an active proposal on this job")
	ErrInvalidWithdrawState   = New(ErrCodeBadRequest, "only pending proposals can be withdrawn")
	ErrConcurrentModification = New(ErrCodeConcurrentModification, "job was modified concurrently, retry with fresh state")
)
