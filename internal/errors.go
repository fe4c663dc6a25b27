package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeState      ErrorType = "STATE_ERROR"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeForbidden  ErrorType = "FORBIDDEN"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidTime      ErrorCode = "INVALID_TIME"
	ErrCodeInvalidDayType   ErrorCode = "INVALID_DAY_TYPE"
	ErrCodeInvalidWeek      ErrorCode = "INVALID_WEEK"
	ErrCodeNegativeHours    ErrorCode = "NEGATIVE_HOURS"

	ErrCodeTimesheetNotFound    ErrorCode = "TIMESHEET_NOT_FOUND"
	ErrCodePayPeriodNotFound    ErrorCode = "PAY_PERIOD_NOT_FOUND"
	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeIllegalTransition    ErrorCode = "ILLEGAL_TRANSITION"
	ErrCodeTimesheetNotEditable ErrorCode = "TIMESHEET_NOT_EDITABLE"
	ErrCodeTimesheetNotOwned    ErrorCode = "TIMESHEET_NOT_OWNED"
	ErrCodePayPeriodOverlap     ErrorCode = "PAY_PERIOD_OVERLAP"
	ErrCodeDuplicateTimesheet   ErrorCode = "DUPLICATE_TIMESHEET"
	ErrCodeSettingsNotFound     ErrorCode = "SETTINGS_NOT_FOUND"
	ErrCodeUnauthorizedAccess   ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeInvalidCredentials   ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken         ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired         ErrorCode = "TOKEN_EXPIRED"
	ErrCodePropagationRejected  ErrorCode = "PROPAGATION_REJECTED"
	ErrCodeSubmissionNotAllowed ErrorCode = "SUBMISSION_NOT_ALLOWED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if violations, ok := e.Details.(ValidationErrors); ok && len(violations.Errors) > 0 {
			return violations.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage joins all field violations into a single message.
func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if violations, ok := e.Details.(ValidationErrors); ok {
			if len(violations.Errors) == 1 {
				return violations.Errors[0].Message
			} else if len(violations.Errors) > 1 {
				messages := make([]string, len(violations.Errors))
				for i, err := range violations.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// ValidationError carries one rule violation with the field it implicates,
// so clients can surface it next to the offending input.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldErrors(message string, fieldErrors []ValidationError) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Details:    ValidationErrors{Errors: fieldErrors},
	}
}

// NewStateError reports an illegal lifecycle transition. The record is left
// exactly as it was.
func NewStateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeState,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrTimesheetNotFound    = NewNotFoundError("timesheet not found", ErrCodeTimesheetNotFound)
	ErrPayPeriodNotFound    = NewNotFoundError("pay period not found", ErrCodePayPeriodNotFound)
	ErrUserNotFound         = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrSettingsNotFound     = NewNotFoundError("timesheet settings not found", ErrCodeSettingsNotFound)
	ErrTimesheetNotOwned    = NewForbiddenError("timesheet belongs to another user", ErrCodeTimesheetNotOwned)
	ErrTimesheetNotEditable = NewStateError("timesheet can no longer be edited", ErrCodeTimesheetNotEditable)
	ErrPayPeriodOverlap     = NewConflictError("pay period overlaps an existing period", ErrCodePayPeriodOverlap)
	ErrDuplicateTimesheet   = NewConflictError("timesheet already exists for this pay period", ErrCodeDuplicateTimesheet)

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrUnauthorizedAccess = NewForbiddenError("insufficient permissions", ErrCodeUnauthorizedAccess)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
