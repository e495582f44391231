// Package errors provides user-specific error definitions for goUserFilter
// Following unified error response format: {"error": "message", "code": "ERROR_CODE"}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// User-specific error codes
const (
	// Validation errors (400 Bad Request)
	ErrCodeValidationFailed  = "USER_VALIDATION_FAILED"
	ErrCodeUsernameEmpty     = "USER_USERNAME_EMPTY"
	ErrCodeUsernameTooLong   = "USER_USERNAME_TOO_LONG"
	ErrCodeFirstNameTooLong  = "USER_FIRST_NAME_TOO_LONG"
	ErrCodeLastNameTooLong   = "USER_LAST_NAME_TOO_LONG"
	ErrCodeBirthDateInvalid  = "USER_BIRTH_DATE_INVALID"
	ErrCodeRoleInvalid       = "USER_ROLE_INVALID"
	ErrCodeIDInvalid         = "USER_ID_INVALID"
	ErrCodeFilterInvalid     = "USER_FILTER_INVALID"
	ErrCodeInvalidPageParams = "INVALID_PAGE_REQUEST"

	// Database constraint violations (404 / 409)
	ErrCodeUserAlreadyExists = "USER_ALREADY_EXISTS"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeCompanyNotFound   = "COMPANY_NOT_FOUND"

	// Database errors (500 / 503)
	ErrCodeDatabaseError        = "USER_DATABASE_ERROR"
	ErrCodeConnectionFailed     = "SERVICE_UNAVAILABLE"
	ErrCodeQueryExecutionFailed = "QUERY_EXECUTION_FAILED"
	ErrCodeMappingFailed        = "MAPPING_FAILED"
)

// ErrUserNotFound is returned by stores when no user has the requested id
var ErrUserNotFound = errors.New("user not found")

// ErrUserAlreadyExists is returned when a unique attribute (username) is taken
var ErrUserAlreadyExists = errors.New("user already exists")

// ErrCompanyNotFound is returned when a user references a missing company
var ErrCompanyNotFound = errors.New("company not found")

// UserError represents a user-specific error with HTTP status mapping
type UserError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

// Error implements the error interface
func (e *UserError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetails returns a copy of e carrying caller-facing details
func (e *UserError) WithDetails(details string) *UserError {
	c := *e
	c.Details = details
	return &c
}

// NewUserValidationError creates validation errors (400 Bad Request)
func NewUserValidationError(errCode, message string) *UserError {
	return &UserError{
		Code:       errCode,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewUserNotFoundError creates not found errors (404 Not Found)
func NewUserNotFoundError(userID int64) *UserError {
	return &UserError{
		Code:       ErrCodeUserNotFound,
		Message:    fmt.Sprintf("User with ID '%d' not found", userID),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewUserConflictError creates conflict errors (409 Conflict)
func NewUserConflictError(errCode, message string) *UserError {
	return &UserError{
		Code:       errCode,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewUserDatabaseError creates database errors (500 Internal Server Error)
func NewUserDatabaseError(message string) *UserError {
	return &UserError{
		Code:       ErrCodeDatabaseError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// GetHTTPStatus returns the HTTP status code for the error
func (e *UserError) GetHTTPStatus() int {
	return e.HTTPStatus
}

// IsUserError checks if error is a UserError
func IsUserError(err error) bool {
	var userErr *UserError
	return errors.As(err, &userErr)
}

// GetUserError extracts UserError from error
func GetUserError(err error) (*UserError, bool) {
	var userErr *UserError
	ok := errors.As(err, &userErr)
	return userErr, ok
}

// MapValidationError maps validation errors to UserError
func MapValidationError(fieldName, details string) *UserError {
	switch fieldName {
	case "username":
		if details == "required" {
			return NewUserValidationError(ErrCodeUsernameEmpty, "Username cannot be empty")
		}
		return NewUserValidationError(ErrCodeUsernameTooLong, "Username cannot exceed 64 characters")
	case "firstName":
		return NewUserValidationError(ErrCodeFirstNameTooLong, "First name cannot exceed 100 characters")
	case "lastName":
		return NewUserValidationError(ErrCodeLastNameTooLong, "Last name cannot exceed 100 characters")
	case "birthDate":
		return NewUserValidationError(ErrCodeBirthDateInvalid, "Birth date must be in the past")
	case "role":
		return NewUserValidationError(ErrCodeRoleInvalid, "Role must be one of: USER, ADMIN")
	default:
		return NewUserValidationError(ErrCodeValidationFailed, fmt.Sprintf("Validation failed for field: %s", fieldName))
	}
}
