// Package errors maps internal failures to caller-safe HTTP errors and
// writes the unified error envelope.
package errors

import (
	"context"
	"database/sql/driver"
	stderrors "errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

// MapQueryErrorSecure maps any error returned by the service layer to a
// UserError. Messages are generic; causes, SQL, constraint and column names
// never reach the caller. Invalid page requests keep their reason as details.
func MapQueryErrorSecure(err error) *apperrors.UserError {
	if err == nil {
		return nil
	}

	if userErr, ok := apperrors.GetUserError(err); ok {
		return userErr
	}

	switch {
	case apperrors.IsInvalidPageRequest(err):
		return apperrors.NewUserValidationError(apperrors.ErrCodeInvalidPageParams, "Invalid page request").
			WithDetails(pageRequestReason(err))
	case apperrors.IsMappingFailure(err):
		return &apperrors.UserError{
			Code:       apperrors.ErrCodeMappingFailed,
			Message:    "Failed to build response",
			HTTPStatus: http.StatusInternalServerError,
		}
	case stderrors.Is(err, apperrors.ErrUserNotFound):
		return &apperrors.UserError{
			Code:       apperrors.ErrCodeUserNotFound,
			Message:    "User not found",
			HTTPStatus: http.StatusNotFound,
		}
	case stderrors.Is(err, apperrors.ErrUserAlreadyExists):
		return apperrors.NewUserConflictError(apperrors.ErrCodeUserAlreadyExists, "Username is already taken")
	case stderrors.Is(err, apperrors.ErrCompanyNotFound):
		return apperrors.NewUserValidationError(apperrors.ErrCodeCompanyNotFound, "Company does not exist")
	case isConnectionError(err):
		return &apperrors.UserError{
			Code:       apperrors.ErrCodeConnectionFailed,
			Message:    "Service temporarily unavailable",
			HTTPStatus: http.StatusServiceUnavailable,
		}
	case apperrors.IsQueryExecutionFailure(err):
		return &apperrors.UserError{
			Code:       apperrors.ErrCodeQueryExecutionFailed,
			Message:    "Query execution failed",
			HTTPStatus: http.StatusInternalServerError,
		}
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return apperrors.NewUserValidationError(apperrors.ErrCodeValidationFailed, "Request failed validation")
	}

	return apperrors.NewUserDatabaseError("Database operation failed")
}

// pageRequestReason strips the kind prefix from an invalid page request
func pageRequestReason(err error) string {
	_, reason, _ := strings.Cut(err.Error(), apperrors.ErrInvalidPageRequest.Error()+": ")
	return reason
}

// isConnectionError reports a lost, refused or timed out store connection
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if stderrors.Is(err, context.DeadlineExceeded) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, driver.ErrBadConn) ||
		stderrors.Is(err, syscall.ECONNREFUSED) ||
		stderrors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if stderrors.As(err, &connectErr) || pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgerrcode.IsOperatorIntervention(pgErr.Code) ||
			pgerrcode.IsInsufficientResources(pgErr.Code)
	}

	var netErr net.Error
	return stderrors.As(err, &netErr)
}
