package sqlite

import (
	"errors"
	"fmt"
	"strings"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

// classifyError maps constraint violations on writes to domain errors, like
// the PostgreSQL store does with SQLSTATE codes
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr *sqlitedriver.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		switch constraintCode(sqliteErr) {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w", op, apperrors.ErrUserAlreadyExists)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%s: %w", op, apperrors.ErrCompanyNotFound)
		default:
			return fmt.Errorf("%s: %w", op, apperrors.NewUserValidationError(apperrors.ErrCodeValidationFailed, "Request failed validation"))
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

// constraintCode returns the extended constraint code, falling back to the
// message text when only the primary code was reported
func constraintCode(e *sqlitedriver.Error) int {
	if e.Code() != sqlite3.SQLITE_CONSTRAINT {
		return e.Code()
	}
	msg := e.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return sqlite3.SQLITE_CONSTRAINT_UNIQUE
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return sqlite3.SQLITE_CONSTRAINT
}
