package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

// classifyError maps constraint violations on writes to domain errors. Other
// errors are wrapped with op and keep their cause.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%s: %w", op, apperrors.ErrUserAlreadyExists)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, apperrors.ErrCompanyNotFound)
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.StringDataRightTruncationDataException:
			return fmt.Errorf("%s: %w", op, apperrors.NewUserValidationError(apperrors.ErrCodeValidationFailed, "Request failed validation"))
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}
