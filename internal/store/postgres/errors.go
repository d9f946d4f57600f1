package postgres

import (
	"errors"
	"fmt"

	"innkeep/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the store translates.
const (
	codeExclusionViolation   = "23P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w: %w", op, store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeExclusionViolation, codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, store.ErrConflict, err)
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%s: %w: %w", op, store.ErrBusy, err)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, store.ErrInUse, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
