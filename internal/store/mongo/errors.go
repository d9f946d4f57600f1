package mongo

import (
	"errors"
	"fmt"

	"innkeep/internal/store"

	"go.mongodb.org/mongo-driver/mongo"
)

const codeWriteConflict = 112

// mapError translates driver errors into store sentinels, keeping the
// driver error in the chain for logging.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w: %w", op, store.ErrConflict, err)
	case isWriteConflict(err):
		return fmt.Errorf("%s: %w: %w", op, store.ErrBusy, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isWriteConflict(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorCode(codeWriteConflict) || se.HasErrorLabel("TransientTransactionError")
}
