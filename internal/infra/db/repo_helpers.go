package db

import (
	"errors"
	"fmt"

	"roboterms/internal/domain"

	"gorm.io/gorm"
)

var errDBUnavailable = errors.New("db unavailable")

// wrapWriteErr maps driver-level uniqueness violations onto domain.ErrConflict.
func wrapWriteErr(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
