package postgres

import (
	"errors"

	"github.com/lib/pq"

	"github.com/northernchefs/storefront/internal/domain"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// translateError maps constraint violations onto domain errors. A unique
// violation becomes onDuplicate, a missing parent row becomes ErrNotFound.
func translateError(err error, onDuplicate error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case uniqueViolation:
		if onDuplicate != nil {
			return onDuplicate
		}
	case foreignKeyViolation:
		return domain.ErrNotFound
	}
	return err
}
