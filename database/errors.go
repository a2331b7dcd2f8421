package database

import (
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation     pq.ErrorCode = "23505"
	foreignKeyViolation pq.ErrorCode = "23503"
	numericOutOfRange   pq.ErrorCode = "22003"
)

// IsUniqueViolation reports whether err was raised by a unique constraint,
// returning the constraint name.
func IsUniqueViolation(err error) (string, bool) {
	return constraintError(err, uniqueViolation)
}

// IsForeignKeyViolation reports whether err was raised by a foreign key,
// returning the constraint name.
func IsForeignKeyViolation(err error) (string, bool) {
	return constraintError(err, foreignKeyViolation)
}

// IsNumericOutOfRange reports whether err was raised by a value that does
// not fit its numeric column.
func IsNumericOutOfRange(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == numericOutOfRange
}

func constraintError(err error, code pq.ErrorCode) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == code {
		return pqErr.Constraint, true
	}
	return "", false
}
