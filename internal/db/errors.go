package db

import (
	"errors"

	"github.com/lib/pq"
)

// SQLSTATE raised when a row is still referenced, or references nothing.
const codeForeignKeyViolation = "23503"

func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}
