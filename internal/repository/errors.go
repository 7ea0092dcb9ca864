package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes the service layer cares about. Constraint violations
// raised after a passed application-level check are surfaced to callers as
// the same conflict as a pre-detected one.
const (
	pqUniqueViolation      = "23505"
	pqExclusionViolation   = "23P01"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// IsConstraintConflict reports whether err is a unique or exclusion
// constraint rejection, i.e. the database refused an overlapping or duplicate
// occupation that slipped past the in-transaction check.
func IsConstraintConflict(err error) bool {
	code := pqCode(err)
	return code == pqUniqueViolation || code == pqExclusionViolation
}

// IsSerializationFailure reports whether err means the serializable
// transaction must be retried.
func IsSerializationFailure(err error) bool {
	code := pqCode(err)
	return code == pqSerializationFailure || code == pqDeadlockDetected
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
