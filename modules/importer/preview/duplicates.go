package preview

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ExistingRequestFinder is the persistence collaborator for the presence
// check. memberID takes precedence when non-zero, otherwise the PIN scopes
// the lookup.
type ExistingRequestFinder interface {
	Exists(ctx context.Context, calendarID uuid.UUID, requestDate time.Time, memberID uuid.UUID, pinNumber int) (bool, error)
}

// DuplicateChecker flags candidates that already have a persisted request
// for the same calendar and date. It is a presence check only; field-level
// diffing belongs to conflict reconciliation.
type DuplicateChecker struct {
	finder ExistingRequestFinder
	strict bool
	log    *logrus.Logger
}

// NewDuplicateChecker builds a checker. With strict false, a lookup error is
// logged and treated as "no duplicate" so a transient read failure cannot
// block an import; strict true propagates the error instead.
func NewDuplicateChecker(finder ExistingRequestFinder, strict bool, log *logrus.Logger) *DuplicateChecker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DuplicateChecker{finder: finder, strict: strict, log: log}
}

func (c *DuplicateChecker) IsDuplicate(ctx context.Context, calendarID uuid.UUID, requestDate time.Time, memberID uuid.UUID, pinNumber int) (bool, error) {
	exists, err := c.finder.Exists(ctx, calendarID, requestDate, memberID, pinNumber)
	if err != nil {
		if c.strict {
			return false, err
		}
		c.log.WithError(err).Warn("preview: duplicate lookup failed, assuming no duplicate")
		return false, nil
	}
	return exists, nil
}
