package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/unionhall/leavehub/modules/importer/commit"
	"github.com/unionhall/leavehub/pkg/composables"
)

// ImportCommittedEvent fires after a batch commit finishes, including
// partial successes.
type ImportCommittedEvent struct {
	SessionID  uuid.UUID
	CalendarID uuid.UUID
	Admin      composables.Admin
	Result     commit.Result
	Timestamp  time.Time
}

func NewImportCommittedEvent(ctx context.Context, sessionID, calendarID uuid.UUID, result *commit.Result) (*ImportCommittedEvent, error) {
	admin, err := composables.UseAdmin(ctx)
	if err != nil {
		return nil, err
	}
	return &ImportCommittedEvent{
		SessionID:  sessionID,
		CalendarID: calendarID,
		Admin:      *admin,
		Result:     *result,
		Timestamp:  time.Now(),
	}, nil
}

// ImportFailedEvent fires when a commit aborts before any row is written,
// e.g. on a waitlist position collision.
type ImportFailedEvent struct {
	SessionID  uuid.UUID
	CalendarID uuid.UUID
	Reason     string
	Timestamp  time.Time
}

func NewImportFailedEvent(sessionID, calendarID uuid.UUID, reason string) *ImportFailedEvent {
	return &ImportFailedEvent{
		SessionID:  sessionID,
		CalendarID: calendarID,
		Reason:     reason,
		Timestamp:  time.Now(),
	}
}
