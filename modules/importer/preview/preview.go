package preview

import (
	"time"

	"github.com/google/uuid"

	"github.com/unionhall/leavehub/modules/importer/ical"
	"github.com/unionhall/leavehub/modules/importer/matching"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
)

// Item composes one parsed calendar entry with its match outcome and
// duplicate flag. Items are read-only once built; resolution happens in the
// staged workflow, keyed by ID.
type Item struct {
	ID                   uuid.UUID
	Candidate            ical.CandidateRequest
	Match                matching.Result
	Status               request.Status
	CalendarID           uuid.UUID
	IsPotentialDuplicate bool
	CreatedAt            time.Time
}

func newItem(candidate *ical.CandidateRequest, match matching.Result, calendarID uuid.UUID, duplicate bool) Item {
	status := request.StatusApproved
	if candidate.IsWaitlisted {
		status = request.StatusWaitlisted
	}
	return Item{
		ID:                   uuid.New(),
		Candidate:            *candidate,
		Match:                match,
		Status:               status,
		CalendarID:           calendarID,
		IsPotentialDuplicate: duplicate,
		CreatedAt:            time.Now(),
	}
}
