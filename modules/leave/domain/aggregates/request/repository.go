package request

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type FindParams struct {
	CalendarID  uuid.UUID
	RequestDate *time.Time
	MemberID    uuid.UUID
	PINNumber   int
	Statuses    []Status
	Limit       int
	Offset      int
}

// PositionEntry is one occupied waitlist slot for a calendar date.
type PositionEntry struct {
	RequestID uuid.UUID
	Position  int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	GetByFilters(ctx context.Context, params *FindParams) ([]*LeaveRequest, error)
	// Exists is a presence check scoped to calendar+date and member (by id
	// when known, by PIN otherwise).
	Exists(ctx context.Context, calendarID uuid.UUID, requestDate time.Time, memberID uuid.UUID, pinNumber int) (bool, error)
	Create(ctx context.Context, data *LeaveRequest) (uuid.UUID, error)
	// CreateMany inserts all rows in one statement; all-or-nothing.
	CreateMany(ctx context.Context, data []*LeaveRequest) ([]uuid.UUID, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next Status, adminReason *string) error
	// WaitlistPositions returns occupied positions for (calendar, date) in
	// position order.
	WaitlistPositions(ctx context.Context, calendarID uuid.UUID, requestDate time.Time) ([]PositionEntry, error)
	CountByStatus(ctx context.Context, calendarID uuid.UUID, requestDate time.Time, status Status) (int, error)
}
