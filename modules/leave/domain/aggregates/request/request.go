package request

import (
	"time"

	"github.com/google/uuid"
)

// Type is the kind of paid leave day a member can claim.
type Type string

const (
	TypePLD Type = "PLD"
	TypeSDV Type = "SDV"
)

func (t Type) IsValid() bool {
	return t == TypePLD || t == TypeSDV
}

type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusWaitlisted  Status = "waitlisted"
	StatusDenied      Status = "denied"
	StatusCancelled   Status = "cancelled"
	StatusTransferred Status = "transferred"
)

// LeaveRequest is one member's claim on one leave day of a calendar. The
// store's triggers own the approve-or-waitlist decision on insert; client
// code records the outcome, it never re-derives it.
type LeaveRequest struct {
	id                  uuid.UUID
	memberID            uuid.UUID
	pinNumber           int
	calendarID          uuid.UUID
	requestDate         time.Time
	leaveType           Type
	status              Status
	waitlistPosition    *int
	originalRequestDate *time.Time
	importedBy          string
	adminReason         *string
	createdAt           time.Time
	updatedAt           time.Time
}

type Option func(*LeaveRequest)

func WithID(id uuid.UUID) Option {
	return func(r *LeaveRequest) {
		r.id = id
	}
}

func WithMemberID(memberID uuid.UUID) Option {
	return func(r *LeaveRequest) {
		r.memberID = memberID
	}
}

func WithStatus(status Status) Option {
	return func(r *LeaveRequest) {
		r.status = status
	}
}

func WithWaitlistPosition(position *int) Option {
	return func(r *LeaveRequest) {
		r.waitlistPosition = position
	}
}

func WithOriginalRequestDate(date *time.Time) Option {
	return func(r *LeaveRequest) {
		r.originalRequestDate = date
	}
}

func WithImportedBy(importedBy string) Option {
	return func(r *LeaveRequest) {
		r.importedBy = importedBy
	}
}

func WithAdminReason(reason *string) Option {
	return func(r *LeaveRequest) {
		r.adminReason = reason
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(r *LeaveRequest) {
		r.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(r *LeaveRequest) {
		r.updatedAt = updatedAt
	}
}

func New(pinNumber int, calendarID uuid.UUID, requestDate time.Time, leaveType Type, opts ...Option) *LeaveRequest {
	r := &LeaveRequest{
		id:          uuid.New(),
		pinNumber:   pinNumber,
		calendarID:  calendarID,
		requestDate: requestDate,
		leaveType:   leaveType,
		status:      StatusPending,
		createdAt:   time.Now(),
		updatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetWaitlistPosition records the queue slot assigned to this request during
// an import commit.
func (r *LeaveRequest) SetWaitlistPosition(position int) {
	p := position
	r.waitlistPosition = &p
	r.updatedAt = time.Now()
}

func (r *LeaveRequest) ID() uuid.UUID {
	return r.id
}

func (r *LeaveRequest) MemberID() uuid.UUID {
	return r.memberID
}

func (r *LeaveRequest) PINNumber() int {
	return r.pinNumber
}

func (r *LeaveRequest) CalendarID() uuid.UUID {
	return r.calendarID
}

func (r *LeaveRequest) RequestDate() time.Time {
	return r.requestDate
}

func (r *LeaveRequest) LeaveType() Type {
	return r.leaveType
}

func (r *LeaveRequest) Status() Status {
	return r.status
}

func (r *LeaveRequest) WaitlistPosition() *int {
	return r.waitlistPosition
}

func (r *LeaveRequest) OriginalRequestDate() *time.Time {
	return r.originalRequestDate
}

func (r *LeaveRequest) ImportedBy() string {
	return r.importedBy
}

func (r *LeaveRequest) AdminReason() *string {
	return r.adminReason
}

func (r *LeaveRequest) CreatedAt() time.Time {
	return r.createdAt
}

func (r *LeaveRequest) UpdatedAt() time.Time {
	return r.updatedAt
}
