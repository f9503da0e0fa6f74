package staged

import (
	"time"

	"github.com/google/uuid"

	"github.com/unionhall/leavehub/modules/importer/preview"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
)

type Stage string

const (
	StageUnmatched        Stage = "unmatched"
	StageDBReconciliation Stage = "db_reconciliation"
	StageOverAllotment    Stage = "over_allotment"
	StageFinalReview      Stage = "final_review"
)

var stageOrder = []Stage{
	StageUnmatched,
	StageDBReconciliation,
	StageOverAllotment,
	StageFinalReview,
}

type ConflictType string

const (
	ConflictMissingFromICal   ConflictType = "missing_from_ical"
	ConflictStatusMismatch    ConflictType = "status_mismatch"
	ConflictLeaveTypeConflict ConflictType = "leave_type_conflict"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Conflict describes one disagreement between a persisted request and the
// imported calendar. Conflicts are created once during the reconciliation
// fetch and never mutated; resolution is recorded against DBRequest's ID.
type Conflict struct {
	ID              uuid.UUID
	Type            ConflictType
	Severity        Severity
	DBRequest       *request.LeaveRequest
	ICalItem        *preview.Item
	MemberName      string
	MemberID        uuid.UUID
	RequestDate     time.Time
	Description     string
	SuggestedAction ResolutionAction
}

type ResolutionAction string

const (
	ActionKeep     ResolutionAction = "keep"
	ActionCancel   ResolutionAction = "cancel"
	ActionApprove  ResolutionAction = "approve"
	ActionWaitlist ResolutionAction = "waitlist"
	ActionTransfer ResolutionAction = "transfer"
)

func (a ResolutionAction) IsValid() bool {
	switch a {
	case ActionKeep, ActionCancel, ActionApprove, ActionWaitlist, ActionTransfer:
		return true
	}
	return false
}

func (a ResolutionAction) targetStatus() request.Status {
	switch a {
	case ActionCancel:
		return request.StatusCancelled
	case ActionApprove:
		return request.StatusApproved
	case ActionWaitlist:
		return request.StatusWaitlisted
	case ActionTransfer:
		return request.StatusTransferred
	}
	return ""
}

// QueuedChange records an admin decision against a persisted request. It is
// queued during reconciliation and applied only at commit time.
type QueuedChange struct {
	RequestID     uuid.UUID
	CurrentStatus request.Status
	NewStatus     request.Status
	MemberID      uuid.UUID
	PINNumber     int
	RequestDate   time.Time
	LeaveType     request.Type
	AdminReason   string
	Timestamp     time.Time
}

// UnmatchedData holds the unmatched stage's resolution state, keyed by
// preview item ID.
type UnmatchedData struct {
	Assignments map[uuid.UUID]uuid.UUID
	Skipped     map[uuid.UUID]struct{}
}

type ReconciliationData struct {
	Conflicts     []Conflict
	Reviewed      map[uuid.UUID]struct{}
	QueuedChanges []QueuedChange
	IsComplete    bool
}

// DateAnalysis is the capacity picture for one request date: how many slots
// the calendar allots, how many approved requests already occupy them, and
// how many approved rows the import would add.
type DateAnalysis struct {
	RequestDate    time.Time
	Allotment      int
	ApprovedInDB   int
	PendingImports int
}

func (d DateAnalysis) OverBy() int {
	over := d.ApprovedInDB + d.PendingImports - d.Allotment
	if over < 0 {
		return 0
	}
	return over
}

func (d DateAnalysis) IsOverAllotted() bool {
	return d.OverBy() > 0
}

type OverAllotmentData struct {
	Analyses   []DateAnalysis
	IsComplete bool
}

type FinalReviewData struct {
	ConfirmedAt *time.Time
}
