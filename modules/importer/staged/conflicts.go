package staged

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/unionhall/leavehub/modules/importer/matching"
	"github.com/unionhall/leavehub/modules/importer/preview"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
)

// DetectConflicts compares persisted requests against the imported preview
// and reports every disagreement. Pure function; runs once at session start
// so the reconciliation stage works on a fixed conflict list.
func DetectConflicts(items []preview.Item, existing []*request.LeaveRequest) []Conflict {
	conflicts := make([]Conflict, 0)

	for _, db := range existing {
		if db.Status() == request.StatusCancelled || db.Status() == request.StatusDenied {
			continue
		}
		item, found := findItemFor(items, db)
		if !found {
			conflicts = append(conflicts, Conflict{
				ID:          uuid.New(),
				Type:        ConflictMissingFromICal,
				Severity:    SeverityMedium,
				DBRequest:   db,
				MemberID:    db.MemberID(),
				MemberName:  memberNameFor(items, db),
				RequestDate: db.RequestDate(),
				Description: fmt.Sprintf("%s request for %s exists in the database but not in the calendar export",
					db.LeaveType(), db.RequestDate().Format("2006-01-02")),
				SuggestedAction: ActionKeep,
			})
			continue
		}

		if item.Candidate.LeaveType != db.LeaveType() {
			conflicts = append(conflicts, Conflict{
				ID:          uuid.New(),
				Type:        ConflictLeaveTypeConflict,
				Severity:    SeverityHigh,
				DBRequest:   db,
				ICalItem:    item,
				MemberID:    db.MemberID(),
				MemberName:  item.Candidate.FirstName + " " + item.Candidate.LastName,
				RequestDate: db.RequestDate(),
				Description: fmt.Sprintf("database has %s but the calendar shows %s for %s",
					db.LeaveType(), item.Candidate.LeaveType, db.RequestDate().Format("2006-01-02")),
				SuggestedAction: ActionKeep,
			})
			continue
		}

		if item.Status != db.Status() {
			conflicts = append(conflicts, Conflict{
				ID:          uuid.New(),
				Type:        ConflictStatusMismatch,
				Severity:    statusMismatchSeverity(db.Status(), item.Status),
				DBRequest:   db,
				ICalItem:    item,
				MemberID:    db.MemberID(),
				MemberName:  item.Candidate.FirstName + " " + item.Candidate.LastName,
				RequestDate: db.RequestDate(),
				Description: fmt.Sprintf("database status is %s but the calendar shows %s for %s",
					db.Status(), item.Status, db.RequestDate().Format("2006-01-02")),
				SuggestedAction: suggestedFor(item.Status),
			})
		}
	}

	return conflicts
}

func findItemFor(items []preview.Item, db *request.LeaveRequest) (*preview.Item, bool) {
	for i := range items {
		it := &items[i]
		if !sameDay(it.Candidate.RequestDate, db.RequestDate()) {
			continue
		}
		if it.Match.Status == matching.StatusMatched && it.Match.Member.ID() == db.MemberID() {
			return it, true
		}
		if it.Match.Status == matching.StatusMatched && it.Match.Member.PINNumber() == db.PINNumber() {
			return it, true
		}
	}
	return nil, false
}

func memberNameFor(items []preview.Item, db *request.LeaveRequest) string {
	for i := range items {
		it := &items[i]
		if it.Match.Status == matching.StatusMatched && it.Match.Member.ID() == db.MemberID() {
			return it.Match.Member.FullName()
		}
	}
	return fmt.Sprintf("PIN %d", db.PINNumber())
}

// An approved row dropping to waitlisted frees a slot someone may already be
// counting on, so that direction reviews as high severity.
func statusMismatchSeverity(dbStatus, icalStatus request.Status) Severity {
	if dbStatus == request.StatusApproved && icalStatus == request.StatusWaitlisted {
		return SeverityHigh
	}
	return SeverityMedium
}

func suggestedFor(icalStatus request.Status) ResolutionAction {
	if icalStatus == request.StatusWaitlisted {
		return ActionWaitlist
	}
	return ActionApprove
}
