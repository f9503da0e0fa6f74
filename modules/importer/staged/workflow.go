package staged

import (
	"time"

	"github.com/google/uuid"

	"github.com/unionhall/leavehub/modules/importer/matching"
	"github.com/unionhall/leavehub/modules/importer/preview"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
	"github.com/unionhall/leavehub/pkg/serrors"
)

var (
	ErrItemNotFound       = serrors.NewError("IMPORT_ITEM_NOT_FOUND", "preview item not found", "")
	ErrItemMatched        = serrors.NewError("IMPORT_ITEM_MATCHED", "item is already matched", "")
	ErrWrongStage         = serrors.NewError("IMPORT_WRONG_STAGE", "operation not valid in the current stage", "")
	ErrStageIncomplete    = serrors.NewError("IMPORT_STAGE_INCOMPLETE", "stage completion predicate not satisfied", "resolve or skip the remaining items")
	ErrConflictNotFound   = serrors.NewError("IMPORT_CONFLICT_NOT_FOUND", "conflict not found", "")
	ErrInvalidAction      = serrors.NewError("IMPORT_INVALID_ACTION", "unknown conflict resolution action", "")
	ErrAlreadyFinal       = serrors.NewError("IMPORT_ALREADY_FINAL", "preview already reached final review", "")
	ErrBackwardNotAllowed = serrors.NewError("IMPORT_BACKWARD_NOT_ALLOWED", "backward transition only allowed from db_reconciliation completion", "")
)

// Preview is the workflow's root aggregate. Every state-changing operation
// returns a fresh copy; callers replace their reference wholesale and must
// never mutate the nested maps of a Preview they did not just receive.
type Preview struct {
	Items           []preview.Item
	CurrentStage    Stage
	CompletedStages []Stage
	Unmatched       UnmatchedData
	Reconciliation  ReconciliationData
	OverAllotment   OverAllotmentData
	FinalReview     FinalReviewData
	LastUpdated     time.Time
}

// NewPreview starts a session at the unmatched stage. Conflicts and
// over-allotment analyses are computed up front by the orchestrator so stage
// predicates stay pure functions of the snapshot.
func NewPreview(items []preview.Item, conflicts []Conflict, analyses []DateAnalysis) *Preview {
	return &Preview{
		Items:           items,
		CurrentStage:    StageUnmatched,
		CompletedStages: make([]Stage, 0, len(stageOrder)),
		Unmatched: UnmatchedData{
			Assignments: make(map[uuid.UUID]uuid.UUID),
			Skipped:     make(map[uuid.UUID]struct{}),
		},
		Reconciliation: ReconciliationData{
			Conflicts:     conflicts,
			Reviewed:      make(map[uuid.UUID]struct{}),
			QueuedChanges: make([]QueuedChange, 0),
		},
		OverAllotment: OverAllotmentData{Analyses: analyses},
		LastUpdated:   time.Now(),
	}
}

// clone produces a deep enough copy that mutating the copy's collections
// cannot leak into the original.
func (p *Preview) clone() *Preview {
	next := &Preview{
		Items:           p.Items,
		CurrentStage:    p.CurrentStage,
		CompletedStages: append([]Stage(nil), p.CompletedStages...),
		Unmatched: UnmatchedData{
			Assignments: make(map[uuid.UUID]uuid.UUID, len(p.Unmatched.Assignments)),
			Skipped:     make(map[uuid.UUID]struct{}, len(p.Unmatched.Skipped)),
		},
		Reconciliation: ReconciliationData{
			Conflicts:     p.Reconciliation.Conflicts,
			Reviewed:      make(map[uuid.UUID]struct{}, len(p.Reconciliation.Reviewed)),
			QueuedChanges: append([]QueuedChange(nil), p.Reconciliation.QueuedChanges...),
			IsComplete:    p.Reconciliation.IsComplete,
		},
		OverAllotment: OverAllotmentData{
			Analyses:   append([]DateAnalysis(nil), p.OverAllotment.Analyses...),
			IsComplete: p.OverAllotment.IsComplete,
		},
		FinalReview: p.FinalReview,
		LastUpdated: time.Now(),
	}
	for k, v := range p.Unmatched.Assignments {
		next.Unmatched.Assignments[k] = v
	}
	for k := range p.Unmatched.Skipped {
		next.Unmatched.Skipped[k] = struct{}{}
	}
	for k := range p.Reconciliation.Reviewed {
		next.Reconciliation.Reviewed[k] = struct{}{}
	}
	return next
}

func (p *Preview) item(itemID uuid.UUID) (preview.Item, bool) {
	for _, it := range p.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return preview.Item{}, false
}

// UnmatchedItems returns the items still requiring a human decision.
func (p *Preview) UnmatchedItems() []preview.Item {
	out := make([]preview.Item, 0)
	for _, it := range p.Items {
		if it.Match.Status != matching.StatusMatched {
			out = append(out, it)
		}
	}
	return out
}

// AssignMember resolves one unmatched item to a roster member.
func (p *Preview) AssignMember(itemID, memberID uuid.UUID) (*Preview, error) {
	if p.CurrentStage != StageUnmatched {
		return nil, ErrWrongStage
	}
	it, ok := p.item(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}
	if it.Match.Status == matching.StatusMatched {
		return nil, ErrItemMatched
	}
	next := p.clone()
	next.Unmatched.Assignments[itemID] = memberID
	delete(next.Unmatched.Skipped, itemID)
	return next, nil
}

// SkipItem excludes one unmatched item from the import.
func (p *Preview) SkipItem(itemID uuid.UUID) (*Preview, error) {
	if p.CurrentStage != StageUnmatched {
		return nil, ErrWrongStage
	}
	it, ok := p.item(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}
	if it.Match.Status == matching.StatusMatched {
		return nil, ErrItemMatched
	}
	next := p.clone()
	next.Unmatched.Skipped[itemID] = struct{}{}
	delete(next.Unmatched.Assignments, itemID)
	return next, nil
}

// UnmatchedComplete holds when every unmatched item has been either assigned
// or skipped. Pure; safe to re-evaluate on every state change.
func (p *Preview) UnmatchedComplete() bool {
	for _, it := range p.UnmatchedItems() {
		if _, ok := p.Unmatched.Assignments[it.ID]; ok {
			continue
		}
		if _, ok := p.Unmatched.Skipped[it.ID]; ok {
			continue
		}
		return false
	}
	return true
}

// ReconciliationComplete holds when every conflict's database request has a
// recorded review.
func (p *Preview) ReconciliationComplete() bool {
	for _, c := range p.Reconciliation.Conflicts {
		if _, ok := p.Reconciliation.Reviewed[c.DBRequest.ID()]; !ok {
			return false
		}
	}
	return true
}

// StageComplete evaluates the completion predicate of the given stage
// against the current snapshot.
func (p *Preview) StageComplete(stage Stage) bool {
	switch stage {
	case StageUnmatched:
		return p.UnmatchedComplete()
	case StageDBReconciliation:
		return p.ReconciliationComplete()
	case StageOverAllotment:
		return p.OverAllotment.IsComplete
	case StageFinalReview:
		return p.FinalReview.ConfirmedAt != nil
	}
	return false
}

func (p *Preview) stageCompleted(stage Stage) bool {
	for _, s := range p.CompletedStages {
		if s == stage {
			return true
		}
	}
	return false
}

// Advance moves to the next stage once the current stage's predicate holds.
// A conflict-free reconciliation stage auto-advances without interaction.
func (p *Preview) Advance() (*Preview, error) {
	idx := stageIndex(p.CurrentStage)
	if idx == len(stageOrder)-1 {
		return nil, ErrAlreadyFinal
	}
	if !p.StageComplete(p.CurrentStage) {
		return nil, ErrStageIncomplete
	}

	next := p.clone()
	if !next.stageCompleted(p.CurrentStage) {
		next.CompletedStages = append(next.CompletedStages, p.CurrentStage)
	}
	next.CurrentStage = stageOrder[idx+1]

	if next.CurrentStage == StageDBReconciliation && len(next.Reconciliation.Conflicts) == 0 {
		next.Reconciliation.IsComplete = true
		next.CompletedStages = append(next.CompletedStages, StageDBReconciliation)
		next.CurrentStage = StageOverAllotment
	}
	return next, nil
}

// ResolveConflict records an admin decision for one conflict. keep marks the
// conflict reviewed with no database effect; any other action also queues a
// status change for commit time.
func (p *Preview) ResolveConflict(dbRequestID uuid.UUID, action ResolutionAction, adminReason string) (*Preview, error) {
	if p.CurrentStage != StageDBReconciliation {
		return nil, ErrWrongStage
	}
	if !action.IsValid() {
		return nil, ErrInvalidAction
	}
	var conflict *Conflict
	for i := range p.Reconciliation.Conflicts {
		if p.Reconciliation.Conflicts[i].DBRequest.ID() == dbRequestID {
			conflict = &p.Reconciliation.Conflicts[i]
			break
		}
	}
	if conflict == nil {
		return nil, ErrConflictNotFound
	}

	next := p.clone()
	next.Reconciliation.Reviewed[dbRequestID] = struct{}{}
	if action != ActionKeep {
		next.Reconciliation.QueuedChanges = append(next.Reconciliation.QueuedChanges, QueuedChange{
			RequestID:     dbRequestID,
			CurrentStatus: conflict.DBRequest.Status(),
			NewStatus:     action.targetStatus(),
			MemberID:      conflict.DBRequest.MemberID(),
			PINNumber:     conflict.DBRequest.PINNumber(),
			RequestDate:   conflict.DBRequest.RequestDate(),
			LeaveType:     conflict.DBRequest.LeaveType(),
			AdminReason:   adminReason,
			Timestamp:     time.Now(),
		})
	}
	if next.ReconciliationComplete() {
		next.Reconciliation.IsComplete = true
	}
	return next, nil
}

// CapacityImpact reports the request dates whose over-allotment analysis is
// affected by the queued changes. Pure; used after reconciliation completes
// to decide whether the admin should revisit the over-allotment stage.
func (p *Preview) CapacityImpact() []time.Time {
	affected := make([]time.Time, 0)
	for _, a := range p.OverAllotment.Analyses {
		for _, ch := range p.Reconciliation.QueuedChanges {
			if !sameDay(a.RequestDate, ch.RequestDate) {
				continue
			}
			// Only transitions into or out of approved move capacity.
			if ch.CurrentStatus == ch.NewStatus {
				continue
			}
			if ch.CurrentStatus == request.StatusApproved || ch.NewStatus == request.StatusApproved {
				affected = append(affected, a.RequestDate)
				break
			}
		}
	}
	return affected
}

// ReturnToOverAllotment is the one sanctioned backward transition: it
// removes db_reconciliation and final_review from the completed set, resets
// the over-allotment completion flag, and points the stage cursor back.
// The whole aggregate is replaced in one step.
func (p *Preview) ReturnToOverAllotment() (*Preview, error) {
	if p.CurrentStage != StageDBReconciliation && p.CurrentStage != StageFinalReview {
		return nil, ErrBackwardNotAllowed
	}
	if !p.ReconciliationComplete() {
		return nil, ErrStageIncomplete
	}

	next := p.clone()
	kept := make([]Stage, 0, len(next.CompletedStages))
	for _, s := range next.CompletedStages {
		if s == StageDBReconciliation || s == StageFinalReview {
			continue
		}
		kept = append(kept, s)
	}
	next.CompletedStages = kept
	next.CurrentStage = StageOverAllotment
	next.OverAllotment.IsComplete = false
	next.FinalReview.ConfirmedAt = nil
	return next, nil
}

// ProceedToFinalReview completes reconciliation ignoring any capacity
// impact, acknowledges the over-allotment analysis, and lands on the
// terminal review gate.
func (p *Preview) ProceedToFinalReview() (*Preview, error) {
	if p.CurrentStage != StageDBReconciliation && p.CurrentStage != StageOverAllotment {
		return nil, ErrWrongStage
	}
	if p.CurrentStage == StageDBReconciliation && !p.ReconciliationComplete() {
		return nil, ErrStageIncomplete
	}

	next := p.clone()
	next.Reconciliation.IsComplete = true
	next.OverAllotment.IsComplete = true
	for _, s := range []Stage{StageUnmatched, StageDBReconciliation, StageOverAllotment} {
		if !next.stageCompleted(s) {
			next.CompletedStages = append(next.CompletedStages, s)
		}
	}
	next.CurrentStage = StageFinalReview
	return next, nil
}

// AcknowledgeOverAllotment marks the capacity analysis as reviewed.
func (p *Preview) AcknowledgeOverAllotment() (*Preview, error) {
	if p.CurrentStage != StageOverAllotment {
		return nil, ErrWrongStage
	}
	next := p.clone()
	next.OverAllotment.IsComplete = true
	return next, nil
}

// ConfirmFinalReview stamps the terminal gate; after this the preview is
// ready for commit.
func (p *Preview) ConfirmFinalReview() (*Preview, error) {
	if p.CurrentStage != StageFinalReview {
		return nil, ErrWrongStage
	}
	next := p.clone()
	now := time.Now()
	next.FinalReview.ConfirmedAt = &now
	if !next.stageCompleted(StageFinalReview) {
		next.CompletedStages = append(next.CompletedStages, StageFinalReview)
	}
	return next, nil
}

func stageIndex(s Stage) int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
