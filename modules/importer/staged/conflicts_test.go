package staged_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionhall/leavehub/modules/importer/preview"
	"github.com/unionhall/leavehub/modules/importer/staged"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
	"github.com/unionhall/leavehub/modules/roster/domain/aggregates/member"
)

func itemFor(m *member.Member, d int, leaveType request.Type, status request.Status) preview.Item {
	it := matchedItem(m.LastName(), d)
	it.Match.Member = m
	it.Candidate.LeaveType = leaveType
	it.Status = status
	return it
}

func dbRequestFor(m *member.Member, d int, leaveType request.Type, status request.Status) *request.LeaveRequest {
	return request.New(m.PINNumber(), uuid.New(), day(d), leaveType, request.WithMemberID(m.ID()), request.WithStatus(status))
}

func TestDetectConflicts_MissingFromICal(t *testing.T) {
	m := member.New(101, "John", "Smith")
	db := dbRequestFor(m, 1, request.TypePLD, request.StatusApproved)

	conflicts := staged.DetectConflicts(nil, []*request.LeaveRequest{db})
	require.Len(t, conflicts, 1)
	assert.Equal(t, staged.ConflictMissingFromICal, conflicts[0].Type)
	assert.Equal(t, staged.ActionKeep, conflicts[0].SuggestedAction)
	assert.Same(t, db, conflicts[0].DBRequest)
}

func TestDetectConflicts_NoConflictWhenAligned(t *testing.T) {
	m := member.New(101, "John", "Smith")
	db := dbRequestFor(m, 1, request.TypePLD, request.StatusApproved)
	items := []preview.Item{itemFor(m, 1, request.TypePLD, request.StatusApproved)}

	assert.Empty(t, staged.DetectConflicts(items, []*request.LeaveRequest{db}))
}

func TestDetectConflicts_LeaveTypeConflictIsHighSeverity(t *testing.T) {
	m := member.New(101, "John", "Smith")
	db := dbRequestFor(m, 1, request.TypePLD, request.StatusApproved)
	items := []preview.Item{itemFor(m, 1, request.TypeSDV, request.StatusApproved)}

	conflicts := staged.DetectConflicts(items, []*request.LeaveRequest{db})
	require.Len(t, conflicts, 1)
	assert.Equal(t, staged.ConflictLeaveTypeConflict, conflicts[0].Type)
	assert.Equal(t, staged.SeverityHigh, conflicts[0].Severity)
}

func TestDetectConflicts_StatusMismatch(t *testing.T) {
	m := member.New(101, "John", "Smith")
	db := dbRequestFor(m, 1, request.TypePLD, request.StatusApproved)
	items := []preview.Item{itemFor(m, 1, request.TypePLD, request.StatusWaitlisted)}

	conflicts := staged.DetectConflicts(items, []*request.LeaveRequest{db})
	require.Len(t, conflicts, 1)
	assert.Equal(t, staged.ConflictStatusMismatch, conflicts[0].Type)
	assert.Equal(t, staged.SeverityHigh, conflicts[0].Severity, "approved dropping to waitlisted")
	assert.Equal(t, staged.ActionWaitlist, conflicts[0].SuggestedAction)
}

func TestDetectConflicts_CancelledRowsIgnored(t *testing.T) {
	m := member.New(101, "John", "Smith")
	db := dbRequestFor(m, 1, request.TypePLD, request.StatusCancelled)

	assert.Empty(t, staged.DetectConflicts(nil, []*request.LeaveRequest{db}))
}
