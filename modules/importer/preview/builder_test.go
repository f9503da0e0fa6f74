package preview_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionhall/leavehub/modules/importer/ical"
	"github.com/unionhall/leavehub/modules/importer/matching"
	"github.com/unionhall/leavehub/modules/importer/preview"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
	"github.com/unionhall/leavehub/modules/roster/domain/aggregates/member"
)

type stubMatcher struct {
	results map[string]matching.Result
}

func (s *stubMatcher) MatchMember(_ context.Context, _, lastName string, _ uuid.UUID) matching.Result {
	if res, ok := s.results[lastName]; ok {
		return res
	}
	return matching.Result{Status: matching.StatusUnmatched}
}

type stubFinder struct {
	exists map[string]bool
	err    error
	calls  int
}

func (s *stubFinder) Exists(_ context.Context, _ uuid.UUID, requestDate time.Time, _ uuid.UUID, _ int) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.exists[requestDate.Format("2006-01-02")], nil
}

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func candidates() []*ical.CandidateRequest {
	return []*ical.CandidateRequest{
		{LastName: "Smith", FirstName: "John", LeaveType: request.TypePLD, RequestDate: day(1)},
		{LastName: "Ford", LeaveType: request.TypeSDV, RequestDate: day(2), IsWaitlisted: true},
		{LastName: "Unknown", LeaveType: request.TypePLD, RequestDate: day(3)},
	}
}

func matcherFor(t *testing.T) *stubMatcher {
	t.Helper()
	smith := member.New(101, "John", "Smith")
	return &stubMatcher{results: map[string]matching.Result{
		"Smith": {Status: matching.StatusMatched, Member: smith, Confidence: 100},
		"Ford":  {Status: matching.StatusMatched, Member: member.New(102, "Harrison", "Ford"), Confidence: 95},
	}}
}

func TestBuild_ComposesItems(t *testing.T) {
	finder := &stubFinder{exists: map[string]bool{"2025-06-01": true}}
	builder := preview.NewBuilder(matcherFor(t), preview.NewDuplicateChecker(finder, false, nil), nil)

	calendarID := uuid.New()
	items, warnings := builder.Build(context.Background(), candidates(), calendarID, uuid.Nil)
	require.Len(t, items, 3)
	assert.Empty(t, warnings)

	assert.Equal(t, request.StatusApproved, items[0].Status)
	assert.True(t, items[0].IsPotentialDuplicate)
	assert.Equal(t, calendarID, items[0].CalendarID)

	assert.Equal(t, request.StatusWaitlisted, items[1].Status)
	assert.False(t, items[1].IsPotentialDuplicate)

	assert.Equal(t, matching.StatusUnmatched, items[2].Match.Status)
	assert.False(t, items[2].IsPotentialDuplicate, "unmatched items are not duplicate-checked")

	// Stable IDs are assigned at build time.
	assert.NotEqual(t, uuid.Nil, items[0].ID)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestBuild_DuplicateCheckSkippedForUnmatched(t *testing.T) {
	finder := &stubFinder{}
	builder := preview.NewBuilder(matcherFor(t), preview.NewDuplicateChecker(finder, false, nil), nil)

	builder.Build(context.Background(), candidates(), uuid.New(), uuid.Nil)
	assert.Equal(t, 2, finder.calls, "only matched items hit the store")
}

func TestBuild_LookupErrorFailsOpen(t *testing.T) {
	finder := &stubFinder{err: assert.AnError}
	builder := preview.NewBuilder(matcherFor(t), preview.NewDuplicateChecker(finder, false, nil), nil)

	items, warnings := builder.Build(context.Background(), candidates(), uuid.New(), uuid.Nil)
	require.Len(t, items, 3)
	assert.Empty(t, warnings)
	assert.False(t, items[0].IsPotentialDuplicate)
}

func TestBuild_StrictModeDropsFailingItem(t *testing.T) {
	finder := &stubFinder{err: assert.AnError}
	builder := preview.NewBuilder(matcherFor(t), preview.NewDuplicateChecker(finder, true, nil), nil)

	items, warnings := builder.Build(context.Background(), candidates(), uuid.New(), uuid.Nil)
	// The two matched items fail their duplicate lookups and are dropped;
	// the unmatched one never reaches the store.
	require.Len(t, items, 1)
	assert.Len(t, warnings, 2)
	assert.Equal(t, matching.StatusUnmatched, items[0].Match.Status)
}

func TestDuplicateChecker_Idempotent(t *testing.T) {
	finder := &stubFinder{exists: map[string]bool{"2025-06-01": true}}
	checker := preview.NewDuplicateChecker(finder, false, nil)

	first, err := checker.IsDuplicate(context.Background(), uuid.New(), day(1), uuid.New(), 101)
	require.NoError(t, err)
	second, err := checker.IsDuplicate(context.Background(), uuid.New(), day(1), uuid.New(), 101)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, first)
}
