package services_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/unionhall/leavehub/modules/importer/commit"
	"github.com/unionhall/leavehub/modules/importer/ical"
	"github.com/unionhall/leavehub/modules/importer/matching"
	"github.com/unionhall/leavehub/modules/importer/preview"
	importerservices "github.com/unionhall/leavehub/modules/importer/services"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
	"github.com/unionhall/leavehub/modules/roster/domain/aggregates/member"
)

func reportItems() []preview.Item {
	smith := member.New(101, "John", "Smith")
	return []preview.Item{
		{
			ID: uuid.New(),
			Candidate: ical.CandidateRequest{
				FirstName: "John", LastName: "Smith",
				LeaveType:   request.TypePLD,
				RequestDate: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
			},
			Match:  matching.Result{Status: matching.StatusMatched, Member: smith, Confidence: 100},
			Status: request.StatusApproved,
		},
		{
			ID: uuid.New(),
			Candidate: ical.CandidateRequest{
				LastName:    "Ford",
				LeaveType:   request.TypeSDV,
				RequestDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			},
			Match:  matching.Result{Status: matching.StatusUnmatched},
			Status: request.StatusApproved,
		},
	}
}

func TestBuildCommitReport_SheetLayout(t *testing.T) {
	svc := importerservices.NewReportService(nil)
	result := &commit.Result{
		Success:       true,
		InsertedCount: 1,
		FailedCount:   1,
		FailedItems:   []commit.FailedItem{{Index: 1, Error: "duplicate key"}},
	}

	data, err := svc.BuildCommitReport(reportItems(), []int{0, 1}, result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"Summary", "Committed", "Failures"}, f.GetSheetList())

	committed, err := f.GetRows("Committed")
	require.NoError(t, err)
	require.Len(t, committed, 2, "header plus the one committed row")
	assert.Equal(t, "Smith", committed[1][1])

	failures, err := f.GetRows("Failures")
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "Ford", failures[1][2])
	assert.Contains(t, failures[1][5], "duplicate key")
}

func TestBuildUnmatchedReport(t *testing.T) {
	svc := importerservices.NewReportService(nil)

	data, err := svc.BuildUnmatchedReport(reportItems())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Unmatched")
	require.NoError(t, err)
	require.Len(t, rows, 2, "only the unmatched item is listed")
	assert.Equal(t, "Ford", rows[1][1])
}
