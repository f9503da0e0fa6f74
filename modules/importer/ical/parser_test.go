package ical_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionhall/leavehub/modules/importer/ical"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
)

func calendarFixture(events ...string) string {
	var sb strings.Builder
	sb.WriteString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\n")
	for _, ev := range events {
		sb.WriteString("BEGIN:VEVENT\r\n")
		sb.WriteString(ev)
		sb.WriteString("END:VEVENT\r\n")
	}
	sb.WriteString("END:VCALENDAR\r\n")
	return sb.String()
}

func TestParseCalendar_BasicEvent(t *testing.T) {
	content := calendarFixture(
		"SUMMARY:Smith, John PLD\r\nDTSTART;VALUE=DATE:20250614\r\nCREATED:20250101T083000Z\r\n",
	)

	result := ical.ParseCalendar(content, 2025, nil)
	require.Len(t, result.Candidates, 1)
	c := result.Candidates[0]
	assert.Equal(t, "John", c.FirstName)
	assert.Equal(t, "Smith", c.LastName)
	assert.Equal(t, request.TypePLD, c.LeaveType)
	assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), c.RequestDate)
	assert.False(t, c.IsWaitlisted)
	assert.Equal(t, 2025, c.CreatedAt.Year())
}

func TestParseCalendar_TargetYearFilterIsSilent(t *testing.T) {
	content := calendarFixture(
		"SUMMARY:Jones SDV\r\nDTSTART:20240614\r\n",
		"SUMMARY:Ford PLD\r\nDTSTART:20250103\r\n",
	)

	result := ical.ParseCalendar(content, 2025, nil)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "Ford", result.Candidates[0].LastName)
	assert.Empty(t, result.Skipped, "out-of-year entries are dropped, not reported")
}

func TestParseCalendar_FoldedSummaryLine(t *testing.T) {
	content := "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\nSUMMARY:Smith, Jo\r\n hn PLD\r\nDTSTART:20250614\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"

	result := ical.ParseCalendar(content, 2025, nil)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "John", result.Candidates[0].FirstName)
}

func TestParseCalendar_CaseInsensitivePropertyNames(t *testing.T) {
	content := "begin:vcalendar\nbegin:vevent\nsummary:Ford SDV\ndtstart:20250614\nend:vevent\nend:vcalendar\n"

	result := ical.ParseCalendar(content, 2025, nil)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "Ford", result.Candidates[0].LastName)
}

func TestParseCalendar_UnparseableSummaryIsSkipped(t *testing.T) {
	content := calendarFixture(
		"SUMMARY:office closed\r\nDTSTART:20250614\r\n",
		"SUMMARY:Ford PLD\r\nDTSTART:20250615\r\n",
	)

	result := ical.ParseCalendar(content, 2025, nil)
	require.Len(t, result.Candidates, 1)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "office closed", result.Skipped[0].Summary)
}

func TestParseCalendar_MissingDTSTART(t *testing.T) {
	content := calendarFixture("SUMMARY:Ford PLD\r\n")

	result := ical.ParseCalendar(content, 2025, nil)
	assert.Empty(t, result.Candidates)
	require.Len(t, result.Skipped, 1)
}

func TestParseCalendar_OriginalDateFromDeniedSuffix(t *testing.T) {
	content := calendarFixture(
		"SUMMARY:Smith, John PLD denied req 3/15\r\nDTSTART:20250614\r\nCREATED:20250110T090000Z\r\n",
	)

	result := ical.ParseCalendar(content, 2025, nil)
	require.Len(t, result.Candidates, 1)
	c := result.Candidates[0]
	assert.True(t, c.IsWaitlisted)
	require.NotNil(t, c.OriginalRequestDate)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), *c.OriginalRequestDate)
}

func TestParseCalendar_InvalidOriginalDateIsNil(t *testing.T) {
	content := calendarFixture(
		"SUMMARY:Smith, John PLD denied req 2/30\r\nDTSTART:20250614\r\nCREATED:20250110T090000Z\r\n",
	)

	result := ical.ParseCalendar(content, 2025, nil)
	require.Len(t, result.Candidates, 1)
	c := result.Candidates[0]
	assert.True(t, c.IsWaitlisted)
	assert.Nil(t, c.OriginalRequestDate)
}

func TestParseCalendar_DateTimeFormats(t *testing.T) {
	content := calendarFixture(
		"SUMMARY:Ford PLD\r\nDTSTART:20250614T120000Z\r\n",
		"SUMMARY:Jones SDV\r\nDTSTART:20250615T080000\r\n",
	)

	result := ical.ParseCalendar(content, 2025, nil)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, 14, result.Candidates[0].RequestDate.Day())
	assert.Equal(t, 15, result.Candidates[1].RequestDate.Day())
}
