package ical_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionhall/leavehub/modules/importer/ical"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
)

func TestParseSummary_SingleTokenIsAlwaysLastName(t *testing.T) {
	for _, summary := range []string{"FORD-SDV", "FORD SDV", "Ford - SDV", "FORD--SDV"} {
		parsed := ical.ParseSummary(summary)
		require.NotNil(t, parsed, "summary %q", summary)
		assert.Empty(t, parsed.FirstName, "summary %q", summary)
		assert.Equal(t, request.TypeSDV, parsed.LeaveType, "summary %q", summary)
		assert.False(t, parsed.IsWaitlisted, "summary %q", summary)
	}
}

func TestParseSummary_FordScenario(t *testing.T) {
	parsed := ical.ParseSummary("FORD-SDV")
	require.NotNil(t, parsed)
	assert.Equal(t, "", parsed.FirstName)
	assert.Equal(t, "FORD", parsed.LastName)
	assert.Equal(t, request.TypeSDV, parsed.LeaveType)
	assert.False(t, parsed.IsWaitlisted)
}

func TestParseSummary_CommaSplitWithDeniedSuffix(t *testing.T) {
	parsed := ical.ParseSummary("Smith, John PLD denied req 3/15")
	require.NotNil(t, parsed)
	assert.Equal(t, "John", parsed.FirstName)
	assert.Equal(t, "Smith", parsed.LastName)
	assert.Equal(t, request.TypePLD, parsed.LeaveType)
	assert.True(t, parsed.IsWaitlisted)
	assert.Equal(t, "3/15", parsed.OriginalMonthDay)
}

func TestParseSummary_FirstLastTwoTokens(t *testing.T) {
	parsed := ical.ParseSummary("John Smith PLD")
	require.NotNil(t, parsed)
	assert.Equal(t, "John", parsed.FirstName)
	assert.Equal(t, "Smith", parsed.LastName)
	assert.Equal(t, request.TypePLD, parsed.LeaveType)
}

func TestParseSummary_InitialAndLastName(t *testing.T) {
	parsed := ical.ParseSummary("J. Smith SDV")
	require.NotNil(t, parsed)
	assert.Equal(t, "J", parsed.FirstName)
	assert.Equal(t, "Smith", parsed.LastName)
	assert.Equal(t, request.TypeSDV, parsed.LeaveType)
}

func TestParseSummary_CaseInsensitiveLeaveType(t *testing.T) {
	parsed := ical.ParseSummary("Jones pld")
	require.NotNil(t, parsed)
	assert.Equal(t, "Jones", parsed.LastName)
	assert.Equal(t, request.TypePLD, parsed.LeaveType)
}

func TestParseSummary_MissingLeaveType(t *testing.T) {
	assert.Nil(t, ical.ParseSummary("Smith, John"))
	assert.Nil(t, ical.ParseSummary("just some note"))
	assert.Nil(t, ical.ParseSummary(""))
}

func TestParseSummary_DeniedSuffixVariants(t *testing.T) {
	parsed := ical.ParseSummary("Jones SDV denied req. 11/2")
	require.NotNil(t, parsed)
	assert.True(t, parsed.IsWaitlisted)
	assert.Equal(t, "11/2", parsed.OriginalMonthDay)
	assert.Equal(t, "Jones", parsed.LastName)

	parsed = ical.ParseSummary("Jones SDV")
	require.NotNil(t, parsed)
	assert.False(t, parsed.IsWaitlisted)
	assert.Empty(t, parsed.OriginalMonthDay)
}

func TestParseSummary_DashNormalization(t *testing.T) {
	parsed := ical.ParseSummary("Smith,   John --- PLD")
	require.NotNil(t, parsed)
	assert.Equal(t, "John", parsed.FirstName)
	assert.Equal(t, "Smith", parsed.LastName)
}

func TestParseSummary_FallbackTokenScan(t *testing.T) {
	// Leave type in the middle of the string; the fixed patterns all miss
	// and the token scan takes over.
	parsed := ical.ParseSummary("PLD John Smith")
	require.NotNil(t, parsed)
	assert.Equal(t, request.TypePLD, parsed.LeaveType)
	assert.Equal(t, "John", parsed.FirstName)
	assert.Equal(t, "Smith", parsed.LastName)
}

func TestParseSummary_FallbackSingleTokenIsLastName(t *testing.T) {
	parsed := ical.ParseSummary("SDV Ford")
	require.NotNil(t, parsed)
	assert.Empty(t, parsed.FirstName)
	assert.Equal(t, "Ford", parsed.LastName)
}
