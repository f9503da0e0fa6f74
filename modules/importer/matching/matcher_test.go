package matching_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionhall/leavehub/modules/importer/matching"
	"github.com/unionhall/leavehub/modules/roster/domain/aggregates/member"
)

type stubRoster struct {
	matches []member.Match
	err     error
}

func (s *stubRoster) FindMembersByName(_ context.Context, _, _ string, _ uuid.UUID) ([]member.Match, error) {
	return s.matches, s.err
}

func candidate(first, last string, confidence int) member.Match {
	return member.Match{
		Member:     member.New(1000+confidence, first, last),
		Confidence: confidence,
	}
}

func newMatcher(roster *stubRoster) *matching.Matcher {
	return matching.NewMatcher(roster, matching.DefaultConfig(), nil)
}

func TestMatchMember_NoCandidates(t *testing.T) {
	m := newMatcher(&stubRoster{})
	res := m.MatchMember(context.Background(), "John", "Smith", uuid.Nil)
	assert.Equal(t, matching.StatusUnmatched, res.Status)
}

func TestMatchMember_LookupErrorFailsOpen(t *testing.T) {
	m := newMatcher(&stubRoster{err: assert.AnError})
	res := m.MatchMember(context.Background(), "John", "Smith", uuid.Nil)
	assert.Equal(t, matching.StatusUnmatched, res.Status)
}

func TestMatchMember_SingleExactMatchAlwaysMatches(t *testing.T) {
	// Monotonicity: a lone 100 resolves regardless of name commonality.
	for _, first := range []string{"John", "Zebediah"} {
		m := newMatcher(&stubRoster{matches: []member.Match{candidate(first, "Smith", 100)}})
		res := m.MatchMember(context.Background(), first, "Smith", uuid.Nil)
		require.Equal(t, matching.StatusMatched, res.Status, "first name %q", first)
		assert.Equal(t, 100, res.Confidence)
	}
}

func TestMatchMember_SingleCandidateAnyConfidence(t *testing.T) {
	m := newMatcher(&stubRoster{matches: []member.Match{candidate("John", "Smith", 50)}})
	res := m.MatchMember(context.Background(), "John", "Smith", uuid.Nil)
	require.Equal(t, matching.StatusMatched, res.Status)
	assert.Equal(t, 50, res.Confidence)
}

func TestMatchMember_TierPicksTheSoleHighCandidate(t *testing.T) {
	m := newMatcher(&stubRoster{matches: []member.Match{
		candidate("John", "Smith", 96),
		candidate("Jon", "Smithe", 60),
	}})
	res := m.MatchMember(context.Background(), "John", "Smith", uuid.Nil)
	require.Equal(t, matching.StatusMatched, res.Status)
	assert.Equal(t, "Smith", res.Member.LastName())
}

func TestMatchMember_EqualConfidenceIsAmbiguous(t *testing.T) {
	// Two candidates both at 80 with no exact last-name match: the margin
	// rule cannot fire on a zero difference.
	m := newMatcher(&stubRoster{matches: []member.Match{
		candidate("Aaron", "Smithe", 80),
		candidate("Erin", "Smythe", 80),
	}})
	res := m.MatchMember(context.Background(), "Ann", "Smit", uuid.Nil)
	require.Equal(t, matching.StatusMultipleMatches, res.Status)
	assert.Len(t, res.PossibleMatches, 2)
}

func TestMatchMember_MarginRuleUncommonName(t *testing.T) {
	// 82 vs 50: clears the uncommon floor (80) and margin (25).
	m := newMatcher(&stubRoster{matches: []member.Match{
		candidate("Zeke", "Abernathy", 82),
		candidate("Zeb", "Abernethy", 50),
	}})
	res := m.MatchMember(context.Background(), "Zeke", "Abernath", uuid.Nil)
	require.Equal(t, matching.StatusMatched, res.Status)
	assert.Equal(t, "Abernathy", res.Member.LastName())
}

func TestMatchMember_LeadEqualToMarginStaysAmbiguous(t *testing.T) {
	// The margin is exclusive: 90/65 is exactly a 25-point lead, which does
	// not clear the uncommon margin of 25, and no later rule fires either.
	m := newMatcher(&stubRoster{matches: []member.Match{
		candidate("Yusuf", "Okafor", 90),
		candidate("Yana", "Olowe", 65),
	}})
	res := m.MatchMember(context.Background(), "Zeke", "Abernath", uuid.Nil)
	require.Equal(t, matching.StatusMultipleMatches, res.Status)
	assert.Len(t, res.PossibleMatches, 2)
}

func TestMatchMember_CommonNameNeedsWiderMargin(t *testing.T) {
	// Same 82/50 spread, but "John" is common: floor 85 is not met and the
	// cascade falls through to the exact-last-name rule, which also misses.
	m := newMatcher(&stubRoster{matches: []member.Match{
		candidate("John", "Abernathy", 82),
		candidate("Jon", "Abernethy", 50),
	}})
	res := m.MatchMember(context.Background(), "John", "Abernath", uuid.Nil)
	assert.Equal(t, matching.StatusMultipleMatches, res.Status)
}

func TestMatchMember_NicknameVariant(t *testing.T) {
	m := newMatcher(&stubRoster{matches: []member.Match{
		candidate("Michael", "Garner", 88),
		candidate("Mick", "Gardner", 70),
	}})
	res := m.MatchMember(context.Background(), "Mike", "Garner", uuid.Nil)
	require.Equal(t, matching.StatusMatched, res.Status)
	assert.Equal(t, "Michael", res.Member.FirstName())
}

func TestMatchMember_ExactLastNameAtSeventy(t *testing.T) {
	m := newMatcher(&stubRoster{matches: []member.Match{
		candidate("Jonathan", "Smith", 72),
		candidate("John", "Smythe", 45),
	}})
	res := m.MatchMember(context.Background(), "Johnny", "smith", uuid.Nil)
	require.Equal(t, matching.StatusMatched, res.Status)
	assert.Equal(t, "Smith", res.Member.LastName())
}

func TestMatchMember_MisspelledLastName(t *testing.T) {
	// Doubled consonant: Connor vs Conor.
	m := newMatcher(&stubRoster{matches: []member.Match{
		candidate("Liam", "Connor", 67),
		candidate("Lee", "Cooper", 40),
	}})
	res := m.MatchMember(context.Background(), "Leam", "Conor", uuid.Nil)
	require.Equal(t, matching.StatusMatched, res.Status)
	assert.Equal(t, "Connor", res.Member.LastName())
}

func TestMatchMember_ConfigOverridesAreHonored(t *testing.T) {
	// Loosening the uncommon margin lets the 82/60 spread auto-resolve.
	cfg := matching.DefaultConfig()
	cfg.UncommonNameMargin = 20
	roster := &stubRoster{matches: []member.Match{
		candidate("Zeke", "Abernathy", 82),
		candidate("Zeb", "Abernethy", 60),
	}}

	strict := matching.NewMatcher(roster, matching.DefaultConfig(), nil)
	res := strict.MatchMember(context.Background(), "Zeke", "Abernath", uuid.Nil)
	assert.Equal(t, matching.StatusMultipleMatches, res.Status, "default margin 25 blocks a 22-point lead")

	loose := matching.NewMatcher(roster, cfg, nil)
	res = loose.MatchMember(context.Background(), "Zeke", "Abernath", uuid.Nil)
	assert.Equal(t, matching.StatusMatched, res.Status)
}

func TestMatchMember_BelowAllFloors(t *testing.T) {
	m := newMatcher(&stubRoster{matches: []member.Match{
		candidate("Amy", "Waters", 60),
		candidate("Aimee", "Walters", 55),
	}})
	res := m.MatchMember(context.Background(), "Ann", "Watkins", uuid.Nil)
	require.Equal(t, matching.StatusMultipleMatches, res.Status)
	assert.Len(t, res.PossibleMatches, 2)
}
