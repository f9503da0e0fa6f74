package matching

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unionhall/leavehub/modules/roster/domain/aggregates/member"
)

type Status string

const (
	StatusMatched         Status = "matched"
	StatusMultipleMatches Status = "multiple_matches"
	StatusUnmatched       Status = "unmatched"
)

// Result is the outcome of one name resolution. Member is set only when
// Status is matched; PossibleMatches only when Status is multiple_matches.
// Confidence is recomputed on every run and never persisted.
type Result struct {
	Status          Status
	Member          *member.Member
	Confidence      int
	PossibleMatches []*member.Member
}

// RosterLookup is the roster search collaborator. A zero divisionID means
// the search is unscoped.
type RosterLookup interface {
	FindMembersByName(ctx context.Context, firstName, lastName string, divisionID uuid.UUID) ([]member.Match, error)
}

// Config carries the cascade's tuned thresholds. The values have no derived
// meaning; they were calibrated against historical rosters, so treat them as
// configuration rather than constants.
type Config struct {
	// SingleCandidateTiers are checked in order; the first tier with
	// exactly one candidate at or above it resolves the match.
	SingleCandidateTiers []int
	CommonNameFloor      int
	UncommonNameFloor    int
	// The margins are exclusive: the top candidate wins only when its
	// lead over the runner-up is strictly greater than the margin, so a
	// lead of exactly CommonNameMargin stays ambiguous.
	CommonNameMargin   int
	UncommonNameMargin int
	NicknameFloor        int
	ExactLastNameFloor   int
	MisspellingFloor     int
}

func DefaultConfig() Config {
	return Config{
		SingleCandidateTiers: []int{100, 95, 92},
		CommonNameFloor:      85,
		UncommonNameFloor:    80,
		CommonNameMargin:     30,
		UncommonNameMargin:   25,
		NicknameFloor:        85,
		ExactLastNameFloor:   70,
		MisspellingFloor:     65,
	}
}

type Matcher struct {
	roster RosterLookup
	config Config
	log    *logrus.Logger
}

func NewMatcher(roster RosterLookup, config Config, log *logrus.Logger) *Matcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Matcher{roster: roster, config: config, log: log}
}

// MatchMember resolves a parsed name against the roster. Lookup failures
// fail open to unmatched so a transient roster error never blocks a batch.
func (m *Matcher) MatchMember(ctx context.Context, firstName, lastName string, divisionID uuid.UUID) Result {
	candidates, err := m.roster.FindMembersByName(ctx, firstName, lastName, divisionID)
	if err != nil {
		m.log.WithError(err).Warnf("matching: roster lookup failed for %q %q, treating as unmatched", firstName, lastName)
		return Result{Status: StatusUnmatched}
	}
	return m.resolve(firstName, lastName, candidates)
}

func (m *Matcher) resolve(firstName, lastName string, candidates []member.Match) Result {
	if len(candidates) == 0 {
		return Result{Status: StatusUnmatched}
	}

	sorted := make([]member.Match, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	for _, tier := range m.config.SingleCandidateTiers {
		if hit, ok := soleCandidateAtOrAbove(sorted, tier); ok {
			return Result{Status: StatusMatched, Member: hit.Member, Confidence: hit.Confidence}
		}
	}

	if len(sorted) == 1 {
		return Result{Status: StatusMatched, Member: sorted[0].Member, Confidence: sorted[0].Confidence}
	}

	top, second := sorted[0], sorted[1]
	floor, margin := m.config.UncommonNameFloor, m.config.UncommonNameMargin
	if isCommonFirstName(firstName) {
		floor, margin = m.config.CommonNameFloor, m.config.CommonNameMargin
	}
	if top.Confidence >= floor && top.Confidence-second.Confidence > margin {
		return Result{Status: StatusMatched, Member: top.Member, Confidence: top.Confidence}
	}

	if top.Confidence >= m.config.NicknameFloor && firstNamesEquivalent(firstName, top.Member.FirstName()) {
		return Result{Status: StatusMatched, Member: top.Member, Confidence: top.Confidence}
	}

	if firstName != "" && lastName != "" &&
		top.Confidence >= m.config.ExactLastNameFloor &&
		strings.EqualFold(lastName, top.Member.LastName()) {
		return Result{Status: StatusMatched, Member: top.Member, Confidence: top.Confidence}
	}

	if top.Confidence >= m.config.MisspellingFloor && lastNamesSimilar(lastName, top.Member.LastName()) {
		return Result{Status: StatusMatched, Member: top.Member, Confidence: top.Confidence}
	}

	possible := make([]*member.Member, 0, len(sorted))
	for _, c := range sorted {
		possible = append(possible, c.Member)
	}
	return Result{Status: StatusMultipleMatches, PossibleMatches: possible}
}

func soleCandidateAtOrAbove(sorted []member.Match, tier int) (member.Match, bool) {
	var hit member.Match
	count := 0
	for _, c := range sorted {
		if c.Confidence >= tier {
			hit = c
			count++
			if count > 1 {
				return member.Match{}, false
			}
		}
	}
	return hit, count == 1
}
