package preview

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unionhall/leavehub/modules/importer/ical"
	"github.com/unionhall/leavehub/modules/importer/matching"
)

type memberMatcher interface {
	MatchMember(ctx context.Context, firstName, lastName string, divisionID uuid.UUID) matching.Result
}

// Builder fans parsed candidates out through the matcher and the duplicate
// checker to produce the item list the review workflow runs on.
type Builder struct {
	matcher    memberMatcher
	duplicates *DuplicateChecker
	log        *logrus.Logger
}

func NewBuilder(matcher memberMatcher, duplicates *DuplicateChecker, log *logrus.Logger) *Builder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Builder{matcher: matcher, duplicates: duplicates, log: log}
}

// Build processes candidates in source order. A per-candidate failure is
// logged, recorded as a warning, and that candidate is dropped; the rest of
// the batch proceeds.
func (b *Builder) Build(ctx context.Context, candidates []*ical.CandidateRequest, calendarID, divisionID uuid.UUID) ([]Item, []string) {
	items := make([]Item, 0, len(candidates))
	warnings := make([]string, 0)

	for i, candidate := range candidates {
		item, err := b.buildItem(ctx, candidate, calendarID, divisionID)
		if err != nil {
			b.log.WithError(err).Warnf("preview: dropping entry %d (%s %s on %s)",
				i, candidate.FirstName, candidate.LastName, candidate.RequestDate.Format("2006-01-02"))
			warnings = append(warnings, fmt.Sprintf("entry %d (%s %s, %s): %v",
				i+1, candidate.FirstName, candidate.LastName, candidate.RequestDate.Format("2006-01-02"), err))
			continue
		}
		items = append(items, item)
	}
	return items, warnings
}

func (b *Builder) buildItem(ctx context.Context, candidate *ical.CandidateRequest, calendarID, divisionID uuid.UUID) (Item, error) {
	match := b.matcher.MatchMember(ctx, candidate.FirstName, candidate.LastName, divisionID)

	var memberID uuid.UUID
	pinNumber := 0
	if match.Status == matching.StatusMatched {
		memberID = match.Member.ID()
		pinNumber = match.Member.PINNumber()
	}

	duplicate := false
	if match.Status == matching.StatusMatched {
		var err error
		duplicate, err = b.duplicates.IsDuplicate(ctx, calendarID, candidate.RequestDate, memberID, pinNumber)
		if err != nil {
			return Item{}, err
		}
	}

	return newItem(candidate, match, calendarID, duplicate), nil
}
