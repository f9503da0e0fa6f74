package services

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/unicode/norm"

	"github.com/unionhall/leavehub/modules/roster/domain/aggregates/member"
	"github.com/unionhall/leavehub/pkg/composables"
	"github.com/unionhall/leavehub/pkg/eventbus"
)

// minLastNameScore is the cut-off below which a roster row is not even worth
// surfacing as a candidate.
const minLastNameScore = 60

type MemberService struct {
	repo      member.Repository
	publisher eventbus.EventBus
}

func NewMemberService(repo member.Repository, publisher eventbus.EventBus) *MemberService {
	return &MemberService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *MemberService) Count(ctx context.Context) (int64, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

func (s *MemberService) GetAll(ctx context.Context) ([]*member.Member, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*member.Member, error) {
		return s.repo.GetAll(txCtx)
	})
}

func (s *MemberService) GetPaginated(ctx context.Context, params *member.FindParams) ([]*member.Member, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*member.Member, error) {
		return s.repo.GetPaginated(txCtx, params)
	})
}

func (s *MemberService) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*member.Member, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *MemberService) GetByPIN(ctx context.Context, pinNumber int) (*member.Member, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*member.Member, error) {
		return s.repo.GetByPIN(txCtx, pinNumber)
	})
}

func (s *MemberService) Create(ctx context.Context, data *member.CreateDTO) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		entity, err := data.ToEntity()
		if err != nil {
			return err
		}
		created, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return err
		}
		ev, err := member.NewCreatedEvent(txCtx, created)
		if err != nil {
			return err
		}
		s.publisher.Publish(ev)
		return nil
	})
}

func (s *MemberService) Update(ctx context.Context, id uuid.UUID, data *member.UpdateDTO) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		entity, err := data.ToEntity(id)
		if err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, entity); err != nil {
			return err
		}
		ev, err := member.NewUpdatedEvent(txCtx, entity)
		if err != nil {
			return err
		}
		s.publisher.Publish(ev)
		return nil
	})
}

func (s *MemberService) Delete(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*member.Member, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return nil, err
		}
		ev, err := member.NewDeletedEvent(txCtx, entity)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return entity, nil
	})
}

// FindMembersByName runs a fuzzy name search over the division-scoped roster
// and returns candidates ranked by confidence. A Nil division searches the
// whole roster. Confidence weighs the last name over the first because legacy
// calendar entries frequently carry no usable first name.
func (s *MemberService) FindMembersByName(ctx context.Context, firstName, lastName string, divisionID uuid.UUID) ([]member.Match, error) {
	roster, err := composables.InTxResult(ctx, func(txCtx context.Context) ([]*member.Member, error) {
		return s.repo.GetByDivision(txCtx, divisionID)
	})
	if err != nil {
		return nil, err
	}
	return RankRoster(roster, firstName, lastName), nil
}

// RankRoster scores every roster member against the queried name and returns
// those that clear the candidate cut-off, best first.
func RankRoster(roster []*member.Member, firstName, lastName string) []member.Match {
	matches := make([]member.Match, 0)
	for _, m := range roster {
		lastScore := nameSimilarity(lastName, m.LastName())
		if lastScore < minLastNameScore && !fuzzy.MatchNormalizedFold(lastName, m.LastName()) {
			continue
		}
		matches = append(matches, member.Match{
			Member:     m,
			Confidence: nameConfidence(firstName, lastScore, m),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

func nameConfidence(queryFirst string, lastScore int, m *member.Member) int {
	if strings.TrimSpace(queryFirst) == "" {
		return lastScore
	}
	firstScore := nameSimilarity(queryFirst, m.FirstName())
	return (lastScore*7 + firstScore*3) / 10
}

// nameSimilarity maps Levenshtein distance between folded names onto 0-100.
func nameSimilarity(a, b string) int {
	a, b = foldName(a), foldName(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	score := 100 - (100*fuzzy.LevenshteinDistance(a, b))/longest
	if score < 0 {
		return 0
	}
	return score
}

// foldName lowercases and strips diacritics so "Muñoz" and "Munoz" compare
// equal.
func foldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
