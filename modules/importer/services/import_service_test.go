package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	importerservices "github.com/unionhall/leavehub/modules/importer/services"
	"github.com/unionhall/leavehub/modules/importer/staged"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
	"github.com/unionhall/leavehub/modules/leave/domain/entities/calendar"
	"github.com/unionhall/leavehub/modules/roster/domain/aggregates/member"
	rosterservices "github.com/unionhall/leavehub/modules/roster/services"
	"github.com/unionhall/leavehub/pkg/composables"
	"github.com/unionhall/leavehub/pkg/eventbus"
)

const fixtureCalendar = "BEGIN:VCALENDAR\r\n" +
	"BEGIN:VEVENT\r\nSUMMARY:Smith, John PLD\r\nDTSTART:20250614\r\nEND:VEVENT\r\n" +
	"BEGIN:VEVENT\r\nSUMMARY:Nobody SDV\r\nDTSTART:20250615\r\nEND:VEVENT\r\n" +
	"BEGIN:VEVENT\r\nSUMMARY:Jones PLD\r\nDTSTART:20240601\r\nEND:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

type stubRequestRepo struct {
	request.Repository
	existing []*request.LeaveRequest
}

func (s *stubRequestRepo) GetByFilters(_ context.Context, _ *request.FindParams) ([]*request.LeaveRequest, error) {
	return s.existing, nil
}

func (s *stubRequestRepo) Exists(_ context.Context, _ uuid.UUID, _ time.Time, _ uuid.UUID, _ int) (bool, error) {
	return false, nil
}

func (s *stubRequestRepo) CountByStatus(_ context.Context, _ uuid.UUID, _ time.Time, _ request.Status) (int, error) {
	return 0, nil
}

type stubCalendarRepo struct {
	calendar.Repository
	cal *calendar.Calendar
}

func (s *stubCalendarRepo) GetByID(_ context.Context, _ uuid.UUID) (*calendar.Calendar, error) {
	return s.cal, nil
}

func (s *stubCalendarRepo) AllotmentFor(_ context.Context, _ uuid.UUID, _ time.Time) (int, error) {
	return s.cal.DefaultAllotment(), nil
}

type stubMemberRepo struct {
	member.Repository
	members []*member.Member
}

func (s *stubMemberRepo) GetByDivision(_ context.Context, _ uuid.UUID) ([]*member.Member, error) {
	return s.members, nil
}

func (s *stubMemberRepo) GetByID(_ context.Context, id uuid.UUID) (*member.Member, error) {
	for _, m := range s.members {
		if m.ID() == id {
			return m, nil
		}
	}
	return nil, assert.AnError
}

type stubChangeApplier struct{}

func (s *stubChangeApplier) ApplyQueuedChanges(_ context.Context, _ []staged.QueuedChange) error {
	return nil
}

// fakeTx satisfies pgx.Tx so transactional helpers join it instead of
// reaching for a real pool; the stub repositories never touch it.
type fakeTx struct{ pgx.Tx }

func adminCtx() context.Context {
	ctx := composables.WithTx(context.Background(), fakeTx{})
	return composables.WithAdmin(ctx, &composables.Admin{ID: uuid.New(), Name: "tester"})
}

func newService(t *testing.T) (*importerservices.ImportService, *member.Member, uuid.UUID) {
	t.Helper()
	smith := member.New(101, "John", "Smith")
	memberRepo := &stubMemberRepo{members: []*member.Member{smith}}
	bus := eventbus.NewEventPublisher(nil)
	roster := rosterservices.NewMemberService(memberRepo, bus)

	cal := calendar.New("2025 PLD/SDV", 2025)
	svc := importerservices.NewImportService(
		&stubRequestRepo{},
		&stubCalendarRepo{cal: cal},
		memberRepo,
		roster,
		&stubChangeApplier{},
		bus,
		nil,
	)
	return svc, smith, cal.ID()
}

func TestStartSession_BuildsPreview(t *testing.T) {
	svc, _, calID := newService(t)

	session, err := svc.StartSession(adminCtx(), calID, fixtureCalendar)
	require.NoError(t, err)

	p := session.Preview
	require.Len(t, p.Items, 2, "the 2024 entry is filtered out")
	assert.Equal(t, staged.StageUnmatched, p.CurrentStage)
	assert.Equal(t, 2025, session.TargetYear)
	assert.Equal(t, "tester", session.CreatedBy)

	unmatched := p.UnmatchedItems()
	require.Len(t, unmatched, 1)
	assert.Equal(t, "Nobody", unmatched[0].Candidate.LastName)
}

func TestStartSession_RequiresAdmin(t *testing.T) {
	svc, _, calID := newService(t)
	_, err := svc.StartSession(context.Background(), calID, fixtureCalendar)
	assert.Error(t, err)
}

func TestStageOperations_ReplaceThePreview(t *testing.T) {
	svc, smith, calID := newService(t)
	session, err := svc.StartSession(adminCtx(), calID, fixtureCalendar)
	require.NoError(t, err)

	unmatched := session.Preview.UnmatchedItems()
	require.Len(t, unmatched, 1)

	p, err := svc.AssignMember(session.ID, unmatched[0].ID, smith.ID())
	require.NoError(t, err)
	assert.True(t, p.UnmatchedComplete())

	p, err = svc.Advance(session.ID)
	require.NoError(t, err)
	// No conflicts against an empty store: reconciliation auto-advances.
	assert.Equal(t, staged.StageOverAllotment, p.CurrentStage)

	p, err = svc.AcknowledgeOverAllotment(session.ID)
	require.NoError(t, err)
	p, err = svc.Advance(session.ID)
	require.NoError(t, err)
	assert.Equal(t, staged.StageFinalReview, p.CurrentStage)

	p, err = svc.ConfirmFinalReview(session.ID)
	require.NoError(t, err)
	assert.NotNil(t, p.FinalReview.ConfirmedAt)

	stored, err := svc.Session(session.ID)
	require.NoError(t, err)
	assert.Same(t, p, stored.Preview, "the session holds the latest snapshot")
}

func TestSessionLifecycle(t *testing.T) {
	svc, _, calID := newService(t)
	session, err := svc.StartSession(adminCtx(), calID, fixtureCalendar)
	require.NoError(t, err)

	_, err = svc.Session(session.ID)
	require.NoError(t, err)

	svc.CancelSession(session.ID)
	_, err = svc.Session(session.ID)
	assert.ErrorIs(t, err, importerservices.ErrSessionNotFound)

	_, err = svc.Session(uuid.New())
	assert.ErrorIs(t, err, importerservices.ErrSessionNotFound)
}
