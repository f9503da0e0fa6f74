package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unionhall/leavehub/modules/importer/commit"
	"github.com/unionhall/leavehub/modules/importer/ical"
	"github.com/unionhall/leavehub/modules/importer/matching"
	"github.com/unionhall/leavehub/modules/importer/preview"
	"github.com/unionhall/leavehub/modules/importer/staged"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
	"github.com/unionhall/leavehub/modules/leave/domain/entities/calendar"
	"github.com/unionhall/leavehub/modules/roster/domain/aggregates/member"
	rosterservices "github.com/unionhall/leavehub/modules/roster/services"
	"github.com/unionhall/leavehub/pkg/composables"
	"github.com/unionhall/leavehub/pkg/configuration"
	"github.com/unionhall/leavehub/pkg/eventbus"
	"github.com/unionhall/leavehub/pkg/serrors"
)

var (
	ErrSessionNotFound = serrors.NewError("IMPORT_SESSION_NOT_FOUND", "import session not found", "it may have been committed or cancelled")
	ErrNotConfirmed    = serrors.NewError("IMPORT_NOT_CONFIRMED", "final review has not been confirmed", "")
)

// ImportSession is the per-import state container: created when a calendar
// file is previewed, replaced wholesale on every stage operation, discarded
// after commit or cancellation.
type ImportSession struct {
	ID         uuid.UUID
	CalendarID uuid.UUID
	TargetYear int
	Preview    *staged.Preview
	Warnings   []string
	Skipped    []ical.SkippedEntry
	CreatedBy  string
	CreatedAt  time.Time
}

// QueuedChangeApplier applies reviewed reconciliation decisions to the
// store; the conditional update fails when the row moved underneath the
// session.
type QueuedChangeApplier interface {
	ApplyQueuedChanges(ctx context.Context, changes []staged.QueuedChange) error
}

type ImportService struct {
	requests  request.Repository
	calendars calendar.Repository
	members   member.Repository
	roster    *rosterservices.MemberService
	changes   QueuedChangeApplier
	publisher eventbus.EventBus
	log       *logrus.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*ImportSession
}

func NewImportService(
	requests request.Repository,
	calendars calendar.Repository,
	members member.Repository,
	roster *rosterservices.MemberService,
	changes QueuedChangeApplier,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *ImportService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ImportService{
		requests:  requests,
		calendars: calendars,
		members:   members,
		roster:    roster,
		changes:   changes,
		publisher: publisher,
		log:       log,
		sessions:  make(map[uuid.UUID]*ImportSession),
	}
}

func (s *ImportService) matcherConfig() matching.Config {
	conf := configuration.Use().Import
	cfg := matching.DefaultConfig()
	cfg.CommonNameFloor = conf.CommonNameFloor
	cfg.UncommonNameFloor = conf.UncommonNameFloor
	cfg.CommonNameMargin = conf.CommonNameMargin
	cfg.UncommonNameMargin = conf.UncommonNameMargin
	return cfg
}

// StartSession parses the calendar export, builds the preview, computes the
// conflict list and the over-allotment picture, and stages the workflow at
// the unmatched stage.
func (s *ImportService) StartSession(ctx context.Context, calendarID uuid.UUID, content string) (*ImportSession, error) {
	admin, err := composables.UseAdmin(ctx)
	if err != nil {
		return nil, err
	}
	cal, err := s.calendars.GetByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	parsed := ical.ParseCalendar(content, cal.Year(), s.log)

	matcher := matching.NewMatcher(s.roster, s.matcherConfig(), s.log)
	duplicates := preview.NewDuplicateChecker(s.requests, configuration.Use().Import.StrictDuplicates, s.log)
	builder := preview.NewBuilder(matcher, duplicates, s.log)

	items, warnings := builder.Build(ctx, parsed.Candidates, calendarID, cal.DivisionID())

	existing, err := s.requests.GetByFilters(ctx, &request.FindParams{CalendarID: calendarID})
	if err != nil {
		// Fails open: an unreadable conflict list degrades to "no
		// conflicts", logged and surfaced as a warning.
		s.log.WithError(err).Warn("import: could not load existing requests, skipping conflict detection")
		warnings = append(warnings, "existing requests could not be loaded; database conflicts were not checked")
		existing = nil
	}
	conflicts := staged.DetectConflicts(items, existing)

	analyses, err := s.analyzeCapacity(ctx, cal, items)
	if err != nil {
		s.log.WithError(err).Warn("import: capacity analysis failed, continuing without it")
		warnings = append(warnings, "over-allotment analysis could not be computed")
		analyses = nil
	}

	session := &ImportSession{
		ID:         uuid.New(),
		CalendarID: calendarID,
		TargetYear: cal.Year(),
		Preview:    staged.NewPreview(items, conflicts, analyses),
		Warnings:   warnings,
		Skipped:    parsed.Skipped,
		CreatedBy:  admin.Name,
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.log.Infof("import: session %s started for calendar %s (%d items, %d conflicts, %d warnings)",
		session.ID, cal.Name(), len(items), len(conflicts), len(warnings))
	return session, nil
}

// analyzeCapacity builds one DateAnalysis per distinct request date in the
// preview, comparing the allotment against approved rows already persisted
// plus approved rows the import would add.
func (s *ImportService) analyzeCapacity(ctx context.Context, cal *calendar.Calendar, items []preview.Item) ([]staged.DateAnalysis, error) {
	pendingByDay := make(map[string]int)
	dayDates := make(map[string]time.Time)
	for _, it := range items {
		if it.Status != request.StatusApproved || it.IsPotentialDuplicate {
			continue
		}
		day := it.Candidate.RequestDate.Format("2006-01-02")
		pendingByDay[day]++
		dayDates[day] = it.Candidate.RequestDate
	}

	analyses := make([]staged.DateAnalysis, 0, len(pendingByDay))
	for day, date := range dayDates {
		allotment, err := s.calendars.AllotmentFor(ctx, cal.ID(), date)
		if err != nil {
			return nil, err
		}
		approved, err := s.requests.CountByStatus(ctx, cal.ID(), date, request.StatusApproved)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, staged.DateAnalysis{
			RequestDate:    date,
			Allotment:      allotment,
			ApprovedInDB:   approved,
			PendingImports: pendingByDay[day],
		})
	}
	return analyses, nil
}

func (s *ImportService) Session(sessionID uuid.UUID) (*ImportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *ImportService) CancelSession(sessionID uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// updatePreview applies op to the session's preview and swaps in the
// returned copy. The swap is the only mutation; op itself is pure.
func (s *ImportService) updatePreview(sessionID uuid.UUID, op func(*staged.Preview) (*staged.Preview, error)) (*staged.Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	next, err := op(session.Preview)
	if err != nil {
		return nil, err
	}
	session.Preview = next
	return next, nil
}

func (s *ImportService) AssignMember(sessionID, itemID, memberID uuid.UUID) (*staged.Preview, error) {
	return s.updatePreview(sessionID, func(p *staged.Preview) (*staged.Preview, error) {
		return p.AssignMember(itemID, memberID)
	})
}

func (s *ImportService) SkipItem(sessionID, itemID uuid.UUID) (*staged.Preview, error) {
	return s.updatePreview(sessionID, func(p *staged.Preview) (*staged.Preview, error) {
		return p.SkipItem(itemID)
	})
}

func (s *ImportService) Advance(sessionID uuid.UUID) (*staged.Preview, error) {
	return s.updatePreview(sessionID, func(p *staged.Preview) (*staged.Preview, error) {
		return p.Advance()
	})
}

func (s *ImportService) ResolveConflict(sessionID, dbRequestID uuid.UUID, action staged.ResolutionAction, adminReason string) (*staged.Preview, error) {
	return s.updatePreview(sessionID, func(p *staged.Preview) (*staged.Preview, error) {
		return p.ResolveConflict(dbRequestID, action, adminReason)
	})
}

func (s *ImportService) ReturnToOverAllotment(sessionID uuid.UUID) (*staged.Preview, error) {
	return s.updatePreview(sessionID, func(p *staged.Preview) (*staged.Preview, error) {
		return p.ReturnToOverAllotment()
	})
}

func (s *ImportService) ProceedToFinalReview(sessionID uuid.UUID) (*staged.Preview, error) {
	return s.updatePreview(sessionID, func(p *staged.Preview) (*staged.Preview, error) {
		return p.ProceedToFinalReview()
	})
}

func (s *ImportService) AcknowledgeOverAllotment(sessionID uuid.UUID) (*staged.Preview, error) {
	return s.updatePreview(sessionID, func(p *staged.Preview) (*staged.Preview, error) {
		return p.AcknowledgeOverAllotment()
	})
}

func (s *ImportService) ConfirmFinalReview(sessionID uuid.UUID) (*staged.Preview, error) {
	return s.updatePreview(sessionID, func(p *staged.Preview) (*staged.Preview, error) {
		return p.ConfirmFinalReview()
	})
}

// Commit persists the selected preview items. Queued reconciliation changes
// and the batch insert run in one transaction; the session is discarded on
// success.
func (s *ImportService) Commit(ctx context.Context, sessionID uuid.UUID, selectedIndices []int) (*commit.Result, error) {
	admin, err := composables.UseAdmin(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	p := session.Preview
	if p.FinalReview.ConfirmedAt == nil {
		return nil, ErrNotConfirmed
	}

	assignments, err := s.resolveAssignments(ctx, p)
	if err != nil {
		return nil, err
	}
	rows, err := commit.PrepareImportData(p.Items, selectedIndices, assignments, admin.Name)
	if err != nil {
		return nil, err
	}

	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*commit.Result, error) {
		if err := s.changes.ApplyQueuedChanges(txCtx, p.Reconciliation.QueuedChanges); err != nil {
			return nil, err
		}
		engine := commit.NewEngine(s.requests, s.requests, s.log)
		return engine.CommitWithWaitlist(txCtx, rows)
	})
	if err != nil {
		s.publisher.Publish(NewImportFailedEvent(sessionID, session.CalendarID, err.Error()))
		return nil, err
	}

	if ev, evErr := NewImportCommittedEvent(ctx, sessionID, session.CalendarID, result); evErr == nil {
		s.publisher.Publish(ev)
	}

	if result.Success {
		s.CancelSession(sessionID)
	}
	s.log.Infof("import: session %s committed (%d inserted, %d failed)", sessionID, result.InsertedCount, result.FailedCount)
	return result, nil
}

// resolveAssignments loads the members the admin assigned during the
// unmatched stage, skipping items the admin chose to leave out.
func (s *ImportService) resolveAssignments(ctx context.Context, p *staged.Preview) (map[uuid.UUID]*member.Member, error) {
	out := make(map[uuid.UUID]*member.Member, len(p.Unmatched.Assignments))
	for itemID, memberID := range p.Unmatched.Assignments {
		m, err := s.members.GetByID(ctx, memberID)
		if err != nil {
			return nil, err
		}
		out[itemID] = m
	}
	return out, nil
}

// AuditPositions runs the waitlist consistency check for one calendar date.
func (s *ImportService) AuditPositions(ctx context.Context, calendarID uuid.UUID, requestDate time.Time) ([]commit.PositionIssue, error) {
	engine := commit.NewEngine(s.requests, s.requests, s.log)
	return engine.CheckPositionConsistency(ctx, calendarID, requestDate)
}
