package commit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
	"github.com/unionhall/leavehub/pkg/composables"
	"github.com/unionhall/leavehub/pkg/serrors"
)

var ErrPositionCollision = serrors.NewError(
	"IMPORT_POSITION_COLLISION",
	"assigned waitlist position already occupied",
	"re-run the preview against current data",
)

// RequestWriter is the persistence surface the engine needs for inserts.
type RequestWriter interface {
	Create(ctx context.Context, data *request.LeaveRequest) (uuid.UUID, error)
	CreateMany(ctx context.Context, data []*request.LeaveRequest) ([]uuid.UUID, error)
}

// PositionReader exposes occupied waitlist positions for one calendar date.
type PositionReader interface {
	WaitlistPositions(ctx context.Context, calendarID uuid.UUID, requestDate time.Time) ([]request.PositionEntry, error)
}

// FailedItem records one row the per-row fallback could not insert; Index is
// the row's position in the prepared slice, stable for retry addressing.
type FailedItem struct {
	Index int
	Error string
}

// Result is the terminal artifact of a commit. InsertedCount plus
// FailedCount always reconciles against the prepared row count.
type Result struct {
	Success       bool
	InsertedCount int
	FailedCount   int
	ErrorMessages []string
	InsertedIDs   []uuid.UUID
	FailedItems   []FailedItem
}

type Engine struct {
	writer    RequestWriter
	positions PositionReader
	log       *logrus.Logger
}

func NewEngine(writer RequestWriter, positions PositionReader, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{writer: writer, positions: positions, log: log}
}

// Commit persists the prepared rows: one bulk insert first, and on any bulk
// failure a sequential per-row fallback that never aborts on a single bad
// row. Each write runs under its own savepoint so a failed statement does
// not poison the enclosing transaction. Rows are inserted in order so
// FailedItem indices map back to the prepared slice.
func (e *Engine) Commit(ctx context.Context, rows []*request.LeaveRequest) *Result {
	if len(rows) == 0 {
		return &Result{Success: false, ErrorMessages: []string{"nothing selected for import"}}
	}

	var ids []uuid.UUID
	err := composables.InSavepoint(ctx, func(spCtx context.Context) error {
		var bulkErr error
		ids, bulkErr = e.writer.CreateMany(spCtx, rows)
		return bulkErr
	})
	if err == nil {
		return &Result{
			Success:       true,
			InsertedCount: len(ids),
			InsertedIDs:   ids,
			ErrorMessages: []string{},
			FailedItems:   []FailedItem{},
		}
	}
	e.log.WithError(err).Warnf("commit: bulk insert of %d rows failed, falling back to per-row", len(rows))

	result := &Result{
		InsertedIDs:   make([]uuid.UUID, 0, len(rows)),
		ErrorMessages: make([]string, 0),
		FailedItems:   make([]FailedItem, 0),
	}
	for i, row := range rows {
		var id uuid.UUID
		rowErr := composables.InSavepoint(ctx, func(spCtx context.Context) error {
			var createErr error
			id, createErr = e.writer.Create(spCtx, row)
			return createErr
		})
		if rowErr != nil {
			e.log.WithError(rowErr).Warnf("commit: row %d failed", i)
			result.FailedCount++
			result.FailedItems = append(result.FailedItems, FailedItem{Index: i, Error: rowErr.Error()})
			result.ErrorMessages = append(result.ErrorMessages, fmt.Sprintf("row %d: %v", i, rowErr))
			continue
		}
		result.InsertedCount++
		result.InsertedIDs = append(result.InsertedIDs, id)
	}
	result.Success = result.InsertedCount > 0
	return result
}

// CommitWithWaitlist assigns queue positions to waitlisted rows and validates
// them before writing. Rows without an explicit position join the end of the
// date's queue; any collision with an occupied position aborts the entire
// batch, since silently renumbering would corrupt the externally visible
// queue order.
func (e *Engine) CommitWithWaitlist(ctx context.Context, rows []*request.LeaveRequest) (*Result, error) {
	type dateKey struct {
		calendarID uuid.UUID
		day        string
	}
	type dateQueue struct {
		taken map[int]struct{}
		max   int
	}
	queues := make(map[dateKey]*dateQueue)

	load := func(row *request.LeaveRequest) (*dateQueue, error) {
		key := dateKey{row.CalendarID(), row.RequestDate().Format("2006-01-02")}
		if q, ok := queues[key]; ok {
			return q, nil
		}
		entries, err := e.positions.WaitlistPositions(ctx, row.CalendarID(), row.RequestDate())
		if err != nil {
			return nil, err
		}
		q := &dateQueue{taken: make(map[int]struct{}, len(entries))}
		for _, entry := range entries {
			q.taken[entry.Position] = struct{}{}
			if entry.Position > q.max {
				q.max = entry.Position
			}
		}
		queues[key] = q
		return q, nil
	}

	for i, row := range rows {
		if row.Status() != request.StatusWaitlisted {
			continue
		}
		q, err := load(row)
		if err != nil {
			return nil, err
		}

		pos := row.WaitlistPosition()
		if pos == nil {
			next := q.max + 1
			row.SetWaitlistPosition(next)
			q.taken[next] = struct{}{}
			q.max = next
			continue
		}

		if _, clash := q.taken[*pos]; clash {
			return nil, serrors.NewError(
				ErrPositionCollision.Code,
				fmt.Sprintf("row %d: waitlist position %d for %s is already occupied", i, *pos, row.RequestDate().Format("2006-01-02")),
				ErrPositionCollision.Hint,
			)
		}
		q.taken[*pos] = struct{}{}
		if *pos > q.max {
			q.max = *pos
		}
	}

	return e.Commit(ctx, rows), nil
}

// PositionIssue is one anomaly found by the consistency audit.
type PositionIssue struct {
	Position   int
	RequestIDs []uuid.UUID
	Kind       string // "gap" or "duplicate"
}

// CheckPositionConsistency scans persisted waitlist positions for one
// calendar date and reports gaps and duplicates. Standalone audit; never
// invoked during a normal commit.
func (e *Engine) CheckPositionConsistency(ctx context.Context, calendarID uuid.UUID, requestDate time.Time) ([]PositionIssue, error) {
	entries, err := e.positions.WaitlistPositions(ctx, calendarID, requestDate)
	if err != nil {
		return nil, err
	}

	byPosition := make(map[int][]uuid.UUID)
	maxPos := 0
	for _, entry := range entries {
		byPosition[entry.Position] = append(byPosition[entry.Position], entry.RequestID)
		if entry.Position > maxPos {
			maxPos = entry.Position
		}
	}

	issues := make([]PositionIssue, 0)
	for pos := 1; pos <= maxPos; pos++ {
		ids, ok := byPosition[pos]
		switch {
		case !ok:
			issues = append(issues, PositionIssue{Position: pos, Kind: "gap"})
		case len(ids) > 1:
			issues = append(issues, PositionIssue{Position: pos, RequestIDs: ids, Kind: "duplicate"})
		}
	}
	return issues, nil
}
