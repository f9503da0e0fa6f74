package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
	"github.com/unionhall/leavehub/pkg/composables"
)

var (
	ErrLeaveRequestNotFound = gerrors.New("leave request not found")
	ErrStatusConflict       = gerrors.New("leave request status changed concurrently")
)

const selectLeaveRequestFields = `id, member_id, pin_number, calendar_id, request_date, leave_type, status,
	waitlist_position, original_request_date, imported_by, admin_reason, created_at, updated_at`

type PgLeaveRequestRepository struct{}

func NewLeaveRequestRepository() request.Repository {
	return &PgLeaveRequestRepository{}
}

func (r *PgLeaveRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*request.LeaveRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
SELECT `+selectLeaveRequestFields+`
FROM leave_requests
WHERE id = $1
`, pgUUID(id))
	entity, err := scanLeaveRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeaveRequestNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (r *PgLeaveRequestRepository) GetByFilters(ctx context.Context, params *request.FindParams) ([]*request.LeaveRequest, error) {
	if params == nil {
		params = &request.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]string, 0, len(params.Statuses))
	for _, s := range params.Statuses {
		statuses = append(statuses, string(s))
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 500
	}

	rows, err := tx.Query(ctx, `
SELECT `+selectLeaveRequestFields+`
FROM leave_requests
WHERE ($1::uuid IS NULL OR calendar_id = $1)
  AND ($2::date IS NULL OR request_date = $2)
  AND ($3::uuid IS NULL OR member_id = $3)
  AND ($4::int IS NULL OR pin_number = $4)
  AND (cardinality($5::text[]) = 0 OR status = ANY ($5))
ORDER BY request_date, created_at
OFFSET $6 LIMIT $7
`,
		pgNullableUUID(params.CalendarID),
		params.RequestDate,
		pgNullableUUID(params.MemberID),
		nullableInt(params.PINNumber),
		statuses,
		params.Offset,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeaveRequests(rows)
}

func (r *PgLeaveRequestRepository) Exists(ctx context.Context, calendarID uuid.UUID, requestDate time.Time, memberID uuid.UUID, pinNumber int) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM leave_requests
	WHERE calendar_id = $1
	  AND request_date = $2
	  AND (($3::uuid IS NOT NULL AND member_id = $3) OR ($3::uuid IS NULL AND pin_number = $4))
)
`, pgUUID(calendarID), requestDate, pgNullableUUID(memberID), pinNumber).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgLeaveRequestRepository) Create(ctx context.Context, data *request.LeaveRequest) (uuid.UUID, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err = tx.QueryRow(ctx, `
INSERT INTO leave_requests (id, member_id, pin_number, calendar_id, request_date, leave_type, status,
	waitlist_position, original_request_date, imported_by, admin_reason)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id
`,
		pgUUID(data.ID()),
		pgNullableUUID(data.MemberID()),
		data.PINNumber(),
		pgUUID(data.CalendarID()),
		data.RequestDate(),
		string(data.LeaveType()),
		string(data.Status()),
		data.WaitlistPosition(),
		data.OriginalRequestDate(),
		nullableString(data.ImportedBy()),
		data.AdminReason(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, gerrors.Wrap(err, "failed to create leave request")
	}
	return id, nil
}

// CreateMany inserts all rows in one multi-values statement so a single bad
// row fails the whole batch. The import engine relies on that to detect when
// it must retry row by row.
func (r *PgLeaveRequestRepository) CreateMany(ctx context.Context, data []*request.LeaveRequest) ([]uuid.UUID, error) {
	if len(data) == 0 {
		return nil, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for _, item := range data {
		batch.Queue(`
INSERT INTO leave_requests (id, member_id, pin_number, calendar_id, request_date, leave_type, status,
	waitlist_position, original_request_date, imported_by, admin_reason)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`,
			pgUUID(item.ID()),
			pgNullableUUID(item.MemberID()),
			item.PINNumber(),
			pgUUID(item.CalendarID()),
			item.RequestDate(),
			string(item.LeaveType()),
			string(item.Status()),
			item.WaitlistPosition(),
			item.OriginalRequestDate(),
			nullableString(item.ImportedBy()),
			item.AdminReason(),
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer func() {
		_ = results.Close()
	}()

	ids := make([]uuid.UUID, 0, len(data))
	for _, item := range data {
		if _, err := results.Exec(); err != nil {
			return nil, gerrors.Wrap(err, "bulk insert failed")
		}
		ids = append(ids, item.ID())
	}
	return ids, nil
}

func (r *PgLeaveRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next request.Status, adminReason *string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE leave_requests
SET status = $3,
    admin_reason = COALESCE($4, admin_reason),
    updated_at = now()
WHERE id = $1 AND status = $2
`, pgUUID(id), string(expected), string(next), adminReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *PgLeaveRequestRepository) WaitlistPositions(ctx context.Context, calendarID uuid.UUID, requestDate time.Time) ([]request.PositionEntry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT id, waitlist_position
FROM leave_requests
WHERE calendar_id = $1
  AND request_date = $2
  AND status = 'waitlisted'
  AND waitlist_position IS NOT NULL
ORDER BY waitlist_position
`, pgUUID(calendarID), requestDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]request.PositionEntry, 0)
	for rows.Next() {
		var entry request.PositionEntry
		if err := rows.Scan(&entry.RequestID, &entry.Position); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (r *PgLeaveRequestRepository) CountByStatus(ctx context.Context, calendarID uuid.UUID, requestDate time.Time, status request.Status) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	err = tx.QueryRow(ctx, `
SELECT COUNT(*)
FROM leave_requests
WHERE calendar_id = $1 AND request_date = $2 AND status = $3
`, pgUUID(calendarID), requestDate, string(status)).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func nullableInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func scanLeaveRequest(row pgx.Row) (*request.LeaveRequest, error) {
	var m leaveRequestRow
	if err := row.Scan(
		&m.ID,
		&m.MemberID,
		&m.PINNumber,
		&m.CalendarID,
		&m.RequestDate,
		&m.LeaveType,
		&m.Status,
		&m.WaitlistPosition,
		&m.OriginalRequestDate,
		&m.ImportedBy,
		&m.AdminReason,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainLeaveRequest(&m), nil
}

func scanLeaveRequests(rows pgx.Rows) ([]*request.LeaveRequest, error) {
	out := make([]*request.LeaveRequest, 0)
	for rows.Next() {
		var m leaveRequestRow
		if err := rows.Scan(
			&m.ID,
			&m.MemberID,
			&m.PINNumber,
			&m.CalendarID,
			&m.RequestDate,
			&m.LeaveType,
			&m.Status,
			&m.WaitlistPosition,
			&m.OriginalRequestDate,
			&m.ImportedBy,
			&m.AdminReason,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, toDomainLeaveRequest(&m))
	}
	return out, rows.Err()
}
