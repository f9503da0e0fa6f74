package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/unionhall/leavehub/modules/leave/domain/entities/calendar"
	"github.com/unionhall/leavehub/pkg/composables"
)

var (
	ErrCalendarNotFound = gerrors.New("calendar not found")
)

const selectCalendarFields = `id, name, year, division_id, default_allotment, is_active, created_at, updated_at`

type PgCalendarRepository struct{}

func NewCalendarRepository() calendar.Repository {
	return &PgCalendarRepository{}
}

func (r *PgCalendarRepository) GetByID(ctx context.Context, id uuid.UUID) (*calendar.Calendar, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var row calendarRow
	err = tx.QueryRow(ctx, `
SELECT `+selectCalendarFields+`
FROM calendars
WHERE id = $1
`, pgUUID(id)).Scan(
		&row.ID, &row.Name, &row.Year, &row.DivisionID,
		&row.DefaultAllotment, &row.IsActive, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCalendarNotFound
		}
		return nil, err
	}
	return toDomainCalendar(&row), nil
}

func (r *PgCalendarRepository) GetAll(ctx context.Context) ([]*calendar.Calendar, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+selectCalendarFields+`
FROM calendars
ORDER BY year DESC, name
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*calendar.Calendar, 0)
	for rows.Next() {
		var row calendarRow
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Year, &row.DivisionID,
			&row.DefaultAllotment, &row.IsActive, &row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, toDomainCalendar(&row))
	}
	return out, rows.Err()
}

func (r *PgCalendarRepository) Create(ctx context.Context, data *calendar.Calendar) (*calendar.Calendar, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
INSERT INTO calendars (id, name, year, division_id, default_allotment, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`,
		pgUUID(data.ID()),
		data.Name(),
		data.Year(),
		pgNullableUUID(data.DivisionID()),
		data.DefaultAllotment(),
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create calendar")
	}
	return r.GetByID(ctx, data.ID())
}

func (r *PgCalendarRepository) Update(ctx context.Context, data *calendar.Calendar) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE calendars
SET name = $2,
    year = $3,
    division_id = $4,
    default_allotment = $5,
    is_active = $6,
    updated_at = now()
WHERE id = $1
`,
		pgUUID(data.ID()),
		data.Name(),
		data.Year(),
		pgNullableUUID(data.DivisionID()),
		data.DefaultAllotment(),
		data.IsActive(),
	)
	return err
}

func (r *PgCalendarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM calendars WHERE id = $1`, pgUUID(id))
	return err
}

func (r *PgCalendarRepository) AllotmentFor(ctx context.Context, calendarID uuid.UUID, date time.Time) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var allotment int
	err = tx.QueryRow(ctx, `
SELECT COALESCE(
	(SELECT max_slots FROM calendar_allotments WHERE calendar_id = $1 AND allotment_date = $2),
	(SELECT default_allotment FROM calendars WHERE id = $1)
)
`, pgUUID(calendarID), date).Scan(&allotment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCalendarNotFound
		}
		return 0, err
	}
	return allotment, nil
}

func (r *PgCalendarRepository) SetAllotment(ctx context.Context, calendarID uuid.UUID, date time.Time, maxSlots int) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
INSERT INTO calendar_allotments (calendar_id, allotment_date, max_slots)
VALUES ($1, $2, $3)
ON CONFLICT (calendar_id, allotment_date) DO UPDATE SET max_slots = EXCLUDED.max_slots
`, pgUUID(calendarID), date, maxSlots)
	return err
}
