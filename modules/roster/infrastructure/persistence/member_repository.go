package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/unionhall/leavehub/modules/roster/domain/aggregates/member"
	"github.com/unionhall/leavehub/pkg/composables"
)

var (
	ErrMemberNotFound = gerrors.New("member not found")
)

const (
	selectMemberFields = `id, pin_number, first_name, last_name, division_id, is_active, created_at, updated_at`
)

type PgMemberRepository struct{}

func NewMemberRepository() member.Repository {
	return &PgMemberRepository{}
}

func (r *PgMemberRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM members`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgMemberRepository) GetAll(ctx context.Context) ([]*member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+selectMemberFields+`
FROM members
ORDER BY last_name, first_name
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (r *PgMemberRepository) GetPaginated(ctx context.Context, params *member.FindParams) ([]*member.Member, error) {
	if params == nil {
		params = &member.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := tx.Query(ctx, `
SELECT `+selectMemberFields+`
FROM members
WHERE ($1::uuid IS NULL OR division_id = $1)
ORDER BY last_name, first_name
OFFSET $2 LIMIT $3
`, pgNullableUUID(params.DivisionID), offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (r *PgMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
SELECT `+selectMemberFields+`
FROM members
WHERE id = $1
`, pgUUID(id))
	entity, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (r *PgMemberRepository) GetByPIN(ctx context.Context, pinNumber int) (*member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
SELECT `+selectMemberFields+`
FROM members
WHERE pin_number = $1
`, pinNumber)
	entity, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (r *PgMemberRepository) GetByDivision(ctx context.Context, divisionID uuid.UUID) ([]*member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+selectMemberFields+`
FROM members
WHERE is_active AND ($1::uuid IS NULL OR division_id = $1)
ORDER BY last_name, first_name
`, pgNullableUUID(divisionID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (r *PgMemberRepository) Create(ctx context.Context, data *member.Member) (*member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
INSERT INTO members (id, pin_number, first_name, last_name, division_id, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`,
		pgUUID(data.ID()),
		data.PINNumber(),
		data.FirstName(),
		data.LastName(),
		pgNullableUUID(data.DivisionID()),
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create member")
	}
	return r.GetByID(ctx, data.ID())
}

func (r *PgMemberRepository) Update(ctx context.Context, data *member.Member) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE members
SET pin_number = $2,
    first_name = $3,
    last_name = $4,
    division_id = $5,
    is_active = $6,
    updated_at = now()
WHERE id = $1
`,
		pgUUID(data.ID()),
		data.PINNumber(),
		data.FirstName(),
		data.LastName(),
		pgNullableUUID(data.DivisionID()),
		data.IsActive(),
	)
	return err
}

func (r *PgMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM members WHERE id = $1`, pgUUID(id))
	return err
}

func scanMember(row pgx.Row) (*member.Member, error) {
	var m memberRow
	if err := row.Scan(
		&m.ID,
		&m.PINNumber,
		&m.FirstName,
		&m.LastName,
		&m.DivisionID,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainMember(&m), nil
}

func scanMembers(rows pgx.Rows) ([]*member.Member, error) {
	out := make([]*member.Member, 0)
	for rows.Next() {
		var m memberRow
		if err := rows.Scan(
			&m.ID,
			&m.PINNumber,
			&m.FirstName,
			&m.LastName,
			&m.DivisionID,
			&m.IsActive,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, toDomainMember(&m))
	}
	return out, rows.Err()
}
