package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/unionhall/leavehub/modules/roster/domain/aggregates/member"
)

type memberRow struct {
	ID         uuid.UUID
	PINNumber  int
	FirstName  string
	LastName   string
	DivisionID pgtype.UUID
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgNullableUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

func asUUID(v pgtype.UUID) uuid.UUID {
	if !v.Valid {
		return uuid.Nil
	}
	return uuid.UUID(v.Bytes)
}

func toDomainMember(row *memberRow) *member.Member {
	return member.New(
		row.PINNumber,
		row.FirstName,
		row.LastName,
		member.WithID(row.ID),
		member.WithDivisionID(asUUID(row.DivisionID)),
		member.WithIsActive(row.IsActive),
		member.WithCreatedAt(row.CreatedAt),
		member.WithUpdatedAt(row.UpdatedAt),
	)
}
