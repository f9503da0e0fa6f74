package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
	"github.com/unionhall/leavehub/modules/leave/domain/entities/calendar"
)

type leaveRequestRow struct {
	ID                  uuid.UUID
	MemberID            pgtype.UUID
	PINNumber           int
	CalendarID          uuid.UUID
	RequestDate         time.Time
	LeaveType           string
	Status              string
	WaitlistPosition    *int32
	OriginalRequestDate pgtype.Date
	ImportedBy          *string
	AdminReason         *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type calendarRow struct {
	ID               uuid.UUID
	Name             string
	Year             int
	DivisionID       pgtype.UUID
	DefaultAllotment int
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
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

func toDomainLeaveRequest(row *leaveRequestRow) *request.LeaveRequest {
	opts := []request.Option{
		request.WithID(row.ID),
		request.WithMemberID(asUUID(row.MemberID)),
		request.WithStatus(request.Status(row.Status)),
		request.WithCreatedAt(row.CreatedAt),
		request.WithUpdatedAt(row.UpdatedAt),
	}
	if row.WaitlistPosition != nil {
		pos := int(*row.WaitlistPosition)
		opts = append(opts, request.WithWaitlistPosition(&pos))
	}
	if row.OriginalRequestDate.Valid {
		orig := row.OriginalRequestDate.Time
		opts = append(opts, request.WithOriginalRequestDate(&orig))
	}
	if row.ImportedBy != nil {
		opts = append(opts, request.WithImportedBy(*row.ImportedBy))
	}
	if row.AdminReason != nil {
		opts = append(opts, request.WithAdminReason(row.AdminReason))
	}
	return request.New(
		row.PINNumber,
		row.CalendarID,
		row.RequestDate,
		request.Type(row.LeaveType),
		opts...,
	)
}

func toDomainCalendar(row *calendarRow) *calendar.Calendar {
	return calendar.New(
		row.Name,
		row.Year,
		calendar.WithID(row.ID),
		calendar.WithDivisionID(asUUID(row.DivisionID)),
		calendar.WithDefaultAllotment(row.DefaultAllotment),
		calendar.WithIsActive(row.IsActive),
		calendar.WithCreatedAt(row.CreatedAt),
		calendar.WithUpdatedAt(row.UpdatedAt),
	)
}
