package request

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type CreateDTO struct {
	MemberID    uuid.UUID
	PINNumber   int       `validate:"required,gt=0"`
	CalendarID  uuid.UUID `validate:"required"`
	RequestDate time.Time `validate:"required"`
	LeaveType   Type      `validate:"required,oneof=PLD SDV"`
}

func (d *CreateDTO) ToEntity() (*LeaveRequest, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	return New(
		d.PINNumber,
		d.CalendarID,
		d.RequestDate,
		d.LeaveType,
		WithMemberID(d.MemberID),
	), nil
}
