package member

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type CreateDTO struct {
	PINNumber  int    `validate:"required,gt=0"`
	FirstName  string `validate:"max=100"`
	LastName   string `validate:"required,max=100"`
	DivisionID uuid.UUID
}

type UpdateDTO struct {
	PINNumber  int    `validate:"required,gt=0"`
	FirstName  string `validate:"max=100"`
	LastName   string `validate:"required,max=100"`
	DivisionID uuid.UUID
	IsActive   bool
}

func (d *CreateDTO) ToEntity() (*Member, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	return New(
		d.PINNumber,
		d.FirstName,
		d.LastName,
		WithDivisionID(d.DivisionID),
	), nil
}

func (d *UpdateDTO) ToEntity(id uuid.UUID) (*Member, error) {
	if err := validate.Struct(d); err != nil {
		return nil, err
	}
	return New(
		d.PINNumber,
		d.FirstName,
		d.LastName,
		WithID(id),
		WithDivisionID(d.DivisionID),
		WithIsActive(d.IsActive),
	), nil
}
