package member

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Limit      int
	Offset     int
	DivisionID uuid.UUID
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]*Member, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]*Member, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	GetByPIN(ctx context.Context, pinNumber int) (*Member, error)
	// GetByDivision returns active members of a division; a Nil division
	// returns the whole active roster.
	GetByDivision(ctx context.Context, divisionID uuid.UUID) ([]*Member, error)
	Create(ctx context.Context, data *Member) (*Member, error)
	Update(ctx context.Context, data *Member) error
	Delete(ctx context.Context, id uuid.UUID) error
}
