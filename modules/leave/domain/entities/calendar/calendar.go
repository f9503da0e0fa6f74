package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Calendar is one year's leave calendar for a division. Daily capacity
// defaults to DefaultAllotment and can be overridden per date.
type Calendar struct {
	id               uuid.UUID
	name             string
	year             int
	divisionID       uuid.UUID
	defaultAllotment int
	isActive         bool
	createdAt        time.Time
	updatedAt        time.Time
}

type Option func(*Calendar)

func WithID(id uuid.UUID) Option {
	return func(c *Calendar) {
		c.id = id
	}
}

func WithDivisionID(divisionID uuid.UUID) Option {
	return func(c *Calendar) {
		c.divisionID = divisionID
	}
}

func WithDefaultAllotment(n int) Option {
	return func(c *Calendar) {
		c.defaultAllotment = n
	}
}

func WithIsActive(isActive bool) Option {
	return func(c *Calendar) {
		c.isActive = isActive
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(c *Calendar) {
		c.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(c *Calendar) {
		c.updatedAt = updatedAt
	}
}

func New(name string, year int, opts ...Option) *Calendar {
	c := &Calendar{
		id:               uuid.New(),
		name:             name,
		year:             year,
		defaultAllotment: 4,
		isActive:         true,
		createdAt:        time.Now(),
		updatedAt:        time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calendar) ID() uuid.UUID {
	return c.id
}

func (c *Calendar) Name() string {
	return c.name
}

func (c *Calendar) Year() int {
	return c.year
}

func (c *Calendar) DivisionID() uuid.UUID {
	return c.divisionID
}

func (c *Calendar) DefaultAllotment() int {
	return c.defaultAllotment
}

func (c *Calendar) IsActive() bool {
	return c.isActive
}

func (c *Calendar) CreatedAt() time.Time {
	return c.createdAt
}

func (c *Calendar) UpdatedAt() time.Time {
	return c.updatedAt
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Calendar, error)
	GetAll(ctx context.Context) ([]*Calendar, error)
	Create(ctx context.Context, data *Calendar) (*Calendar, error)
	Update(ctx context.Context, data *Calendar) error
	Delete(ctx context.Context, id uuid.UUID) error
	// AllotmentFor resolves the capacity for a date, falling back to the
	// calendar default when no override row exists.
	AllotmentFor(ctx context.Context, calendarID uuid.UUID, date time.Time) (int, error)
	SetAllotment(ctx context.Context, calendarID uuid.UUID, date time.Time, maxSlots int) error
}
