package member

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Member is a dues-paying member on the local's roster. PIN numbers are the
// legacy identifier carried over from the paper seniority roster and remain
// unique per local.
type Member struct {
	id         uuid.UUID
	pinNumber  int
	firstName  string
	lastName   string
	divisionID uuid.UUID
	isActive   bool
	createdAt  time.Time
	updatedAt  time.Time
}

type Option func(*Member)

func WithID(id uuid.UUID) Option {
	return func(m *Member) {
		m.id = id
	}
}

func WithDivisionID(divisionID uuid.UUID) Option {
	return func(m *Member) {
		m.divisionID = divisionID
	}
}

func WithIsActive(isActive bool) Option {
	return func(m *Member) {
		m.isActive = isActive
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(m *Member) {
		m.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(m *Member) {
		m.updatedAt = updatedAt
	}
}

func New(pinNumber int, firstName, lastName string, opts ...Option) *Member {
	m := &Member{
		id:        uuid.New(),
		pinNumber: pinNumber,
		firstName: firstName,
		lastName:  lastName,
		isActive:  true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Member) ID() uuid.UUID {
	return m.id
}

func (m *Member) PINNumber() int {
	return m.pinNumber
}

func (m *Member) FirstName() string {
	return m.firstName
}

func (m *Member) LastName() string {
	return m.lastName
}

func (m *Member) FullName() string {
	return strings.TrimSpace(m.firstName + " " + m.lastName)
}

func (m *Member) DivisionID() uuid.UUID {
	return m.divisionID
}

func (m *Member) IsActive() bool {
	return m.isActive
}

func (m *Member) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Member) UpdatedAt() time.Time {
	return m.updatedAt
}

// Match pairs a roster member with the confidence of a fuzzy name lookup.
// Confidence is 0-100, recomputed on every search, never persisted.
type Match struct {
	Member     *Member
	Confidence int
}
