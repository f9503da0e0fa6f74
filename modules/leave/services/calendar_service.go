package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/unionhall/leavehub/modules/leave/domain/entities/calendar"
	"github.com/unionhall/leavehub/pkg/composables"
	"github.com/unionhall/leavehub/pkg/eventbus"
)

type CalendarService struct {
	repo      calendar.Repository
	publisher eventbus.EventBus
}

func NewCalendarService(repo calendar.Repository, publisher eventbus.EventBus) *CalendarService {
	return &CalendarService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *CalendarService) GetByID(ctx context.Context, id uuid.UUID) (*calendar.Calendar, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*calendar.Calendar, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *CalendarService) GetAll(ctx context.Context) ([]*calendar.Calendar, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*calendar.Calendar, error) {
		return s.repo.GetAll(txCtx)
	})
}

func (s *CalendarService) Create(ctx context.Context, data *calendar.Calendar) (*calendar.Calendar, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*calendar.Calendar, error) {
		return s.repo.Create(txCtx, data)
	})
}

func (s *CalendarService) Update(ctx context.Context, data *calendar.Calendar) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, data)
	})
}

func (s *CalendarService) Delete(ctx context.Context, id uuid.UUID) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

func (s *CalendarService) AllotmentFor(ctx context.Context, calendarID uuid.UUID, date time.Time) (int, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int, error) {
		return s.repo.AllotmentFor(txCtx, calendarID, date)
	})
}

func (s *CalendarService) SetAllotment(ctx context.Context, calendarID uuid.UUID, date time.Time, maxSlots int) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.SetAllotment(txCtx, calendarID, date, maxSlots)
	})
}
