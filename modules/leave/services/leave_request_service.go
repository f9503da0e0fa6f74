package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
	"github.com/unionhall/leavehub/pkg/composables"
	"github.com/unionhall/leavehub/pkg/eventbus"
)

type LeaveRequestService struct {
	repo      request.Repository
	publisher eventbus.EventBus
}

func NewLeaveRequestService(repo request.Repository, publisher eventbus.EventBus) *LeaveRequestService {
	return &LeaveRequestService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *LeaveRequestService) GetByID(ctx context.Context, id uuid.UUID) (*request.LeaveRequest, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*request.LeaveRequest, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *LeaveRequestService) GetByFilters(ctx context.Context, params *request.FindParams) ([]*request.LeaveRequest, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*request.LeaveRequest, error) {
		return s.repo.GetByFilters(txCtx, params)
	})
}

func (s *LeaveRequestService) Create(ctx context.Context, data *request.CreateDTO) (*request.LeaveRequest, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*request.LeaveRequest, error) {
		entity, err := data.ToEntity()
		if err != nil {
			return nil, err
		}
		id, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return nil, err
		}
		// Re-read: the insert trigger decides approved vs waitlisted.
		created, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		ev, err := request.NewCreatedEvent(txCtx, created)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return created, nil
	})
}

func (s *LeaveRequestService) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next request.Status, adminReason *string) (*request.LeaveRequest, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*request.LeaveRequest, error) {
		if err := s.repo.UpdateStatus(txCtx, id, expected, next, adminReason); err != nil {
			return nil, err
		}
		updated, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		ev, err := request.NewStatusChangedEvent(txCtx, updated, expected)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ev)
		return updated, nil
	})
}
