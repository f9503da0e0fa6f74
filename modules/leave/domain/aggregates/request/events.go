package request

import (
	"context"

	"github.com/unionhall/leavehub/pkg/composables"
)

type CreatedEvent struct {
	Actor  *composables.Admin
	Result *LeaveRequest
}

type StatusChangedEvent struct {
	Actor    *composables.Admin
	Result   *LeaveRequest
	Previous Status
}

func NewCreatedEvent(ctx context.Context, result *LeaveRequest) (*CreatedEvent, error) {
	actor, err := composables.UseAdmin(ctx)
	if err != nil {
		return nil, err
	}
	return &CreatedEvent{Actor: actor, Result: result}, nil
}

func NewStatusChangedEvent(ctx context.Context, result *LeaveRequest, previous Status) (*StatusChangedEvent, error) {
	actor, err := composables.UseAdmin(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusChangedEvent{Actor: actor, Result: result, Previous: previous}, nil
}
