package member

import (
	"context"

	"github.com/unionhall/leavehub/pkg/composables"
)

type CreatedEvent struct {
	Actor  *composables.Admin
	Result *Member
}

type UpdatedEvent struct {
	Actor  *composables.Admin
	Result *Member
}

type DeletedEvent struct {
	Actor  *composables.Admin
	Result *Member
}

func NewCreatedEvent(ctx context.Context, result *Member) (*CreatedEvent, error) {
	actor, err := composables.UseAdmin(ctx)
	if err != nil {
		return nil, err
	}
	return &CreatedEvent{Actor: actor, Result: result}, nil
}

func NewUpdatedEvent(ctx context.Context, result *Member) (*UpdatedEvent, error) {
	actor, err := composables.UseAdmin(ctx)
	if err != nil {
		return nil, err
	}
	return &UpdatedEvent{Actor: actor, Result: result}, nil
}

func NewDeletedEvent(ctx context.Context, result *Member) (*DeletedEvent, error) {
	actor, err := composables.UseAdmin(ctx)
	if err != nil {
		return nil, err
	}
	return &DeletedEvent{Actor: actor, Result: result}, nil
}
