package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unionhall/leavehub/pkg/constants"
)

var (
	ErrNoAdmin = errors.New("admin identity not found in context")
)

// Admin identifies the administrator driving the current operation. It is
// stamped onto audit fields of every record the import pipeline touches.
type Admin struct {
	ID   uuid.UUID
	Name string
}

func WithAdmin(ctx context.Context, admin *Admin) context.Context {
	return context.WithValue(ctx, constants.AdminKey, admin)
}

func UseAdmin(ctx context.Context) (*Admin, error) {
	admin, ok := ctx.Value(constants.AdminKey).(*Admin)
	if !ok || admin == nil {
		return nil, ErrNoAdmin
	}
	return admin, nil
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the logger from the context, falling back to the standard
// logger so call sites never need a nil check.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry)
	if !ok {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logger
}
