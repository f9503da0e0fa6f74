package leave

import (
	"embed"

	"github.com/unionhall/leavehub/modules/leave/infrastructure/persistence"
	"github.com/unionhall/leavehub/modules/leave/services"
	"github.com/unionhall/leavehub/pkg/application"
)

//go:embed infrastructure/persistence/schema/leave-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&MigrationFiles)
	app.RegisterServices(
		services.NewCalendarService(persistence.NewCalendarRepository(), app.EventPublisher()),
		services.NewLeaveRequestService(persistence.NewLeaveRequestRepository(), app.EventPublisher()),
	)
	return nil
}

func (m *Module) Name() string {
	return "leave"
}
