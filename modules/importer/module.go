package importer

import (
	importerpersistence "github.com/unionhall/leavehub/modules/importer/infrastructure/persistence"
	"github.com/unionhall/leavehub/modules/importer/services"
	leavepersistence "github.com/unionhall/leavehub/modules/leave/infrastructure/persistence"
	rosterpersistence "github.com/unionhall/leavehub/modules/roster/infrastructure/persistence"
	rosterservices "github.com/unionhall/leavehub/modules/roster/services"
	"github.com/unionhall/leavehub/pkg/application"
	"github.com/unionhall/leavehub/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	log := configuration.Use().Logger()

	memberRepo := rosterpersistence.NewMemberRepository()
	roster := rosterservices.NewMemberService(memberRepo, app.EventPublisher())

	app.RegisterServices(
		services.NewImportService(
			leavepersistence.NewLeaveRequestRepository(),
			leavepersistence.NewCalendarRepository(),
			memberRepo,
			roster,
			importerpersistence.NewImportRepository(),
			app.EventPublisher(),
			log,
		),
		services.NewReportService(log),
	)
	return nil
}

func (m *Module) Name() string {
	return "importer"
}
