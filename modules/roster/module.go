package roster

import (
	"embed"

	"github.com/unionhall/leavehub/modules/roster/infrastructure/persistence"
	"github.com/unionhall/leavehub/modules/roster/services"
	"github.com/unionhall/leavehub/pkg/application"
)

//go:embed infrastructure/persistence/schema/roster-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&MigrationFiles)
	app.RegisterServices(
		services.NewMemberService(persistence.NewMemberRepository(), app.EventPublisher()),
	)
	return nil
}

func (m *Module) Name() string {
	return "roster"
}
