package modules

import (
	"github.com/unionhall/leavehub/modules/importer"
	"github.com/unionhall/leavehub/modules/leave"
	"github.com/unionhall/leavehub/modules/roster"
	"github.com/unionhall/leavehub/pkg/application"
)

var BuiltInModules = []application.Module{
	roster.NewModule(),
	leave.NewModule(),
	importer.NewModule(),
}

func Load(app application.Application, mods ...application.Module) error {
	for _, module := range mods {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
