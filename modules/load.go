package modules

import (
	"github.com/fieldops-hq/fieldops/modules/partnerimport"
	"github.com/fieldops-hq/fieldops/pkg/application"
)

var BuiltInModules = []application.Module{
	partnerimport.NewModule(),
}

func Load(app application.Application, mods ...application.Module) error {
	for _, module := range mods {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
