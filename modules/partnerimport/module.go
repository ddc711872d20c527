package partnerimport

import (
	"context"
	"os"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/infrastructure/persistence"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/infrastructure/sheets"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/presentation/controllers"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/services"
	"github.com/fieldops-hq/fieldops/pkg/application"
	"github.com/fieldops-hq/fieldops/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	// Spreadsheet-backed profiles need a service-account key. Without one the
	// module still serves csv and xlsx imports.
	var fetcher sheets.Fetcher
	if path := conf.Google.CredentialsPath; path != "" {
		if _, err := os.Stat(path); err == nil {
			client, err := sheets.NewClient(context.Background(), path)
			if err != nil {
				return err
			}
			fetcher = client
		} else {
			app.Logger().WithField("path", path).Warn("sheets credentials not found, spreadsheet imports disabled")
		}
	}

	profileRepo := persistence.NewImportProfileRepository()
	orderRepo := persistence.NewPartnerOrderRepository()
	runRepo := persistence.NewImportRunRepository()

	app.RegisterServices(
		services.NewProfileService(profileRepo),
		services.NewRunHistoryService(runRepo),
		services.NewImportService(services.ImportServiceConfig{
			Profiles: profileRepo,
			Orders:   orderRepo,
			Runs:     runRepo,
			Sheets:   fetcher,
			EventBus: app.EventPublisher(),
			Workers:  conf.Import.Workers,
		}),
	)

	app.RegisterControllers(
		controllers.NewImportAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "partnerimport"
}
