package mapping_test

import (
	"github.com/google/uuid"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/importsource"
)

var (
	testPartnerID = uuid.MustParse("3fa23f5d-9f3a-4a8e-8f2e-5a8cc16c9101")
	engineerOne   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	engineerTwo   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func testProfile(overrides map[partnerorder.Status]bool) importprofile.ImportProfile {
	return importprofile.New(
		testPartnerID,
		"Acme CSV feed",
		importprofile.SourceCSV,
		nil,
		map[importprofile.TargetField]string{
			importprofile.FieldPartnerExternalID: "Job Ref",
			importprofile.FieldOrderNumber:       "Order No",
			importprofile.FieldClientName:        "Customer",
			importprofile.FieldClientPostcode:    "Postcode",
			importprofile.FieldJobAddress:        "Address",
			importprofile.FieldScheduledDate:     "Install Date",
			importprofile.FieldStatus:            "State",
			importprofile.FieldEngineer:          "Installer",
		},
		map[string]partnerorder.Status{
			"Booked":     partnerorder.StatusInstallBooked,
			"On Site":    partnerorder.StatusInProgress,
			"Done":       partnerorder.StatusCompleted,
			"Called Off": partnerorder.StatusCancelled,
		},
		[]importprofile.EngineerRule{
			{PartnerIdentifier: "J. Smith", EngineerID: engineerOne},
			{PartnerIdentifier: "smith", EngineerID: engineerTwo},
		},
		overrides,
		partnerorder.StatusAwaitingInstallBooking,
	)
}

func testRow(index int, values map[string]string) importsource.RawRow {
	columns := []string{"Job Ref", "Order No", "Customer", "Postcode", "Address", "Install Date", "State", "Installer"}
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = values[col]
	}
	return importsource.NewRawRow(index, columns, cells)
}
