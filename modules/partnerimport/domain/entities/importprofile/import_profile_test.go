package importprofile_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
)

func validDTO() importprofile.CreateDTO {
	return importprofile.CreateDTO{
		PartnerID:  uuid.NewString(),
		Name:       "Acme CSV feed",
		SourceType: "csv",
		ColumnMappings: map[string]string{
			"partner_external_id": "Job Ref",
			"client_name":         "Customer",
			"status":              "State",
		},
		StatusMappings: map[string]string{
			"Booked": "install_booked",
		},
		EngineerRules: []importprofile.EngineerRuleDTO{
			{PartnerIdentifier: "J. Smith", EngineerID: uuid.NewString()},
		},
		StatusOverrideRules: map[string]bool{
			"cancelled": true,
		},
		DefaultInsertStatus: "awaiting_install_booking",
	}
}

func TestCreateDTO_ValidProfile(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	errs, ok := dto.Ok()
	require.True(t, ok, "unexpected validation errors: %v", errs)

	profile, err := dto.ToEntity()
	require.NoError(t, err)
	assert.Equal(t, "Acme CSV feed", profile.Name())
	assert.Equal(t, importprofile.SourceCSV, profile.SourceType())
	assert.Equal(t, partnerorder.StatusAwaitingInstallBooking, profile.DefaultInsertStatus())
	assert.True(t, profile.IsActive())
	require.Len(t, profile.EngineerRules(), 1)
	assert.Equal(t, "J. Smith", profile.EngineerRules()[0].PartnerIdentifier)
}

func TestCreateDTO_RejectsBadStructure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*importprofile.CreateDTO)
	}{
		{"missing partner id", func(d *importprofile.CreateDTO) { d.PartnerID = "" }},
		{"partner id not a uuid", func(d *importprofile.CreateDTO) { d.PartnerID = "not-a-uuid" }},
		{"missing name", func(d *importprofile.CreateDTO) { d.Name = "  " }},
		{"unknown source type", func(d *importprofile.CreateDTO) { d.SourceType = "ftp" }},
		{"no column mappings", func(d *importprofile.CreateDTO) { d.ColumnMappings = nil }},
		{"engineer id not a uuid", func(d *importprofile.CreateDTO) {
			d.EngineerRules = []importprofile.EngineerRuleDTO{{PartnerIdentifier: "X", EngineerID: "nope"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dto := validDTO()
			tt.mutate(&dto)
			_, ok := dto.Ok()
			assert.False(t, ok)
		})
	}
}

func TestCreateDTO_EntityValidationCatchesSemanticErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*importprofile.CreateDTO)
	}{
		{"unknown target field", func(d *importprofile.CreateDTO) {
			d.ColumnMappings = map[string]string{"partner_external_id": "Job Ref", "shoe_size": "Size"}
		}},
		{"no matching-key mapping", func(d *importprofile.CreateDTO) {
			d.ColumnMappings = map[string]string{"client_name": "Customer"}
		}},
		{"unknown mapped status", func(d *importprofile.CreateDTO) {
			d.StatusMappings = map[string]string{"Booked": "definitely_booked"}
		}},
		{"unknown override status", func(d *importprofile.CreateDTO) {
			d.StatusOverrideRules = map[string]bool{"definitely_cancelled": true}
		}},
		{"unknown default insert status", func(d *importprofile.CreateDTO) {
			d.DefaultInsertStatus = "pending"
		}},
		{"spreadsheet source without ref", func(d *importprofile.CreateDTO) {
			d.SourceType = "spreadsheet"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dto := validDTO()
			tt.mutate(&dto)
			_, ok := dto.Ok()
			require.True(t, ok, "these DTOs are structurally fine")
			_, err := dto.ToEntity()
			assert.Error(t, err)
		})
	}
}

func TestCreateDTO_SpreadsheetSourceWithRef(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	dto.SourceType = "spreadsheet"
	dto.SpreadsheetID = "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"
	dto.SheetName = "Jobs"

	profile, err := dto.ToEntity()
	require.NoError(t, err)
	require.NotNil(t, profile.SpreadsheetRef())
	assert.Equal(t, "Jobs", profile.SpreadsheetRef().SheetName)
}

func TestCreateDTO_NormalizesInput(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	dto.Name = "  Acme CSV feed  "
	dto.SourceType = " CSV "

	_, ok := dto.Ok()
	require.True(t, ok)
	assert.Equal(t, "csv", dto.SourceType)

	profile, err := dto.ToEntity()
	require.NoError(t, err)
	assert.Equal(t, "Acme CSV feed", profile.Name())
}
