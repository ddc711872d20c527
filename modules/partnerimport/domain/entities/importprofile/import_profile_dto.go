package importprofile

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
	"github.com/fieldops-hq/fieldops/pkg/constants"
)

type EngineerRuleDTO struct {
	PartnerIdentifier string `json:"partnerIdentifier" validate:"required"`
	EngineerID        string `json:"engineerId" validate:"required,uuid"`
}

type CreateDTO struct {
	PartnerID           string            `json:"partnerId" validate:"required,uuid"`
	Name                string            `json:"name" validate:"required"`
	SourceType          string            `json:"sourceType" validate:"required,oneof=csv xlsx spreadsheet"`
	SpreadsheetID       string            `json:"spreadsheetId"`
	SheetName           string            `json:"sheetName"`
	ColumnMappings      map[string]string `json:"columnMappings" validate:"required,min=1"`
	StatusMappings      map[string]string `json:"statusMappings"`
	EngineerRules       []EngineerRuleDTO `json:"engineerMappingRules" validate:"dive"`
	StatusOverrideRules map[string]bool   `json:"statusOverrideRules"`
	DefaultInsertStatus string            `json:"defaultInsertStatus" validate:"required"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.SourceType = strings.ToLower(strings.TrimSpace(d.SourceType))
	d.SpreadsheetID = strings.TrimSpace(d.SpreadsheetID)
	d.SheetName = strings.TrimSpace(d.SheetName)
	d.DefaultInsertStatus = strings.TrimSpace(d.DefaultInsertStatus)
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		return map[string]string{}, true
	}

	out := make(map[string]string)
	for _, err := range errs.(validator.ValidationErrors) {
		out[err.Field()] = fmt.Sprintf("validation failed on %q", err.Tag())
	}
	return out, false
}

// ToEntity builds the profile and runs the entity-level validation, so a
// structurally valid DTO can still be rejected for unknown target fields or
// status values. Invalid profiles never reach a run.
func (d *CreateDTO) ToEntity() (ImportProfile, error) {
	partnerID, err := uuid.Parse(d.PartnerID)
	if err != nil {
		return ImportProfile{}, fmt.Errorf("invalid partner id: %w", err)
	}

	columns := make(map[TargetField]string, len(d.ColumnMappings))
	for field, column := range d.ColumnMappings {
		columns[TargetField(strings.TrimSpace(field))] = strings.TrimSpace(column)
	}

	statuses := make(map[string]partnerorder.Status, len(d.StatusMappings))
	for raw, status := range d.StatusMappings {
		statuses[strings.TrimSpace(raw)] = partnerorder.Status(strings.TrimSpace(status))
	}

	overrides := make(map[partnerorder.Status]bool, len(d.StatusOverrideRules))
	for status, allowed := range d.StatusOverrideRules {
		overrides[partnerorder.Status(strings.TrimSpace(status))] = allowed
	}

	rules := make([]EngineerRule, 0, len(d.EngineerRules))
	for _, rule := range d.EngineerRules {
		engineerID, err := uuid.Parse(rule.EngineerID)
		if err != nil {
			return ImportProfile{}, fmt.Errorf("invalid engineer id %q: %w", rule.EngineerID, err)
		}
		rules = append(rules, EngineerRule{
			PartnerIdentifier: strings.TrimSpace(rule.PartnerIdentifier),
			EngineerID:        engineerID,
		})
	}

	var ref *SpreadsheetRef
	if d.SpreadsheetID != "" || d.SheetName != "" {
		ref = &SpreadsheetRef{SpreadsheetID: d.SpreadsheetID, SheetName: d.SheetName}
	}

	profile := New(
		partnerID,
		d.Name,
		SourceType(d.SourceType),
		ref,
		columns,
		statuses,
		rules,
		overrides,
		partnerorder.Status(d.DefaultInsertStatus),
	)
	if err := profile.Validate(); err != nil {
		return ImportProfile{}, err
	}
	return profile, nil
}
