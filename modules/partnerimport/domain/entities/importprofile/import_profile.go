package importprofile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
)

type SourceType string

const (
	SourceCSV         SourceType = "csv"
	SourceXLSX        SourceType = "xlsx"
	SourceSpreadsheet SourceType = "spreadsheet"
)

// TargetField names a field of the candidate record a partner column can map
// onto.
type TargetField string

const (
	FieldPartnerExternalID TargetField = "partner_external_id"
	FieldOrderNumber       TargetField = "order_number"
	FieldClientName        TargetField = "client_name"
	FieldClientPostcode    TargetField = "client_postcode"
	FieldJobAddress        TargetField = "job_address"
	FieldScheduledDate     TargetField = "scheduled_date"
	FieldStatus            TargetField = "status"
	FieldEngineer          TargetField = "engineer"
)

var knownTargetFields = map[TargetField]struct{}{
	FieldPartnerExternalID: {},
	FieldOrderNumber:       {},
	FieldClientName:        {},
	FieldClientPostcode:    {},
	FieldJobAddress:        {},
	FieldScheduledDate:     {},
	FieldStatus:            {},
	FieldEngineer:          {},
}

// SpreadsheetRef points at a linked partner spreadsheet.
type SpreadsheetRef struct {
	SpreadsheetID string
	SheetName     string
}

// EngineerRule maps a partner-supplied engineer identifier onto an internal
// engineer. Rules are scanned in configuration order; the first match wins.
type EngineerRule struct {
	PartnerIdentifier string
	EngineerID        uuid.UUID
}

// ImportProfile is the partner-specific import configuration. It is
// immutable during a run; only the configuration surface mutates it.
type ImportProfile struct {
	id                  uuid.UUID
	partnerID           uuid.UUID
	name                string
	sourceType          SourceType
	spreadsheetRef      *SpreadsheetRef
	columnMappings      map[TargetField]string
	statusMappings      map[string]partnerorder.Status
	engineerRules       []EngineerRule
	statusOverrideRules map[partnerorder.Status]bool
	defaultInsertStatus partnerorder.Status
	isActive            bool
	createdAt           time.Time
	updatedAt           time.Time
}

func New(
	partnerID uuid.UUID,
	name string,
	sourceType SourceType,
	spreadsheetRef *SpreadsheetRef,
	columnMappings map[TargetField]string,
	statusMappings map[string]partnerorder.Status,
	engineerRules []EngineerRule,
	statusOverrideRules map[partnerorder.Status]bool,
	defaultInsertStatus partnerorder.Status,
) ImportProfile {
	return ImportProfile{
		partnerID:           partnerID,
		name:                strings.TrimSpace(name),
		sourceType:          sourceType,
		spreadsheetRef:      spreadsheetRef,
		columnMappings:      columnMappings,
		statusMappings:      statusMappings,
		engineerRules:       engineerRules,
		statusOverrideRules: statusOverrideRules,
		defaultInsertStatus: defaultInsertStatus,
		isActive:            true,
	}
}

func Hydrate(
	id uuid.UUID,
	partnerID uuid.UUID,
	name string,
	sourceType SourceType,
	spreadsheetRef *SpreadsheetRef,
	columnMappings map[TargetField]string,
	statusMappings map[string]partnerorder.Status,
	engineerRules []EngineerRule,
	statusOverrideRules map[partnerorder.Status]bool,
	defaultInsertStatus partnerorder.Status,
	isActive bool,
	createdAt time.Time,
	updatedAt time.Time,
) ImportProfile {
	p := New(
		partnerID, name, sourceType, spreadsheetRef,
		columnMappings, statusMappings, engineerRules, statusOverrideRules,
		defaultInsertStatus,
	)
	p.id = id
	p.isActive = isActive
	p.createdAt = createdAt
	p.updatedAt = updatedAt
	return p
}

func (p ImportProfile) ID() uuid.UUID                   { return p.id }
func (p ImportProfile) PartnerID() uuid.UUID            { return p.partnerID }
func (p ImportProfile) Name() string                    { return p.name }
func (p ImportProfile) SourceType() SourceType          { return p.sourceType }
func (p ImportProfile) SpreadsheetRef() *SpreadsheetRef { return p.spreadsheetRef }
func (p ImportProfile) ColumnMappings() map[TargetField]string {
	return p.columnMappings
}
func (p ImportProfile) StatusMappings() map[string]partnerorder.Status {
	return p.statusMappings
}
func (p ImportProfile) EngineerRules() []EngineerRule { return p.engineerRules }
func (p ImportProfile) StatusOverrideRules() map[partnerorder.Status]bool {
	return p.statusOverrideRules
}
func (p ImportProfile) DefaultInsertStatus() partnerorder.Status {
	return p.defaultInsertStatus
}
func (p ImportProfile) IsActive() bool       { return p.isActive }
func (p ImportProfile) CreatedAt() time.Time { return p.createdAt }
func (p ImportProfile) UpdatedAt() time.Time { return p.updatedAt }

func (p ImportProfile) WithID(id uuid.UUID) ImportProfile {
	p.id = id
	return p
}

func (p ImportProfile) WithActive(active bool) ImportProfile {
	p.isActive = active
	return p
}

func (p ImportProfile) WithTimestamps(createdAt, updatedAt time.Time) ImportProfile {
	p.createdAt = createdAt
	p.updatedAt = updatedAt
	return p
}

// Validate rejects malformed profiles at configuration time so runs never
// see an invalid mapping structure.
func (p ImportProfile) Validate() error {
	if p.partnerID == uuid.Nil {
		return fmt.Errorf("import profile: partner id is required")
	}
	if p.name == "" {
		return fmt.Errorf("import profile: name is required")
	}
	switch p.sourceType {
	case SourceCSV, SourceXLSX:
	case SourceSpreadsheet:
		if p.spreadsheetRef == nil ||
			strings.TrimSpace(p.spreadsheetRef.SpreadsheetID) == "" ||
			strings.TrimSpace(p.spreadsheetRef.SheetName) == "" {
			return fmt.Errorf("import profile: spreadsheet source requires a spreadsheet id and sheet name")
		}
	default:
		return fmt.Errorf("import profile: unknown source type %q", p.sourceType)
	}

	if len(p.columnMappings) == 0 {
		return fmt.Errorf("import profile: at least one column mapping is required")
	}
	for field, column := range p.columnMappings {
		if _, ok := knownTargetFields[field]; !ok {
			return fmt.Errorf("import profile: unknown target field %q", field)
		}
		if strings.TrimSpace(column) == "" {
			return fmt.Errorf("import profile: empty source column for target field %q", field)
		}
	}
	if p.columnMappings[FieldPartnerExternalID] == "" && p.columnMappings[FieldOrderNumber] == "" {
		return fmt.Errorf("import profile: a mapping for %q or %q is required to match rows", FieldPartnerExternalID, FieldOrderNumber)
	}

	for raw, status := range p.statusMappings {
		if strings.TrimSpace(raw) == "" {
			return fmt.Errorf("import profile: empty partner status text in status mappings")
		}
		if !partnerorder.ValidStatus(status) {
			return fmt.Errorf("import profile: unknown internal status %q in status mappings", status)
		}
	}
	for status := range p.statusOverrideRules {
		if !partnerorder.ValidStatus(status) {
			return fmt.Errorf("import profile: unknown internal status %q in override rules", status)
		}
	}
	for i, rule := range p.engineerRules {
		if strings.TrimSpace(rule.PartnerIdentifier) == "" {
			return fmt.Errorf("import profile: engineer rule %d has an empty partner identifier", i+1)
		}
		if rule.EngineerID == uuid.Nil {
			return fmt.Errorf("import profile: engineer rule %d has no engineer id", i+1)
		}
	}
	if !partnerorder.ValidStatus(p.defaultInsertStatus) {
		return fmt.Errorf("import profile: unknown default insert status %q", p.defaultInsertStatus)
	}
	return nil
}
