package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/infrastructure/persistence/models"
	"github.com/fieldops-hq/fieldops/pkg/composables"
)

const profileFindQuery = `
	SELECT id, partner_id, name, source_type, spreadsheet_id, sheet_name,
	       column_mappings, status_mappings, engineer_rules,
	       status_override_rules, default_insert_status, is_active,
	       created_at, updated_at
	FROM partner_import_profiles`

type ImportProfileRepository struct{}

func NewImportProfileRepository() importprofile.Repository {
	return &ImportProfileRepository{}
}

func (r *ImportProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (importprofile.ImportProfile, error) {
	profiles, err := r.queryProfiles(ctx, profileFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return importprofile.ImportProfile{}, err
	}
	if len(profiles) == 0 {
		return importprofile.ImportProfile{}, importprofile.ErrNotFound
	}
	return profiles[0], nil
}

func (r *ImportProfileRepository) List(ctx context.Context) ([]importprofile.ImportProfile, error) {
	return r.queryProfiles(ctx, profileFindQuery+" ORDER BY created_at")
}

func (r *ImportProfileRepository) Create(ctx context.Context, profile importprofile.ImportProfile) (importprofile.ImportProfile, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return importprofile.ImportProfile{}, err
	}

	row, err := toDBProfile(profile)
	if err != nil {
		return importprofile.ImportProfile{}, err
	}

	id := profile.ID()
	if id == uuid.Nil {
		id = uuid.New()
	}

	query := `
		INSERT INTO partner_import_profiles (
			id, partner_id, name, source_type, spreadsheet_id, sheet_name,
			column_mappings, status_mappings, engineer_rules,
			status_override_rules, default_insert_status, is_active,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING id
	`
	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		id.String(),
		row.PartnerID,
		row.Name,
		row.SourceType,
		row.SpreadsheetID,
		row.SheetName,
		row.ColumnMappings,
		row.StatusMappings,
		row.EngineerRules,
		row.StatusOverrideRules,
		row.DefaultInsertStatus,
		row.IsActive,
	).Scan(&idStr); err != nil {
		return importprofile.ImportProfile{}, errors.Wrap(err, "create import profile")
	}

	created, err := uuid.Parse(idStr)
	if err != nil {
		return importprofile.ImportProfile{}, err
	}
	return r.GetByID(ctx, created)
}

func (r *ImportProfileRepository) Update(ctx context.Context, profile importprofile.ImportProfile) (importprofile.ImportProfile, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return importprofile.ImportProfile{}, err
	}

	row, err := toDBProfile(profile)
	if err != nil {
		return importprofile.ImportProfile{}, err
	}

	query := `
		UPDATE partner_import_profiles
		SET name = $1, source_type = $2, spreadsheet_id = $3, sheet_name = $4,
		    column_mappings = $5, status_mappings = $6, engineer_rules = $7,
		    status_override_rules = $8, default_insert_status = $9,
		    is_active = $10, updated_at = now()
		WHERE id = $11
		RETURNING id
	`
	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		row.Name,
		row.SourceType,
		row.SpreadsheetID,
		row.SheetName,
		row.ColumnMappings,
		row.StatusMappings,
		row.EngineerRules,
		row.StatusOverrideRules,
		row.DefaultInsertStatus,
		row.IsActive,
		profile.ID().String(),
	).Scan(&idStr); err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return importprofile.ImportProfile{}, importprofile.ErrNotFound
		}
		return importprofile.ImportProfile{}, errors.Wrap(err, "update import profile")
	}

	return r.GetByID(ctx, profile.ID())
}

func (r *ImportProfileRepository) queryProfiles(ctx context.Context, query string, args ...interface{}) ([]importprofile.ImportProfile, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var profiles []importprofile.ImportProfile
	for rows.Next() {
		var m models.ImportProfile
		if err := rows.Scan(
			&m.ID,
			&m.PartnerID,
			&m.Name,
			&m.SourceType,
			&m.SpreadsheetID,
			&m.SheetName,
			&m.ColumnMappings,
			&m.StatusMappings,
			&m.EngineerRules,
			&m.StatusOverrideRules,
			&m.DefaultInsertStatus,
			&m.IsActive,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan import profile row")
		}
		profile, err := toDomainProfile(&m)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return profiles, nil
}

type engineerRuleRow struct {
	PartnerIdentifier string `json:"partnerIdentifier"`
	EngineerID        string `json:"engineerId"`
}

func toDBProfile(p importprofile.ImportProfile) (*models.ImportProfile, error) {
	columns, err := json.Marshal(p.ColumnMappings())
	if err != nil {
		return nil, errors.Wrap(err, "marshal column mappings")
	}
	statuses, err := json.Marshal(p.StatusMappings())
	if err != nil {
		return nil, errors.Wrap(err, "marshal status mappings")
	}
	overrides, err := json.Marshal(p.StatusOverrideRules())
	if err != nil {
		return nil, errors.Wrap(err, "marshal status override rules")
	}

	// Rules are stored as a JSON array: configuration order is part of the
	// engineer resolution contract.
	ruleRows := make([]engineerRuleRow, 0, len(p.EngineerRules()))
	for _, rule := range p.EngineerRules() {
		ruleRows = append(ruleRows, engineerRuleRow{
			PartnerIdentifier: rule.PartnerIdentifier,
			EngineerID:        rule.EngineerID.String(),
		})
	}
	rules, err := json.Marshal(ruleRows)
	if err != nil {
		return nil, errors.Wrap(err, "marshal engineer rules")
	}

	var spreadsheetID, sheetName sql.NullString
	if ref := p.SpreadsheetRef(); ref != nil {
		spreadsheetID = sql.NullString{String: ref.SpreadsheetID, Valid: true}
		sheetName = sql.NullString{String: ref.SheetName, Valid: true}
	}

	return &models.ImportProfile{
		ID:                  p.ID().String(),
		PartnerID:           p.PartnerID().String(),
		Name:                p.Name(),
		SourceType:          string(p.SourceType()),
		SpreadsheetID:       spreadsheetID,
		SheetName:           sheetName,
		ColumnMappings:      columns,
		StatusMappings:      statuses,
		EngineerRules:       rules,
		StatusOverrideRules: overrides,
		DefaultInsertStatus: string(p.DefaultInsertStatus()),
		IsActive:            p.IsActive(),
	}, nil
}

func toDomainProfile(m *models.ImportProfile) (importprofile.ImportProfile, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return importprofile.ImportProfile{}, errors.Wrap(err, "parse profile id")
	}
	partnerID, err := uuid.Parse(m.PartnerID)
	if err != nil {
		return importprofile.ImportProfile{}, errors.Wrap(err, "parse partner id")
	}

	var columns map[importprofile.TargetField]string
	if err := json.Unmarshal(m.ColumnMappings, &columns); err != nil {
		return importprofile.ImportProfile{}, errors.Wrap(err, "unmarshal column mappings")
	}
	var statuses map[string]partnerorder.Status
	if err := json.Unmarshal(m.StatusMappings, &statuses); err != nil {
		return importprofile.ImportProfile{}, errors.Wrap(err, "unmarshal status mappings")
	}
	var overrides map[partnerorder.Status]bool
	if err := json.Unmarshal(m.StatusOverrideRules, &overrides); err != nil {
		return importprofile.ImportProfile{}, errors.Wrap(err, "unmarshal status override rules")
	}
	var ruleRows []engineerRuleRow
	if err := json.Unmarshal(m.EngineerRules, &ruleRows); err != nil {
		return importprofile.ImportProfile{}, errors.Wrap(err, "unmarshal engineer rules")
	}
	rules := make([]importprofile.EngineerRule, 0, len(ruleRows))
	for _, row := range ruleRows {
		engineerID, err := uuid.Parse(row.EngineerID)
		if err != nil {
			return importprofile.ImportProfile{}, errors.Wrap(err, "parse engineer id")
		}
		rules = append(rules, importprofile.EngineerRule{
			PartnerIdentifier: row.PartnerIdentifier,
			EngineerID:        engineerID,
		})
	}

	var ref *importprofile.SpreadsheetRef
	if m.SpreadsheetID.Valid && m.SpreadsheetID.String != "" {
		ref = &importprofile.SpreadsheetRef{
			SpreadsheetID: m.SpreadsheetID.String,
			SheetName:     m.SheetName.String,
		}
	}

	return importprofile.Hydrate(
		id,
		partnerID,
		m.Name,
		importprofile.SourceType(m.SourceType),
		ref,
		columns,
		statuses,
		rules,
		overrides,
		partnerorder.Status(m.DefaultInsertStatus),
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
