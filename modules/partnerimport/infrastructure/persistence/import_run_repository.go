package persistence

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importrun"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/mapping"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/infrastructure/persistence/models"
	"github.com/fieldops-hq/fieldops/pkg/composables"
)

type ImportRunRepository struct{}

func NewImportRunRepository() importrun.Repository {
	return &ImportRunRepository{}
}

func (r *ImportRunRepository) Create(ctx context.Context, run importrun.ImportRun) (importrun.ImportRun, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return importrun.ImportRun{}, err
	}

	rowErrors, err := json.Marshal(run.Summary.Errors)
	if err != nil {
		return importrun.ImportRun{}, errors.Wrap(err, "marshal run errors")
	}

	id := run.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	query := `
		INSERT INTO partner_import_runs (
			id, profile_id, partner_id, dry_run, processed, inserted_count,
			updated_count, skipped_count, warning_count, errors,
			started_at, finished_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		id.String(),
		run.ProfileID.String(),
		run.PartnerID.String(),
		run.DryRun,
		run.Summary.Processed,
		run.Summary.Inserted,
		run.Summary.Updated,
		run.Summary.Skipped,
		run.Summary.Warnings,
		rowErrors,
		run.StartedAt,
		run.FinishedAt,
	).Scan(&idStr); err != nil {
		return importrun.ImportRun{}, errors.Wrap(err, "insert import run")
	}

	run.ID = id
	return run, nil
}

func (r *ImportRunRepository) ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]importrun.ImportRun, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, profile_id, partner_id, dry_run, processed, inserted_count,
		       updated_count, skipped_count, warning_count, errors,
		       started_at, finished_at
		FROM partner_import_runs
		WHERE profile_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := tx.Query(ctx, query, profileID.String(), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var runs []importrun.ImportRun
	for rows.Next() {
		var m models.ImportRun
		if err := rows.Scan(
			&m.ID,
			&m.ProfileID,
			&m.PartnerID,
			&m.DryRun,
			&m.Processed,
			&m.Inserted,
			&m.Updated,
			&m.Skipped,
			&m.Warnings,
			&m.Errors,
			&m.StartedAt,
			&m.FinishedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan import run row")
		}
		run, err := toDomainRun(&m)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return runs, nil
}

func toDomainRun(m *models.ImportRun) (importrun.ImportRun, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return importrun.ImportRun{}, errors.Wrap(err, "parse run id")
	}
	profileID, err := uuid.Parse(m.ProfileID)
	if err != nil {
		return importrun.ImportRun{}, errors.Wrap(err, "parse profile id")
	}
	partnerID, err := uuid.Parse(m.PartnerID)
	if err != nil {
		return importrun.ImportRun{}, errors.Wrap(err, "parse partner id")
	}
	var rowErrors []mapping.RowError
	if len(m.Errors) > 0 {
		if err := json.Unmarshal(m.Errors, &rowErrors); err != nil {
			return importrun.ImportRun{}, errors.Wrap(err, "unmarshal run errors")
		}
	}
	return importrun.ImportRun{
		ID:        id,
		ProfileID: profileID,
		PartnerID: partnerID,
		DryRun:    m.DryRun,
		Summary: mapping.RunSummary{
			Processed: m.Processed,
			Inserted:  m.Inserted,
			Updated:   m.Updated,
			Skipped:   m.Skipped,
			Warnings:  m.Warnings,
			Errors:    rowErrors,
		},
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}, nil
}
