package persistence

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/infrastructure/persistence/models"
	"github.com/fieldops-hq/fieldops/pkg/composables"
)

const orderFindQuery = `
	SELECT id, partner_id, partner_external_id, order_number, client_name,
	       client_postcode, job_address, scheduled_date, status,
	       manual_status_override, engineer_id, created_at, updated_at
	FROM partner_orders`

type PartnerOrderRepository struct{}

func NewPartnerOrderRepository() partnerorder.Repository {
	return &PartnerOrderRepository{}
}

func (r *PartnerOrderRepository) GetByPartnerKey(ctx context.Context, partnerID uuid.UUID, partnerExternalID string) (partnerorder.PartnerOrder, error) {
	return r.queryOne(
		ctx,
		orderFindQuery+" WHERE partner_id = $1 AND partner_external_id = $2",
		partnerID.String(), partnerExternalID,
	)
}

func (r *PartnerOrderRepository) GetByOrderNumber(ctx context.Context, partnerID uuid.UUID, orderNumber string) (partnerorder.PartnerOrder, error) {
	return r.queryOne(
		ctx,
		orderFindQuery+" WHERE partner_id = $1 AND order_number = $2",
		partnerID.String(), orderNumber,
	)
}

func (r *PartnerOrderRepository) Insert(ctx context.Context, order partnerorder.PartnerOrder) (partnerorder.PartnerOrder, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return partnerorder.PartnerOrder{}, false, err
	}

	m := toDBOrder(order)
	id := order.ID()
	if id == uuid.Nil {
		id = uuid.New()
	}

	query := `
		INSERT INTO partner_orders (
			id, partner_id, partner_external_id, order_number, client_name,
			client_postcode, job_address, scheduled_date, status,
			manual_status_override, engineer_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		ON CONFLICT (partner_id, partner_external_id) DO NOTHING
		RETURNING id
	`
	var idStr string
	err = tx.QueryRow(
		ctx,
		query,
		id.String(),
		m.PartnerID,
		m.PartnerExternalID,
		m.OrderNumber,
		m.ClientName,
		m.ClientPostcode,
		m.JobAddress,
		m.ScheduledDate,
		m.Status,
		m.ManualStatusOverride,
		m.EngineerID,
	).Scan(&idStr)
	if stderrors.Is(err, pgx.ErrNoRows) {
		// The unique key already exists. Callers re-fetch and update instead.
		return partnerorder.PartnerOrder{}, false, nil
	}
	if err != nil {
		return partnerorder.PartnerOrder{}, false, errors.Wrap(err, "insert partner order")
	}

	created, err := uuid.Parse(idStr)
	if err != nil {
		return partnerorder.PartnerOrder{}, false, err
	}
	fetched, err := r.queryOne(ctx, orderFindQuery+" WHERE id = $1", created.String())
	if err != nil {
		return partnerorder.PartnerOrder{}, false, err
	}
	return fetched, true, nil
}

func (r *PartnerOrderRepository) Update(ctx context.Context, id uuid.UUID, patch partnerorder.Patch) (partnerorder.PartnerOrder, error) {
	if patch.IsEmpty() {
		return r.queryOne(ctx, orderFindQuery+" WHERE id = $1", id.String())
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return partnerorder.PartnerOrder{}, err
	}

	var (
		sets []string
		args []interface{}
	)
	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.OrderNumber != nil {
		addSet("order_number", nullableString(*patch.OrderNumber))
	}
	if patch.ClientName != nil {
		addSet("client_name", nullableString(*patch.ClientName))
	}
	if patch.ClientPostcode != nil {
		addSet("client_postcode", nullableString(*patch.ClientPostcode))
	}
	if patch.JobAddress != nil {
		addSet("job_address", nullableString(*patch.JobAddress))
	}
	if patch.ScheduledDate != nil {
		addSet("scheduled_date", *patch.ScheduledDate)
	}
	if patch.Status != nil {
		addSet("status", string(*patch.Status))
	}
	if patch.EngineerID != nil {
		addSet("engineer_id", patch.EngineerID.String())
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id.String())
	query := fmt.Sprintf(
		"UPDATE partner_orders SET %s WHERE id = $%d RETURNING id",
		strings.Join(sets, ", "), len(args),
	)
	var idStr string
	if err := tx.QueryRow(ctx, query, args...).Scan(&idStr); err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return partnerorder.PartnerOrder{}, partnerorder.ErrNotFound
		}
		return partnerorder.PartnerOrder{}, errors.Wrap(err, "update partner order")
	}

	return r.queryOne(ctx, orderFindQuery+" WHERE id = $1", id.String())
}

func (r *PartnerOrderRepository) queryOne(ctx context.Context, query string, args ...interface{}) (partnerorder.PartnerOrder, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return partnerorder.PartnerOrder{}, errors.Wrap(err, "failed to get transaction")
	}

	var m models.PartnerOrder
	if err := tx.QueryRow(ctx, query, args...).Scan(
		&m.ID,
		&m.PartnerID,
		&m.PartnerExternalID,
		&m.OrderNumber,
		&m.ClientName,
		&m.ClientPostcode,
		&m.JobAddress,
		&m.ScheduledDate,
		&m.Status,
		&m.ManualStatusOverride,
		&m.EngineerID,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return partnerorder.PartnerOrder{}, partnerorder.ErrNotFound
		}
		return partnerorder.PartnerOrder{}, errors.Wrap(err, "failed to query partner order")
	}
	return toDomainOrder(&m)
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toDBOrder(o partnerorder.PartnerOrder) *models.PartnerOrder {
	var scheduledDate sql.NullTime
	if d := o.ScheduledDate(); d != nil {
		scheduledDate = sql.NullTime{Time: *d, Valid: true}
	}
	var engineerID sql.NullString
	if e := o.EngineerID(); e != nil {
		engineerID = sql.NullString{String: e.String(), Valid: true}
	}
	return &models.PartnerOrder{
		ID:                   o.ID().String(),
		PartnerID:            o.PartnerID().String(),
		PartnerExternalID:    o.PartnerExternalID(),
		OrderNumber:          nullableString(o.OrderNumber()),
		ClientName:           nullableString(o.ClientName()),
		ClientPostcode:       nullableString(o.ClientPostcode()),
		JobAddress:           nullableString(o.JobAddress()),
		ScheduledDate:        scheduledDate,
		Status:               string(o.Status()),
		ManualStatusOverride: o.ManualStatusOverride(),
		EngineerID:           engineerID,
	}
}

func toDomainOrder(m *models.PartnerOrder) (partnerorder.PartnerOrder, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return partnerorder.PartnerOrder{}, errors.Wrap(err, "parse order id")
	}
	partnerID, err := uuid.Parse(m.PartnerID)
	if err != nil {
		return partnerorder.PartnerOrder{}, errors.Wrap(err, "parse partner id")
	}
	var scheduledDate *time.Time
	if m.ScheduledDate.Valid {
		d := m.ScheduledDate.Time
		scheduledDate = &d
	}
	var engineerID *uuid.UUID
	if m.EngineerID.Valid {
		e, err := uuid.Parse(m.EngineerID.String)
		if err != nil {
			return partnerorder.PartnerOrder{}, errors.Wrap(err, "parse engineer id")
		}
		engineerID = &e
	}
	return partnerorder.Hydrate(
		id,
		partnerID,
		m.PartnerExternalID,
		m.OrderNumber.String,
		m.ClientName.String,
		m.ClientPostcode.String,
		m.JobAddress.String,
		scheduledDate,
		partnerorder.Status(m.Status),
		m.ManualStatusOverride,
		engineerID,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
