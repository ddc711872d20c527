package partnerorder

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("partner order not found")

type Repository interface {
	// GetByPartnerKey resolves an order by its (partnerID, partnerExternalID)
	// identity. Returns ErrNotFound when no such order exists.
	GetByPartnerKey(ctx context.Context, partnerID uuid.UUID, partnerExternalID string) (PartnerOrder, error)

	// GetByOrderNumber is the fallback match for rows that carry only an
	// internal order number. Returns ErrNotFound when no such order exists.
	GetByOrderNumber(ctx context.Context, partnerID uuid.UUID, orderNumber string) (PartnerOrder, error)

	// Insert creates the order and reports whether the insert actually
	// happened. inserted=false with a nil error means the unique
	// (partner_id, partner_external_id) key already existed: the caller must
	// re-fetch and degrade to an update.
	Insert(ctx context.Context, order PartnerOrder) (created PartnerOrder, inserted bool, err error)

	// Update applies the patch to the identified order and returns the
	// updated row.
	Update(ctx context.Context, id uuid.UUID, patch Patch) (PartnerOrder, error)
}
