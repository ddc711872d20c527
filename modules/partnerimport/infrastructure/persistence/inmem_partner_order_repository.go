package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
)

type partnerKey struct {
	partnerID  uuid.UUID
	externalID string
}

// InMemPartnerOrderRepository mirrors the SQL repository's conflict behavior:
// inserting a duplicate (partner_id, partner_external_id) key reports
// inserted=false instead of failing.
type InMemPartnerOrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]partnerorder.PartnerOrder
	byKey  map[partnerKey]uuid.UUID
}

func NewInMemPartnerOrderRepository() *InMemPartnerOrderRepository {
	return &InMemPartnerOrderRepository{
		orders: make(map[uuid.UUID]partnerorder.PartnerOrder),
		byKey:  make(map[partnerKey]uuid.UUID),
	}
}

func (r *InMemPartnerOrderRepository) GetByPartnerKey(_ context.Context, partnerID uuid.UUID, partnerExternalID string) (partnerorder.PartnerOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[partnerKey{partnerID: partnerID, externalID: partnerExternalID}]
	if !ok {
		return partnerorder.PartnerOrder{}, partnerorder.ErrNotFound
	}
	return r.orders[id], nil
}

func (r *InMemPartnerOrderRepository) GetByOrderNumber(_ context.Context, partnerID uuid.UUID, orderNumber string) (partnerorder.PartnerOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.PartnerID() == partnerID && order.OrderNumber() == orderNumber {
			return order, nil
		}
	}
	return partnerorder.PartnerOrder{}, partnerorder.ErrNotFound
}

func (r *InMemPartnerOrderRepository) Insert(_ context.Context, order partnerorder.PartnerOrder) (partnerorder.PartnerOrder, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := partnerKey{partnerID: order.PartnerID(), externalID: order.PartnerExternalID()}
	if _, exists := r.byKey[key]; exists {
		return partnerorder.PartnerOrder{}, false, nil
	}

	stored := order
	if stored.ID() == uuid.Nil {
		stored = stored.WithID(uuid.New())
	}
	stored = stored.WithTimestamps(time.Now(), time.Now())
	r.orders[stored.ID()] = stored
	r.byKey[key] = stored.ID()
	return stored, true, nil
}

func (r *InMemPartnerOrderRepository) Update(_ context.Context, id uuid.UUID, patch partnerorder.Patch) (partnerorder.PartnerOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orders[id]
	if !ok {
		return partnerorder.PartnerOrder{}, partnerorder.ErrNotFound
	}
	updated := existing.Apply(patch).WithTimestamps(existing.CreatedAt(), time.Now())
	r.orders[id] = updated
	return updated, nil
}

// Seed stores an order directly, bypassing conflict checks. Test setup only.
func (r *InMemPartnerOrderRepository) Seed(order partnerorder.PartnerOrder) partnerorder.PartnerOrder {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := order
	if stored.ID() == uuid.Nil {
		stored = stored.WithID(uuid.New())
	}
	r.orders[stored.ID()] = stored
	r.byKey[partnerKey{partnerID: stored.PartnerID(), externalID: stored.PartnerExternalID()}] = stored.ID()
	return stored
}

// Count reports the number of stored orders.
func (r *InMemPartnerOrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

// Get returns a stored order by id for test assertions.
func (r *InMemPartnerOrderRepository) Get(id uuid.UUID) (partnerorder.PartnerOrder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	return order, ok
}
