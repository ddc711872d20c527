package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
)

// InMemImportProfileRepository is a map-backed Repository used by service
// tests. It applies the same timestamp behavior as the SQL implementation.
type InMemImportProfileRepository struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]importprofile.ImportProfile
}

func NewInMemImportProfileRepository() *InMemImportProfileRepository {
	return &InMemImportProfileRepository{
		profiles: make(map[uuid.UUID]importprofile.ImportProfile),
	}
}

func (r *InMemImportProfileRepository) GetByID(_ context.Context, id uuid.UUID) (importprofile.ImportProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[id]
	if !ok {
		return importprofile.ImportProfile{}, importprofile.ErrNotFound
	}
	return profile, nil
}

func (r *InMemImportProfileRepository) List(_ context.Context) ([]importprofile.ImportProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]importprofile.ImportProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

func (r *InMemImportProfileRepository) Create(_ context.Context, profile importprofile.ImportProfile) (importprofile.ImportProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := profile
	if stored.ID() == uuid.Nil {
		stored = stored.WithID(uuid.New())
	}
	stored = stored.WithTimestamps(time.Now(), time.Now())
	r.profiles[stored.ID()] = stored
	return stored, nil
}

func (r *InMemImportProfileRepository) Update(_ context.Context, profile importprofile.ImportProfile) (importprofile.ImportProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.profiles[profile.ID()]
	if !ok {
		return importprofile.ImportProfile{}, importprofile.ErrNotFound
	}
	stored := profile.WithTimestamps(existing.CreatedAt(), time.Now())
	r.profiles[stored.ID()] = stored
	return stored, nil
}
