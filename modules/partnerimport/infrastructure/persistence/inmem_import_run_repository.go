package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importrun"
)

type InMemImportRunRepository struct {
	mu   sync.RWMutex
	runs []importrun.ImportRun
}

func NewInMemImportRunRepository() *InMemImportRunRepository {
	return &InMemImportRunRepository{}
}

func (r *InMemImportRunRepository) Create(_ context.Context, run importrun.ImportRun) (importrun.ImportRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	r.runs = append(r.runs, run)
	return run, nil
}

func (r *InMemImportRunRepository) ListByProfile(_ context.Context, profileID uuid.UUID, limit int) ([]importrun.ImportRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []importrun.ImportRun
	for _, run := range r.runs {
		if run.ProfileID == profileID {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
