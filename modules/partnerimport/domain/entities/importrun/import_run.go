package importrun

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/mapping"
)

// ImportRun is the audit record of one apply-mode import. Dry-runs leave no
// trace here; their summary only goes back to the caller.
type ImportRun struct {
	ID         uuid.UUID
	ProfileID  uuid.UUID
	PartnerID  uuid.UUID
	DryRun     bool
	Summary    mapping.RunSummary
	StartedAt  time.Time
	FinishedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, run ImportRun) (ImportRun, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]ImportRun, error)
}
