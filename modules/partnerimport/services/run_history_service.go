package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importrun"
)

// RunHistoryService exposes the audit trail of applied import runs.
type RunHistoryService struct {
	repo importrun.Repository
}

func NewRunHistoryService(repo importrun.Repository) *RunHistoryService {
	return &RunHistoryService{repo: repo}
}

func (s *RunHistoryService) ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]importrun.ImportRun, error) {
	return s.repo.ListByProfile(ctx, profileID, limit)
}
