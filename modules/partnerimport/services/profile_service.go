package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
)

type ProfileService struct {
	repo importprofile.Repository
}

func NewProfileService(repo importprofile.Repository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) GetByID(ctx context.Context, id uuid.UUID) (importprofile.ImportProfile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProfileService) List(ctx context.Context) ([]importprofile.ImportProfile, error) {
	return s.repo.List(ctx)
}

func (s *ProfileService) Create(ctx context.Context, dto *importprofile.CreateDTO) (importprofile.ImportProfile, error) {
	profile, err := dto.ToEntity()
	if err != nil {
		return importprofile.ImportProfile{}, err
	}
	return s.repo.Create(ctx, profile)
}

// SetActive enables or disables a profile. Runs against an inactive profile
// are rejected before any row is read.
func (s *ProfileService) SetActive(ctx context.Context, id uuid.UUID, active bool) (importprofile.ImportProfile, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return importprofile.ImportProfile{}, err
	}
	return s.repo.Update(ctx, profile.WithActive(active))
}
