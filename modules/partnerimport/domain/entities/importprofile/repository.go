package importprofile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("import profile not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (ImportProfile, error)
	List(ctx context.Context) ([]ImportProfile, error)
	Create(ctx context.Context, profile ImportProfile) (ImportProfile, error)
	Update(ctx context.Context, profile ImportProfile) (ImportProfile, error)
}
