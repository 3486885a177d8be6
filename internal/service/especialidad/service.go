package especialidad

import (
	"context"
	"errors"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
)

type Service struct {
	repo repository.EspecialidadRepository
}

func NewService(repo repository.EspecialidadRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*model.Especialidad, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Especialidad, error) {
	esp, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Especialidad no encontrada", err)
		}
		return nil, apperrors.Internal(err)
	}
	return esp, nil
}
