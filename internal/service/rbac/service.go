package rbac

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
)

const (
	roleCacheTTL     = 5 * time.Minute
	roleCacheCleanup = 10 * time.Minute
)

type Service struct {
	rolRepo         repository.RolRepository
	funcionarioRepo repository.FuncionarioRepository
	cache           *cache.Cache
}

func NewService(rolRepo repository.RolRepository, funcionarioRepo repository.FuncionarioRepository) *Service {
	return &Service{
		rolRepo:         rolRepo,
		funcionarioRepo: funcionarioRepo,
		cache:           cache.New(roleCacheTTL, roleCacheCleanup),
	}
}

func cacheKey(funcionarioID int64) string {
	return strconv.FormatInt(funcionarioID, 10)
}

// Invalidate drops the cached role set of one funcionario.
func (s *Service) Invalidate(funcionarioID int64) {
	s.cache.Delete(cacheKey(funcionarioID))
}

func (s *Service) ListRoles(ctx context.Context) ([]*model.Rol, error) {
	list, err := s.rolRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

// Roles returns the names of the roles held by the funcionario.
func (s *Service) Roles(ctx context.Context, funcionarioID int64) ([]model.RolNombre, error) {
	if cached, ok := s.cache.Get(cacheKey(funcionarioID)); ok {
		return cached.([]model.RolNombre), nil
	}

	roles, err := s.rolRepo.ListByFuncionario(ctx, funcionarioID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	names := make([]model.RolNombre, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Nombre)
	}
	s.cache.Set(cacheKey(funcionarioID), names, cache.DefaultExpiration)
	return names, nil
}

func (s *Service) HasRole(ctx context.Context, funcionarioID int64, nombre model.RolNombre) (bool, error) {
	roles, err := s.Roles(ctx, funcionarioID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r == nombre {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) resolve(ctx context.Context, funcionarioID int64, nombre model.RolNombre) (*model.Rol, error) {
	if !nombre.Valid() {
		return nil, apperrors.BadRequest("Rol desconocido", nil)
	}
	if _, err := s.funcionarioRepo.Get(ctx, funcionarioID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Funcionario no encontrado", err)
		}
		return nil, apperrors.Internal(err)
	}
	rol, err := s.rolRepo.GetByNombre(ctx, nombre)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Rol no encontrado", err)
		}
		return nil, apperrors.Internal(err)
	}
	return rol, nil
}

func (s *Service) AssignRole(ctx context.Context, funcionarioID int64, nombre model.RolNombre) error {
	rol, err := s.resolve(ctx, funcionarioID, nombre)
	if err != nil {
		return err
	}
	if err := s.rolRepo.Assign(ctx, funcionarioID, rol.ID); err != nil {
		return apperrors.Internal(err)
	}
	s.Invalidate(funcionarioID)
	log.Info().Int64("funcionario_id", funcionarioID).Str("rol", string(nombre)).Msg("role granted")
	return nil
}

func (s *Service) RemoveRole(ctx context.Context, funcionarioID int64, nombre model.RolNombre) error {
	rol, err := s.resolve(ctx, funcionarioID, nombre)
	if err != nil {
		return err
	}
	if err := s.rolRepo.Remove(ctx, funcionarioID, rol.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("El funcionario no tiene ese rol", err)
		}
		return apperrors.Internal(err)
	}
	s.Invalidate(funcionarioID)
	log.Info().Int64("funcionario_id", funcionarioID).Str("rol", string(nombre)).Msg("role removed")
	return nil
}
