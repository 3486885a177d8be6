package funcionario

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	"github.com/jwalitptl/agenda-api/internal/service/segmento"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/security"
	"github.com/jwalitptl/agenda-api/pkg/validator"
)

const (
	msgNotFound             = "Funcionario no encontrado"
	msgEspecialidadNotFound = "Especialidad no encontrada"
	msgRutTaken             = "El RUT ya está registrado"
	msgEmailTaken           = "El correo ya está registrado"
)

// RoleInvalidator drops cached role sets after grants change.
type RoleInvalidator interface {
	Invalidate(funcionarioID int64)
}

type Service struct {
	funcionarioRepo  repository.FuncionarioRepository
	especialidadRepo repository.EspecialidadRepository
	segmentos        *segmento.Service
	hasher           security.PasswordHasher
	roles            RoleInvalidator
}

func NewService(funcionarioRepo repository.FuncionarioRepository, especialidadRepo repository.EspecialidadRepository,
	segmentos *segmento.Service, hasher security.PasswordHasher, roles RoleInvalidator) *Service {
	return &Service{
		funcionarioRepo:  funcionarioRepo,
		especialidadRepo: especialidadRepo,
		segmentos:        segmentos,
		hasher:           hasher,
		roles:            roles,
	}
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(msgNotFound, err)
	}
	return apperrors.Internal(err)
}

func (s *Service) checkEspecialidad(ctx context.Context, id int64) error {
	if _, err := s.especialidadRepo.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound(msgEspecialidadNotFound, err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

// checkUnique rejects a RUT or email already held by another funcionario.
func (s *Service) checkUnique(ctx context.Context, id int64, rut, email string) error {
	if rut != "" {
		existing, err := s.funcionarioRepo.GetByRut(ctx, rut)
		switch {
		case err == nil && existing.ID != id:
			return apperrors.Conflict(msgRutTaken, nil)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return apperrors.Internal(err)
		}
	}
	existing, err := s.funcionarioRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != id:
		return apperrors.Conflict(msgEmailTaken, nil)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return apperrors.Internal(err)
	}
	return nil
}

// Register creates the funcionario and grants it every role.
func (s *Service) Register(ctx context.Context, req *model.RegisterFuncionarioRequest) (*model.Funcionario, error) {
	rut := validator.CleanRut(req.Rut)

	var checks validator.Checks
	checks.Add("rut", validator.ValidateRut(rut))
	checks.Add("nombres", validator.ValidateNombre(req.Nombres))
	checks.Add("apellidos", validator.ValidateNombre(req.Apellidos))
	checks.Add("email", validator.ValidateEmail(req.Email))
	checks.Add("password", validator.ValidatePassword(req.Password))
	if err := checks.Err(); err != nil {
		return nil, err
	}

	if err := s.checkEspecialidad(ctx, req.EspecialidadID); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, 0, rut, req.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	fun := &model.Funcionario{
		Nombres:        strings.TrimSpace(req.Nombres),
		Apellidos:      strings.TrimSpace(req.Apellidos),
		Rut:            rut,
		Telefono:       strings.TrimSpace(req.Telefono),
		Email:          strings.TrimSpace(req.Email),
		Password:       hash,
		EspecialidadID: req.EspecialidadID,
	}
	if err := s.funcionarioRepo.CreateWithRoles(ctx, fun, model.AllRoles); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.Conflict(msgRutTaken, err)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound(msgEspecialidadNotFound, err)
		}
		return nil, apperrors.Internal(err)
	}
	fun.Roles = model.AllRoles

	log.Info().Int64("funcionario_id", fun.ID).Str("rut", fun.Rut).Msg("funcionario registered")
	return fun, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Funcionario, error) {
	fun, err := s.funcionarioRepo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return fun, nil
}

func (s *Service) GetByRut(ctx context.Context, rut string) (*model.Funcionario, error) {
	fun, err := s.funcionarioRepo.GetByRut(ctx, validator.CleanRut(rut))
	if err != nil {
		return nil, notFound(err)
	}
	return fun, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*model.Funcionario, error) {
	fun, err := s.funcionarioRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err)
	}
	return fun, nil
}

func (s *Service) Search(ctx context.Context, name string) ([]*model.Funcionario, error) {
	list, err := s.funcionarioRepo.SearchByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

// List applies the filters. With Disponibilidad set every funcionario is
// decorated with whether it has a free segment this week.
func (s *Service) List(ctx context.Context, filters *model.FuncionarioFilters) ([]*model.Funcionario, error) {
	list, err := s.funcionarioRepo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if filters == nil || !filters.Disponibilidad {
		return list, nil
	}

	for _, fun := range list {
		ok, err := s.segmentos.HasAvailabilityThisWeek(ctx, fun.ID)
		if err != nil {
			return nil, err
		}
		fun.TieneDisponibilidad = &ok
	}
	return list, nil
}

func (s *Service) Disponibilidad(ctx context.Context, id int64) (bool, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}
	return s.segmentos.HasAvailabilityThisWeek(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, req *model.UpdateFuncionarioRequest) (*model.Funcionario, error) {
	fun, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var checks validator.Checks
	checks.Add("nombres", validator.ValidateNombre(req.Nombres))
	checks.Add("apellidos", validator.ValidateNombre(req.Apellidos))
	checks.Add("email", validator.ValidateEmail(req.Email))
	if err := checks.Err(); err != nil {
		return nil, err
	}
	if err := s.checkEspecialidad(ctx, req.EspecialidadID); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, id, "", req.Email); err != nil {
		return nil, err
	}

	fun.Nombres = strings.TrimSpace(req.Nombres)
	fun.Apellidos = strings.TrimSpace(req.Apellidos)
	fun.Telefono = strings.TrimSpace(req.Telefono)
	fun.Email = strings.TrimSpace(req.Email)
	fun.EspecialidadID = req.EspecialidadID

	if err := s.funcionarioRepo.Update(ctx, fun); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(msgEmailTaken, err)
		}
		return nil, notFound(err)
	}
	return fun, nil
}

func (s *Service) ChangePassword(ctx context.Context, id int64, password string) error {
	if err := s.setPassword(ctx, id, password, validator.ValidatePassword); err != nil {
		return err
	}
	log.Info().Int64("funcionario_id", id).Msg("password changed")
	return nil
}

// ResetPassword applies the stronger policy used by account recovery.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	return s.setPassword(ctx, id, password, validator.ValidateStrongPassword)
}

func (s *Service) setPassword(ctx context.Context, id int64, password string, policy func(string) validator.Kind) error {
	var checks validator.Checks
	checks.Add("password", policy(password))
	if err := checks.Err(); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.funcionarioRepo.UpdatePassword(ctx, id, hash); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.funcionarioRepo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	if s.roles != nil {
		s.roles.Invalidate(id)
	}
	log.Info().Int64("funcionario_id", id).Msg("funcionario deleted")
	return nil
}

func (s *Service) Segmentos(ctx context.Context, id int64) ([]*model.SegmentoHorario, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.segmentos.ListByFuncionario(ctx, id)
}
