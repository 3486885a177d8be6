package paciente

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/validator"
)

const (
	msgNotFound  = "Paciente no encontrado"
	msgDuplicate = "Ya existe un paciente con ese RUT"
)

type Service struct {
	repo repository.PacienteRepository
	now  func() time.Time
}

func NewService(repo repository.PacienteRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// fromRequest validates the intake form and builds the paciente. The RUT is
// stored cleaned.
func (s *Service) fromRequest(req *model.PacienteRequest) (*model.Paciente, error) {
	rut := validator.CleanRut(req.Rut)

	var checks validator.Checks
	checks.Add("rut", validator.ValidateRut(rut))
	checks.Add("nombres", validator.ValidateNombre(req.Nombres))
	checks.Add("apellidos", validator.ValidateNombre(req.Apellidos))
	checks.Add("email", validator.ValidateEmail(req.Email))
	checks.Add("telefono", validator.ValidateTelefono(req.Telefono))
	checks.Add("fechaNacimiento", validator.ValidateBirthDate(req.FechaNacimiento, s.now()))
	switch req.Genero {
	case model.GeneroMasculino, model.GeneroFemenino, model.GeneroOtro:
	default:
		checks.Add("genero", validator.Required)
	}
	if strings.TrimSpace(req.Direccion) == "" {
		checks.Add("direccion", validator.Required)
	}
	if err := checks.Err(); err != nil {
		return nil, err
	}

	nacimiento, err := model.ParseDate(req.FechaNacimiento)
	if err != nil {
		return nil, apperrors.Validation(apperrors.Field{
			Field: "fechaNacimiento", Kind: string(validator.InvalidDate), Message: validator.InvalidDate.Message(),
		})
	}

	return &model.Paciente{
		Nombres:         strings.TrimSpace(req.Nombres),
		Apellidos:       strings.TrimSpace(req.Apellidos),
		Rut:             rut,
		Telefono:        strings.TrimSpace(req.Telefono),
		Email:           strings.TrimSpace(req.Email),
		FechaNacimiento: nacimiento,
		Genero:          req.Genero,
		Direccion:       strings.TrimSpace(req.Direccion),
	}, nil
}

func (s *Service) Create(ctx context.Context, req *model.PacienteRequest) (*model.Paciente, error) {
	pac, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, pac); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(msgDuplicate, err)
		}
		return nil, apperrors.Internal(err)
	}
	return pac, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *model.PacienteRequest) (*model.Paciente, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	pac, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	pac.ID = id

	if err := s.repo.Update(ctx, pac); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound(msgNotFound, err)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.Conflict(msgDuplicate, err)
		}
		return nil, apperrors.Internal(err)
	}
	return pac, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Paciente, error) {
	pac, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(msgNotFound, err)
		}
		return nil, apperrors.Internal(err)
	}
	return pac, nil
}

func (s *Service) GetByRut(ctx context.Context, rut string) (*model.Paciente, error) {
	pac, err := s.repo.GetByRut(ctx, validator.CleanRut(rut))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(msgNotFound, err)
		}
		return nil, apperrors.Internal(err)
	}
	return pac, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Paciente, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}
