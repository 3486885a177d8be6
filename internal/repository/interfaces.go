package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/agenda-api/internal/model"
)

var (
	// ErrNotFound reports an absent row. Callers must treat it apart from
	// store failures.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate reports a unique constraint violation (RUT, email, grant).
	ErrDuplicate = errors.New("duplicate record")
	// ErrSegmentoOcupado reports an assignment onto a segment that is not free.
	ErrSegmentoOcupado = errors.New("segmento horario is not free")
)

// All repository interfaces in one file
type (
	EspecialidadRepository interface {
		Create(ctx context.Context, esp *model.Especialidad) error
		Get(ctx context.Context, id int64) (*model.Especialidad, error)
		List(ctx context.Context) ([]*model.Especialidad, error)
	}

	FuncionarioRepository interface {
		Create(ctx context.Context, fun *model.Funcionario) error
		// CreateWithRoles inserts the funcionario and grants the named roles
		// in one unit, creating any role missing from the catalog.
		CreateWithRoles(ctx context.Context, fun *model.Funcionario, roles []model.RolNombre) error
		Get(ctx context.Context, id int64) (*model.Funcionario, error)
		GetByRut(ctx context.Context, rut string) (*model.Funcionario, error)
		GetByEmail(ctx context.Context, email string) (*model.Funcionario, error)
		SearchByName(ctx context.Context, name string) ([]*model.Funcionario, error)
		List(ctx context.Context, filters *model.FuncionarioFilters) ([]*model.Funcionario, error)
		Update(ctx context.Context, fun *model.Funcionario) error
		UpdatePassword(ctx context.Context, id int64, passwordHash string) error
		// Delete removes the funcionario with its role grants, segments,
		// cupos and citas.
		Delete(ctx context.Context, id int64) error
	}

	PacienteRepository interface {
		Create(ctx context.Context, pac *model.Paciente) error
		Get(ctx context.Context, id int64) (*model.Paciente, error)
		GetByRut(ctx context.Context, rut string) (*model.Paciente, error)
		List(ctx context.Context) ([]*model.Paciente, error)
		Update(ctx context.Context, pac *model.Paciente) error
	}

	SegmentoRepository interface {
		// Create inserts the segment and its cupos atomically.
		Create(ctx context.Context, seg *model.SegmentoHorario, cupos []*model.Cupo) error
		Get(ctx context.Context, id int64) (*model.SegmentoHorario, error)
		ListByFuncionario(ctx context.Context, funcionarioID int64) ([]*model.SegmentoHorario, error)
		ListCupos(ctx context.Context, segmentoID int64) ([]*model.Cupo, error)
		// Update replaces the segment's fields and regenerates its cupos
		// atomically. Returns ErrSegmentoOcupado when a cita holds it.
		Update(ctx context.Context, seg *model.SegmentoHorario, cupos []*model.Cupo) error
		// Delete removes the segment and its cupos atomically. Returns
		// ErrSegmentoOcupado when a cita holds it.
		Delete(ctx context.Context, id int64) error
	}

	CitaRepository interface {
		// Assign books the patient onto a free segment in one unit: the
		// segment flips to occupied, its cupos to OCUPADO and one cita is
		// inserted. Returns ErrSegmentoOcupado without writing anything when
		// the segment is not free.
		Assign(ctx context.Context, pacienteID, segmentoID int64) (*model.Cita, error)
		Get(ctx context.Context, id int64) (*model.Cita, error)
		GetBySegmento(ctx context.Context, segmentoID int64) (*model.Cita, error)
		ListByPaciente(ctx context.Context, pacienteID int64) ([]*model.Cita, error)
		ListByFuncionario(ctx context.Context, funcionarioID int64) ([]*model.Cita, error)
	}

	RolRepository interface {
		Create(ctx context.Context, rol *model.Rol) error
		List(ctx context.Context) ([]*model.Rol, error)
		GetByNombre(ctx context.Context, nombre model.RolNombre) (*model.Rol, error)
		ListByFuncionario(ctx context.Context, funcionarioID int64) ([]*model.Rol, error)
		Assign(ctx context.Context, funcionarioID, rolID int64) error
		Remove(ctx context.Context, funcionarioID, rolID int64) error
		HasRole(ctx context.Context, funcionarioID int64, nombre model.RolNombre) (bool, error)
	}
)

// Repositories bundles one implementation of every repository.
type Repositories struct {
	Especialidades EspecialidadRepository
	Funcionarios   FuncionarioRepository
	Pacientes      PacienteRepository
	Segmentos      SegmentoRepository
	Citas          CitaRepository
	Roles          RolRepository
}
