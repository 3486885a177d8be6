package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/agenda-api/internal/model"
)

const pacienteColumns = `id, nombres, apellidos, rut, telefono, email, fecha_nacimiento, genero, direccion`

type pacienteRepository struct {
	BaseRepository
}

func (r *pacienteRepository) Create(ctx context.Context, pac *model.Paciente) error {
	start := time.Now()
	query := `
		INSERT INTO pac_paciente (nombres, apellidos, rut, telefono, email, fecha_nacimiento, genero, direccion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := mapError(r.db.QueryRowxContext(ctx, query,
		pac.Nombres,
		pac.Apellidos,
		pac.Rut,
		pac.Telefono,
		pac.Email,
		pac.FechaNacimiento,
		pac.Genero,
		pac.Direccion,
	).Scan(&pac.ID))
	r.observe("paciente.create", start, err)
	if err != nil {
		return fmt.Errorf("failed to create paciente: %w", err)
	}
	return nil
}

func (r *pacienteRepository) Get(ctx context.Context, id int64) (*model.Paciente, error) {
	start := time.Now()
	var pac model.Paciente
	err := mapError(r.db.GetContext(ctx, &pac, `SELECT `+pacienteColumns+` FROM pac_paciente WHERE id = $1`, id))
	r.observe("paciente.get", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get paciente: %w", err)
	}
	return &pac, nil
}

func (r *pacienteRepository) GetByRut(ctx context.Context, rut string) (*model.Paciente, error) {
	start := time.Now()
	var pac model.Paciente
	err := mapError(r.db.GetContext(ctx, &pac, `SELECT `+pacienteColumns+` FROM pac_paciente WHERE rut = $1`, rut))
	r.observe("paciente.get_by_rut", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get paciente: %w", err)
	}
	return &pac, nil
}

func (r *pacienteRepository) List(ctx context.Context) ([]*model.Paciente, error) {
	start := time.Now()
	var list []*model.Paciente
	err := r.db.SelectContext(ctx, &list, `SELECT `+pacienteColumns+` FROM pac_paciente ORDER BY id`)
	r.observe("paciente.list", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list pacientes: %w", err)
	}
	return list, nil
}

func (r *pacienteRepository) Update(ctx context.Context, pac *model.Paciente) error {
	start := time.Now()
	query := `
		UPDATE pac_paciente
		SET nombres = $1, apellidos = $2, rut = $3, telefono = $4, email = $5,
		    fecha_nacimiento = $6, genero = $7, direccion = $8
		WHERE id = $9
	`
	res, err := r.db.ExecContext(ctx, query,
		pac.Nombres, pac.Apellidos, pac.Rut, pac.Telefono, pac.Email,
		pac.FechaNacimiento, pac.Genero, pac.Direccion, pac.ID)
	if err == nil {
		err = requireAffected(res)
	}
	err = mapError(err)
	r.observe("paciente.update", start, err)
	if err != nil {
		return fmt.Errorf("failed to update paciente: %w", err)
	}
	return nil
}
