package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/agenda-api/internal/model"
)

type especialidadRepository struct {
	BaseRepository
}

func (r *especialidadRepository) Create(ctx context.Context, esp *model.Especialidad) error {
	start := time.Now()
	query := `INSERT INTO esp_especialidad (nombre) VALUES ($1) RETURNING id`
	err := mapError(r.db.QueryRowxContext(ctx, query, esp.Nombre).Scan(&esp.ID))
	r.observe("especialidad.create", start, err)
	if err != nil {
		return fmt.Errorf("failed to create especialidad: %w", err)
	}
	return nil
}

func (r *especialidadRepository) Get(ctx context.Context, id int64) (*model.Especialidad, error) {
	start := time.Now()
	var esp model.Especialidad
	err := mapError(r.db.GetContext(ctx, &esp, `SELECT id, nombre FROM esp_especialidad WHERE id = $1`, id))
	r.observe("especialidad.get", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get especialidad: %w", err)
	}
	return &esp, nil
}

func (r *especialidadRepository) List(ctx context.Context) ([]*model.Especialidad, error) {
	start := time.Now()
	var list []*model.Especialidad
	err := r.db.SelectContext(ctx, &list, `SELECT id, nombre FROM esp_especialidad ORDER BY id`)
	r.observe("especialidad.list", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list especialidades: %w", err)
	}
	return list, nil
}
