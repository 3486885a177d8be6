package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
)

const (
	segmentoColumns = `id, nombre, fecha_hora_inicio, fecha_hora_fin, fun_id, free`
	cupoColumns     = `id, estado, fecha_hora_inicio, fecha_hora_fin, duracion, sgh_id`
)

type segmentoRepository struct {
	BaseRepository
}

func insertCupos(ctx context.Context, tx *sqlx.Tx, segmentoID int64, cupos []*model.Cupo) error {
	query := `
		INSERT INTO cup_cupo (estado, fecha_hora_inicio, fecha_hora_fin, duracion, sgh_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for _, c := range cupos {
		c.SegmentoID = segmentoID
		if err := tx.QueryRowxContext(ctx, query,
			c.Estado, c.FechaHoraInicio, c.FechaHoraFin, c.Duracion, c.SegmentoID,
		).Scan(&c.ID); err != nil {
			return fmt.Errorf("failed to insert cupo: %w", mapError(err))
		}
	}
	return nil
}

// lockFree takes the segment row lock and fails with ErrSegmentoOcupado
// when the segment is booked.
func lockFree(ctx context.Context, tx *sqlx.Tx, id int64) error {
	var free bool
	err := tx.GetContext(ctx, &free, `SELECT free FROM sgh_segmento_horario WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return mapError(err)
	}
	if !free {
		return repository.ErrSegmentoOcupado
	}
	return nil
}

func (r *segmentoRepository) Create(ctx context.Context, seg *model.SegmentoHorario, cupos []*model.Cupo) error {
	start := time.Now()
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO sgh_segmento_horario (nombre, fecha_hora_inicio, fecha_hora_fin, fun_id, free)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		if err := tx.QueryRowxContext(ctx, query,
			seg.Nombre, seg.FechaHoraInicio, seg.FechaHoraFin, seg.FuncionarioID, seg.Free,
		).Scan(&seg.ID); err != nil {
			return fmt.Errorf("failed to insert segmento: %w", mapError(err))
		}
		return insertCupos(ctx, tx, seg.ID, cupos)
	})
	r.observe("segmento.create", start, err)
	if err != nil {
		return fmt.Errorf("failed to create segmento: %w", err)
	}
	return nil
}

func (r *segmentoRepository) Get(ctx context.Context, id int64) (*model.SegmentoHorario, error) {
	start := time.Now()
	var seg model.SegmentoHorario
	err := mapError(r.db.GetContext(ctx, &seg, `SELECT `+segmentoColumns+` FROM sgh_segmento_horario WHERE id = $1`, id))
	r.observe("segmento.get", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get segmento: %w", err)
	}
	return &seg, nil
}

func (r *segmentoRepository) ListByFuncionario(ctx context.Context, funcionarioID int64) ([]*model.SegmentoHorario, error) {
	start := time.Now()
	query := `SELECT ` + segmentoColumns + ` FROM sgh_segmento_horario WHERE fun_id = $1 ORDER BY fecha_hora_inicio`
	var list []*model.SegmentoHorario
	err := r.db.SelectContext(ctx, &list, query, funcionarioID)
	r.observe("segmento.list_by_funcionario", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list segmentos: %w", err)
	}
	return list, nil
}

func (r *segmentoRepository) ListCupos(ctx context.Context, segmentoID int64) ([]*model.Cupo, error) {
	start := time.Now()
	query := `SELECT ` + cupoColumns + ` FROM cup_cupo WHERE sgh_id = $1 ORDER BY fecha_hora_inicio`
	var list []*model.Cupo
	err := r.db.SelectContext(ctx, &list, query, segmentoID)
	r.observe("segmento.list_cupos", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list cupos: %w", err)
	}
	return list, nil
}

func (r *segmentoRepository) Update(ctx context.Context, seg *model.SegmentoHorario, cupos []*model.Cupo) error {
	start := time.Now()
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockFree(ctx, tx, seg.ID); err != nil {
			return err
		}
		query := `
			UPDATE sgh_segmento_horario
			SET nombre = $1, fecha_hora_inicio = $2, fecha_hora_fin = $3, fun_id = $4, free = $5
			WHERE id = $6
		`
		res, err := tx.ExecContext(ctx, query,
			seg.Nombre, seg.FechaHoraInicio, seg.FechaHoraFin, seg.FuncionarioID, seg.Free, seg.ID)
		if err != nil {
			return fmt.Errorf("failed to update segmento: %w", mapError(err))
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cup_cupo WHERE sgh_id = $1`, seg.ID); err != nil {
			return fmt.Errorf("failed to delete cupos: %w", err)
		}
		return insertCupos(ctx, tx, seg.ID, cupos)
	})
	r.observe("segmento.update", start, err)
	if err != nil {
		return fmt.Errorf("failed to update segmento: %w", err)
	}
	return nil
}

func (r *segmentoRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockFree(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cup_cupo WHERE sgh_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete cupos: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM sgh_segmento_horario WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete segmento: %w", err)
		}
		return requireAffected(res)
	})
	r.observe("segmento.delete", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete segmento: %w", err)
	}
	return nil
}
