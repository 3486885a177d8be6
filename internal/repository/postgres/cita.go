package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/agenda-api/internal/model"
)

const citaColumns = `c.id, c.sgh_id, c.pac_id, c.created_at`

type citaRepository struct {
	BaseRepository
}

func (r *citaRepository) Assign(ctx context.Context, pacienteID, segmentoID int64) (*model.Cita, error) {
	start := time.Now()
	cita := &model.Cita{
		SegmentoID: segmentoID,
		PacienteID: pacienteID,
		CreatedAt:  time.Now().UTC(),
	}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockFree(ctx, tx, segmentoID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE sgh_segmento_horario SET free = FALSE WHERE id = $1`, segmentoID); err != nil {
			return fmt.Errorf("failed to occupy segmento: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE cup_cupo SET estado = $1 WHERE sgh_id = $2`, model.CupoOcupado, segmentoID); err != nil {
			return fmt.Errorf("failed to occupy cupos: %w", err)
		}

		query := `INSERT INTO cit_cita (sgh_id, pac_id, created_at) VALUES ($1, $2, $3) RETURNING id`
		if err := tx.QueryRowxContext(ctx, query, segmentoID, pacienteID, cita.CreatedAt).Scan(&cita.ID); err != nil {
			return fmt.Errorf("failed to insert cita: %w", mapError(err))
		}
		return nil
	})
	r.observe("cita.assign", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to assign cita: %w", err)
	}
	return cita, nil
}

func (r *citaRepository) getOne(ctx context.Context, op, where string, arg int64) (*model.Cita, error) {
	start := time.Now()
	var cita model.Cita
	err := mapError(r.db.GetContext(ctx, &cita, `SELECT `+citaColumns+` FROM cit_cita c WHERE `+where+` = $1`, arg))
	r.observe(op, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get cita: %w", err)
	}
	return &cita, nil
}

func (r *citaRepository) Get(ctx context.Context, id int64) (*model.Cita, error) {
	return r.getOne(ctx, "cita.get", "c.id", id)
}

func (r *citaRepository) GetBySegmento(ctx context.Context, segmentoID int64) (*model.Cita, error) {
	return r.getOne(ctx, "cita.get_by_segmento", "c.sgh_id", segmentoID)
}

func (r *citaRepository) ListByPaciente(ctx context.Context, pacienteID int64) ([]*model.Cita, error) {
	start := time.Now()
	query := `SELECT ` + citaColumns + ` FROM cit_cita c WHERE c.pac_id = $1 ORDER BY c.id`
	var list []*model.Cita
	err := r.db.SelectContext(ctx, &list, query, pacienteID)
	r.observe("cita.list_by_paciente", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list citas: %w", err)
	}
	return list, nil
}

func (r *citaRepository) ListByFuncionario(ctx context.Context, funcionarioID int64) ([]*model.Cita, error) {
	start := time.Now()
	query := `
		SELECT ` + citaColumns + `
		FROM cit_cita c
		JOIN sgh_segmento_horario s ON s.id = c.sgh_id
		WHERE s.fun_id = $1
		ORDER BY s.fecha_hora_inicio
	`
	var list []*model.Cita
	err := r.db.SelectContext(ctx, &list, query, funcionarioID)
	r.observe("cita.list_by_funcionario", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list citas: %w", err)
	}
	return list, nil
}
