package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/agenda-api/internal/model"
)

type rolRepository struct {
	BaseRepository
}

func (r *rolRepository) Create(ctx context.Context, rol *model.Rol) error {
	start := time.Now()
	err := mapError(r.db.QueryRowxContext(ctx,
		`INSERT INTO rol_roles (nombre) VALUES ($1) RETURNING id`, rol.Nombre).Scan(&rol.ID))
	r.observe("rol.create", start, err)
	if err != nil {
		return fmt.Errorf("failed to create rol: %w", err)
	}
	return nil
}

func (r *rolRepository) List(ctx context.Context) ([]*model.Rol, error) {
	start := time.Now()
	var list []*model.Rol
	err := r.db.SelectContext(ctx, &list, `SELECT id, nombre FROM rol_roles ORDER BY id`)
	r.observe("rol.list", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return list, nil
}

func (r *rolRepository) GetByNombre(ctx context.Context, nombre model.RolNombre) (*model.Rol, error) {
	start := time.Now()
	var rol model.Rol
	err := mapError(r.db.GetContext(ctx, &rol, `SELECT id, nombre FROM rol_roles WHERE nombre = $1`, nombre))
	r.observe("rol.get_by_nombre", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get rol: %w", err)
	}
	return &rol, nil
}

func (r *rolRepository) ListByFuncionario(ctx context.Context, funcionarioID int64) ([]*model.Rol, error) {
	start := time.Now()
	query := `
		SELECT r.id, r.nombre
		FROM rol_roles r
		JOIN rl_rol_fun rf ON rf.rol_id = r.id
		WHERE rf.fun_id = $1
		ORDER BY r.id
	`
	var list []*model.Rol
	err := r.db.SelectContext(ctx, &list, query, funcionarioID)
	r.observe("rol.list_by_funcionario", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return list, nil
}

// Assign is idempotent: granting a held role is not an error.
func (r *rolRepository) Assign(ctx context.Context, funcionarioID, rolID int64) error {
	start := time.Now()
	query := `INSERT INTO rl_rol_fun (rol_id, fun_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, rolID, funcionarioID)
	err = mapError(err)
	r.observe("rol.assign", start, err)
	if err != nil {
		return fmt.Errorf("failed to assign rol: %w", err)
	}
	return nil
}

func (r *rolRepository) Remove(ctx context.Context, funcionarioID, rolID int64) error {
	start := time.Now()
	res, err := r.db.ExecContext(ctx, `DELETE FROM rl_rol_fun WHERE rol_id = $1 AND fun_id = $2`, rolID, funcionarioID)
	if err == nil {
		err = requireAffected(res)
	}
	r.observe("rol.remove", start, err)
	if err != nil {
		return fmt.Errorf("failed to remove rol: %w", err)
	}
	return nil
}

func (r *rolRepository) HasRole(ctx context.Context, funcionarioID int64, nombre model.RolNombre) (bool, error) {
	start := time.Now()
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM rl_rol_fun rf
			JOIN rol_roles r ON r.id = rf.rol_id
			WHERE rf.fun_id = $1 AND r.nombre = $2
		)
	`
	var ok bool
	err := r.db.GetContext(ctx, &ok, query, funcionarioID, nombre)
	r.observe("rol.has_role", start, err)
	if err != nil {
		return false, fmt.Errorf("failed to check rol: %w", err)
	}
	return ok, nil
}
