package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/agenda-api/internal/model"
)

const funcionarioColumns = `id, nombres, apellidos, rut, telefono, email, password, esp_id`

type funcionarioRepository struct {
	BaseRepository
}

func insertFuncionario(ctx context.Context, q sqlx.QueryerContext, fun *model.Funcionario) error {
	query := `
		INSERT INTO fun_funcionario (nombres, apellidos, rut, telefono, email, password, esp_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return mapError(q.QueryRowxContext(ctx, query,
		fun.Nombres,
		fun.Apellidos,
		fun.Rut,
		fun.Telefono,
		fun.Email,
		fun.Password,
		fun.EspecialidadID,
	).Scan(&fun.ID))
}

func (r *funcionarioRepository) Create(ctx context.Context, fun *model.Funcionario) error {
	start := time.Now()
	err := insertFuncionario(ctx, r.db, fun)
	r.observe("funcionario.create", start, err)
	if err != nil {
		return fmt.Errorf("failed to create funcionario: %w", err)
	}
	return nil
}

func (r *funcionarioRepository) CreateWithRoles(ctx context.Context, fun *model.Funcionario, roles []model.RolNombre) error {
	start := time.Now()
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertFuncionario(ctx, tx, fun); err != nil {
			return err
		}
		for _, nombre := range roles {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO rol_roles (nombre) VALUES ($1) ON CONFLICT (nombre) DO NOTHING`, nombre); err != nil {
				return fmt.Errorf("failed to create rol: %w", err)
			}
			query := `
				INSERT INTO rl_rol_fun (rol_id, fun_id)
				SELECT id, $2 FROM rol_roles WHERE nombre = $1
				ON CONFLICT DO NOTHING
			`
			if _, err := tx.ExecContext(ctx, query, nombre, fun.ID); err != nil {
				return fmt.Errorf("failed to assign rol: %w", mapError(err))
			}
		}
		return nil
	})
	r.observe("funcionario.create_with_roles", start, err)
	if err != nil {
		return fmt.Errorf("failed to create funcionario: %w", err)
	}
	return nil
}

func (r *funcionarioRepository) getBy(ctx context.Context, op, column string, value interface{}) (*model.Funcionario, error) {
	start := time.Now()
	query := `SELECT ` + funcionarioColumns + ` FROM fun_funcionario WHERE ` + column + ` = $1`
	var fun model.Funcionario
	err := mapError(r.db.GetContext(ctx, &fun, query, value))
	r.observe(op, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get funcionario: %w", err)
	}
	return &fun, nil
}

func (r *funcionarioRepository) Get(ctx context.Context, id int64) (*model.Funcionario, error) {
	return r.getBy(ctx, "funcionario.get", "id", id)
}

func (r *funcionarioRepository) GetByRut(ctx context.Context, rut string) (*model.Funcionario, error) {
	return r.getBy(ctx, "funcionario.get_by_rut", "rut", rut)
}

func (r *funcionarioRepository) GetByEmail(ctx context.Context, email string) (*model.Funcionario, error) {
	start := time.Now()
	query := `SELECT ` + funcionarioColumns + ` FROM fun_funcionario WHERE LOWER(email) = LOWER($1)`
	var fun model.Funcionario
	err := mapError(r.db.GetContext(ctx, &fun, query, email))
	r.observe("funcionario.get_by_email", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get funcionario: %w", err)
	}
	return &fun, nil
}

func (r *funcionarioRepository) SearchByName(ctx context.Context, name string) ([]*model.Funcionario, error) {
	return r.List(ctx, &model.FuncionarioFilters{Nombre: name})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE substring pattern matching s literally,
// using the default backslash escape.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r *funcionarioRepository) List(ctx context.Context, filters *model.FuncionarioFilters) ([]*model.Funcionario, error) {
	start := time.Now()
	query := `SELECT ` + funcionarioColumns + ` FROM fun_funcionario`

	var conditions []string
	var args []interface{}
	if filters != nil {
		if filters.Nombre != "" {
			args = append(args, containsPattern(filters.Nombre))
			conditions = append(conditions, fmt.Sprintf("(nombres ILIKE $%d OR apellidos ILIKE $%d)", len(args), len(args)))
		}
		if filters.Email != "" {
			args = append(args, filters.Email)
			conditions = append(conditions, fmt.Sprintf("LOWER(email) = LOWER($%d)", len(args)))
		}
		if filters.EspecialidadID != 0 {
			args = append(args, filters.EspecialidadID)
			conditions = append(conditions, fmt.Sprintf("esp_id = $%d", len(args)))
		}
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	var list []*model.Funcionario
	err := r.db.SelectContext(ctx, &list, query, args...)
	r.observe("funcionario.list", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list funcionarios: %w", err)
	}
	return list, nil
}

func (r *funcionarioRepository) Update(ctx context.Context, fun *model.Funcionario) error {
	start := time.Now()
	query := `
		UPDATE fun_funcionario
		SET nombres = $1, apellidos = $2, telefono = $3, email = $4, esp_id = $5
		WHERE id = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		fun.Nombres, fun.Apellidos, fun.Telefono, fun.Email, fun.EspecialidadID, fun.ID)
	if err == nil {
		err = requireAffected(res)
	}
	err = mapError(err)
	r.observe("funcionario.update", start, err)
	if err != nil {
		return fmt.Errorf("failed to update funcionario: %w", err)
	}
	return nil
}

func (r *funcionarioRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	start := time.Now()
	res, err := r.db.ExecContext(ctx, `UPDATE fun_funcionario SET password = $1 WHERE id = $2`, passwordHash, id)
	if err == nil {
		err = requireAffected(res)
	}
	r.observe("funcionario.update_password", start, err)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Delete drops the funcionario's citas first, since cit_cita restricts
// segment deletes. Grants, segments and cupos follow by ON DELETE CASCADE.
func (r *funcionarioRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			DELETE FROM cit_cita
			WHERE sgh_id IN (SELECT id FROM sgh_segmento_horario WHERE fun_id = $1)
		`
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to delete citas: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM fun_funcionario WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	r.observe("funcionario.delete", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete funcionario: %w", err)
	}
	return nil
}
