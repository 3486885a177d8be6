// Package seed loads the demo data set through the repository interfaces,
// so the memory and postgres backends start from the same state.
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	"github.com/jwalitptl/agenda-api/internal/service/segmento"
	"github.com/jwalitptl/agenda-api/pkg/security"
)

// Load inserts the fixtures unless specialties already exist.
func Load(ctx context.Context, repos repository.Repositories, hasher security.PasswordHasher) error {
	existing, err := repos.Especialidades.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing data: %w", err)
	}
	if len(existing) > 0 {
		log.Info().Msg("seed data already present, skipping")
		return nil
	}

	espIDs := make([]int64, 0, len(especialidades))
	for _, nombre := range especialidades {
		esp := &model.Especialidad{Nombre: nombre}
		if err := repos.Especialidades.Create(ctx, esp); err != nil {
			return fmt.Errorf("failed to seed especialidad %s: %w", nombre, err)
		}
		espIDs = append(espIDs, esp.ID)
	}

	roleIDs := make(map[model.RolNombre]int64, len(model.AllRoles))
	for _, nombre := range model.AllRoles {
		rol := &model.Rol{Nombre: nombre}
		if err := repos.Roles.Create(ctx, rol); err != nil {
			return fmt.Errorf("failed to seed rol %s: %w", nombre, err)
		}
		roleIDs[nombre] = rol.ID
	}

	hash, err := hasher.Hash(DefaultPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	funIDs := make([]int64, 0, len(funcionarios))
	for i, row := range funcionarios {
		fun := &model.Funcionario{
			Nombres:        row.nombres,
			Apellidos:      row.apellidos,
			Rut:            row.rut,
			Telefono:       row.telefono,
			Email:          row.email,
			Password:       hash,
			EspecialidadID: espIDs[row.especialidad-1],
		}
		if err := repos.Funcionarios.Create(ctx, fun); err != nil {
			return fmt.Errorf("failed to seed funcionario %s: %w", row.rut, err)
		}
		funIDs = append(funIDs, fun.ID)

		for _, nombre := range rolesFor(i + 1) {
			if err := repos.Roles.Assign(ctx, fun.ID, roleIDs[nombre]); err != nil {
				return fmt.Errorf("failed to grant %s to %s: %w", nombre, row.rut, err)
			}
		}
	}

	for _, row := range pacientes {
		nacimiento, err := model.ParseDate(row.nacimiento)
		if err != nil {
			return fmt.Errorf("failed to parse seed date %s: %w", row.nacimiento, err)
		}
		pac := &model.Paciente{
			Nombres:         row.nombres,
			Apellidos:       row.apellidos,
			Rut:             row.rut,
			Telefono:        row.telefono,
			Email:           row.email,
			FechaNacimiento: nacimiento,
			Genero:          row.genero,
			Direccion:       row.direccion,
		}
		if err := repos.Pacientes.Create(ctx, pac); err != nil {
			return fmt.Errorf("failed to seed paciente %s: %w", row.rut, err)
		}
	}

	for _, row := range segmentos {
		from, to := row.window()
		seg := &model.SegmentoHorario{
			Nombre:          segmentoNombre,
			FechaHoraInicio: from,
			FechaHoraFin:    to,
			FuncionarioID:   funIDs[row.funcionario-1],
			Free:            true,
		}
		if err := repos.Segmentos.Create(ctx, seg, segmento.GenerateCupos(seg)); err != nil {
			return fmt.Errorf("failed to seed segmento: %w", err)
		}
	}

	log.Info().
		Int("especialidades", len(especialidades)).
		Int("funcionarios", len(funcionarios)).
		Int("pacientes", len(pacientes)).
		Int("segmentos", len(segmentos)).
		Msg("seed data loaded")
	return nil
}
