package paciente

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
)

func newService() *Service {
	svc := NewService(memory.NewStore().Repositories().Pacientes)
	svc.now = func() time.Time { return time.Date(2024, time.November, 25, 12, 0, 0, 0, time.UTC) }
	return svc
}

func request() *model.PacienteRequest {
	return &model.PacienteRequest{
		Nombres:         "Diego",
		Apellidos:       "Castro",
		Rut:             "11.111.111-1",
		Telefono:        "(56) 9 5552001",
		Email:           "diego.castro@ejemplo.com",
		FechaNacimiento: "1990-05-14",
		Genero:          model.GeneroMasculino,
		Direccion:       "Calle Principal 123",
	}
}

func TestCreateAndGetByRut(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	pac, err := svc.Create(ctx, request())
	require.NoError(t, err)
	assert.Equal(t, "111111111", pac.Rut)
	assert.Equal(t, "1990-05-14", pac.FechaNacimiento.String())

	got, err := svc.GetByRut(ctx, "11111111-1")
	require.NoError(t, err)
	assert.Equal(t, pac.ID, got.ID)

	_, err = svc.Create(ctx, request())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestGetByRut_NotFoundMessage(t *testing.T) {
	_, err := newService().GetByRut(context.Background(), "222222222")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
	assert.Equal(t, "Paciente no encontrado", appErr.Message)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*model.PacienteRequest)
		field string
	}{
		{"bad rut", func(r *model.PacienteRequest) { r.Rut = "101010101" }, "rut"},
		{"short name", func(r *model.PacienteRequest) { r.Nombres = "Ana" }, "nombres"},
		{"digits in surname", func(r *model.PacienteRequest) { r.Apellidos = "Castro2" }, "apellidos"},
		{"bad email", func(r *model.PacienteRequest) { r.Email = "diego@ejemplo" }, "email"},
		{"short phone", func(r *model.PacienteRequest) { r.Telefono = "(56) 9 " }, "telefono"},
		{"future birth", func(r *model.PacienteRequest) { r.FechaNacimiento = "2030-01-01" }, "fechaNacimiento"},
		{"ancient birth", func(r *model.PacienteRequest) { r.FechaNacimiento = "1899-12-31" }, "fechaNacimiento"},
		{"bad gender", func(r *model.PacienteRequest) { r.Genero = "X" }, "genero"},
		{"no address", func(r *model.PacienteRequest) { r.Direccion = " " }, "direccion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request()
			tt.edit(req)
			_, err := newService().Create(context.Background(), req)
			require.Error(t, err)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			require.Len(t, appErr.Fields, 1)
			assert.Equal(t, tt.field, appErr.Fields[0].Field)
		})
	}
}

func TestUpdate(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	pac, err := svc.Create(ctx, request())
	require.NoError(t, err)

	req := request()
	req.Direccion = "Avenida Nueva 1"
	upd, err := svc.Update(ctx, pac.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Avenida Nueva 1", upd.Direccion)

	_, err = svc.Update(ctx, 999, req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
