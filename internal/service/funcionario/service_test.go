package funcionario

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	"github.com/jwalitptl/agenda-api/internal/repository/memory"
	"github.com/jwalitptl/agenda-api/internal/service/segmento"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
	"github.com/jwalitptl/agenda-api/pkg/security"
)

type fakeInvalidator struct{ ids []int64 }

var _ RoleInvalidator = (*fakeInvalidator)(nil)

func (f *fakeInvalidator) Invalidate(id int64) { f.ids = append(f.ids, id) }

type fixture struct {
	svc     *Service
	repos   repository.Repositories
	segs    *segmento.Service
	hasher  security.PasswordHasher
	invalid *fakeInvalidator
	espID   int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewStore().Repositories()
	esp := &model.Especialidad{Nombre: "Cardiología"}
	require.NoError(t, repos.Especialidades.Create(context.Background(), esp))

	segs := segmento.NewService(repos.Segmentos, repos.Funcionarios, repos.Citas, metrics.NewNop())
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	inv := &fakeInvalidator{}
	return &fixture{
		svc:     NewService(repos.Funcionarios, repos.Especialidades, segs, hasher, inv),
		repos:   repos,
		segs:    segs,
		hasher:  hasher,
		invalid: inv,
		espID:   esp.ID,
	}
}

func (f *fixture) request() *model.RegisterFuncionarioRequest {
	return &model.RegisterFuncionarioRequest{
		Nombres:        "María",
		Apellidos:      "González",
		Rut:            "19.645.096-3",
		Telefono:       "555-1001",
		Email:          "maria.gonzalez@ejemplo.com",
		Password:       "Abc123",
		EspecialidadID: f.espID,
	}
}

func TestRegister_GrantsAllRoles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	fun, err := f.svc.Register(ctx, f.request())
	require.NoError(t, err)
	assert.Equal(t, "196450963", fun.Rut)
	assert.Equal(t, model.AllRoles, fun.Roles)
	assert.NoError(t, f.hasher.Compare(fun.Password, "Abc123"))

	for _, n := range model.AllRoles {
		ok, err := f.repos.Roles.HasRole(ctx, fun.ID, n)
		require.NoError(t, err)
		assert.True(t, ok, n)
	}
}

// failingCreate rejects the first registration write without touching the
// store, as a transaction rolled back on a failed grant.
type failingCreate struct {
	repository.FuncionarioRepository
	failures int
}

func (f *failingCreate) CreateWithRoles(ctx context.Context, fun *model.Funcionario, roles []model.RolNombre) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("failed to assign rol: connection reset")
	}
	return f.FuncionarioRepository.CreateWithRoles(ctx, fun, roles)
}

func TestRegister_FailedWriteLeavesNoFuncionario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	repo := &failingCreate{FuncionarioRepository: f.repos.Funcionarios, failures: 1}
	svc := NewService(repo, f.repos.Especialidades, f.segs, f.hasher, f.invalid)

	_, err := svc.Register(ctx, f.request())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInternal))

	_, err = f.repos.Funcionarios.GetByRut(ctx, "196450963")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	fun, err := svc.Register(ctx, f.request())
	require.NoError(t, err)
	list, err := f.repos.Roles.ListByFuncionario(ctx, fun.ID)
	require.NoError(t, err)
	assert.Len(t, list, len(model.AllRoles))
}

func TestRegister_Duplicates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, f.request())
	require.NoError(t, err)

	req := f.request()
	req.Email = "otra@ejemplo.com"
	_, err = f.svc.Register(ctx, req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	req = f.request()
	req.Rut = "13538951K"
	_, err = f.svc.Register(ctx, req)
	require.Error(t, err)
	appErr, _ := apperrors.As(err)
	assert.Equal(t, msgEmailTaken, appErr.Message)
}

func TestRegister_Validation(t *testing.T) {
	f := setup(t)

	req := f.request()
	req.Rut = "101010101"
	req.Password = "abc"
	_, err := f.svc.Register(context.Background(), req)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Len(t, appErr.Fields, 2)

	req = f.request()
	req.EspecialidadID = 77
	_, err = f.svc.Register(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestGetByRut_Cleans(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, f.request())
	require.NoError(t, err)

	fun, err := f.svc.GetByRut(ctx, "19645096-3")
	require.NoError(t, err)
	assert.Equal(t, "María", fun.Nombres)

	_, err = f.svc.GetByRut(ctx, "11111114")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestUpdateProfile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	fun, err := f.svc.Register(ctx, f.request())
	require.NoError(t, err)

	upd, err := f.svc.UpdateProfile(ctx, fun.ID, &model.UpdateFuncionarioRequest{
		Nombres: "María José", Apellidos: "González", Telefono: "555-9999",
		Email: "mj.gonzalez@ejemplo.com", EspecialidadID: f.espID,
	})
	require.NoError(t, err)
	assert.Equal(t, "María José", upd.Nombres)

	got, err := f.svc.Get(ctx, fun.ID)
	require.NoError(t, err)
	assert.Equal(t, "mj.gonzalez@ejemplo.com", got.Email)
	assert.NoError(t, f.hasher.Compare(got.Password, "Abc123"))
}

func TestChangePassword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	fun, err := f.svc.Register(ctx, f.request())
	require.NoError(t, err)

	assert.True(t, apperrors.IsCode(f.svc.ChangePassword(ctx, fun.ID, "abcdef"), apperrors.ErrBadRequest))
	require.NoError(t, f.svc.ChangePassword(ctx, fun.ID, "Xyz789"))

	got, err := f.svc.Get(ctx, fun.ID)
	require.NoError(t, err)
	assert.NoError(t, f.hasher.Compare(got.Password, "Xyz789"))

	// Recovery resets need a special character.
	assert.True(t, apperrors.IsCode(f.svc.ResetPassword(ctx, fun.ID, "Xyz789"), apperrors.ErrBadRequest))
	assert.NoError(t, f.svc.ResetPassword(ctx, fun.ID, "Xyz789!"))
}

func TestList_WithAvailability(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Date(2024, time.November, 26, 10, 0, 0, 0, time.UTC)
	f.segs.WithClock(func() time.Time { return now })

	busy, err := f.svc.Register(ctx, f.request())
	require.NoError(t, err)
	req := f.request()
	req.Rut, req.Email = "13538951K", "jose.rodriguez@ejemplo.com"
	idle, err := f.svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = f.segs.Create(ctx, &model.SegmentoRequest{Nombre: "Atención general", FechaHoraInicio: now, Cupos: 2, FuncionarioID: busy.ID})
	require.NoError(t, err)

	list, err := f.svc.List(ctx, &model.FuncionarioFilters{Disponibilidad: true})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].TieneDisponibilidad)
	assert.True(t, *list[0].TieneDisponibilidad)
	assert.False(t, *list[1].TieneDisponibilidad)

	ok, err := f.svc.Disponibilidad(ctx, idle.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	list, err = f.svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, list[0].TieneDisponibilidad)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	fun, err := f.svc.Register(ctx, f.request())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, fun.ID))
	assert.Equal(t, []int64{fun.ID}, f.invalid.ids)
	assert.True(t, apperrors.IsCode(f.svc.Delete(ctx, fun.ID), apperrors.ErrNotFound))
}
