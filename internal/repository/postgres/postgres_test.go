package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

func newMock(t *testing.T) (repository.Repositories, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepositories(sqlx.NewDb(db, "postgres"), metrics.NewNop()), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestCitaAssign_CommitsAllWrites(t *testing.T) {
	repos, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT free FROM sgh_segmento_horario WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(true))
	mock.ExpectExec(q("UPDATE sgh_segmento_horario SET free = FALSE WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE cup_cupo SET estado = $1 WHERE sgh_id = $2")).
		WithArgs("OCUPADO", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectQuery(q("INSERT INTO cit_cita (sgh_id, pac_id, created_at)")).
		WithArgs(int64(7), int64(3), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectCommit()

	cita, err := repos.Citas.Assign(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(11), cita.ID)
	assert.Equal(t, int64(3), cita.PacienteID)
	assert.Equal(t, int64(7), cita.SegmentoID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCitaAssign_OccupiedSegmentRollsBack(t *testing.T) {
	repos, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT free FROM sgh_segmento_horario")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(false))
	mock.ExpectRollback()

	_, err := repos.Citas.Assign(context.Background(), 3, 7)
	assert.ErrorIs(t, err, repository.ErrSegmentoOcupado)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCitaAssign_MissingSegment(t *testing.T) {
	repos, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT free FROM sgh_segmento_horario")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"free"}))
	mock.ExpectRollback()

	_, err := repos.Citas.Assign(context.Background(), 3, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCitaAssign_InsertFailureLeavesSegmentFree(t *testing.T) {
	repos, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT free FROM sgh_segmento_horario")).
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(true))
	mock.ExpectExec(q("UPDATE sgh_segmento_horario SET free = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE cup_cupo SET estado")).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectQuery(q("INSERT INTO cit_cita")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repos.Citas.Assign(context.Background(), 3, 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrSegmentoOcupado)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentoUpdate_RegeneratesCupos(t *testing.T) {
	repos, mock := newMock(t)

	start := time.Date(2024, time.November, 25, 9, 0, 0, 0, time.UTC)
	seg := &model.SegmentoHorario{
		ID:              4,
		Nombre:          "Atención general",
		FechaHoraInicio: start,
		FechaHoraFin:    start.Add(time.Hour),
		FuncionarioID:   1,
		Free:            true,
	}
	cupos := []*model.Cupo{
		{Estado: model.CupoDisponible, FechaHoraInicio: start, FechaHoraFin: start.Add(30 * time.Minute), Duracion: 30},
		{Estado: model.CupoDisponible, FechaHoraInicio: start.Add(30 * time.Minute), FechaHoraFin: start.Add(time.Hour), Duracion: 30},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT free FROM sgh_segmento_horario WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(true))
	mock.ExpectExec(q("UPDATE sgh_segmento_horario")).
		WithArgs(seg.Nombre, seg.FechaHoraInicio, seg.FechaHoraFin, seg.FuncionarioID, true, seg.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM cup_cupo WHERE sgh_id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectQuery(q("INSERT INTO cup_cupo")).
		WithArgs("DISPONIBLE", start, start.Add(30*time.Minute), 30, int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectQuery(q("INSERT INTO cup_cupo")).
		WithArgs("DISPONIBLE", start.Add(30*time.Minute), start.Add(time.Hour), 30, int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(102)))
	mock.ExpectCommit()

	require.NoError(t, repos.Segmentos.Update(context.Background(), seg, cupos))
	assert.Equal(t, int64(101), cupos[0].ID)
	assert.Equal(t, int64(4), cupos[1].SegmentoID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentoUpdate_NotFound(t *testing.T) {
	repos, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT free FROM sgh_segmento_horario WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"free"}))
	mock.ExpectRollback()

	err := repos.Segmentos.Update(context.Background(), &model.SegmentoHorario{ID: 404}, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentoDelete_CascadesInOneTransaction(t *testing.T) {
	repos, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT free FROM sgh_segmento_horario WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(true))
	mock.ExpectExec(q("DELETE FROM cup_cupo WHERE sgh_id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec(q("DELETE FROM sgh_segmento_horario WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repos.Segmentos.Delete(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentoWrites_BookedSegmentRollsBack(t *testing.T) {
	booked := func(mock sqlmock.Sqlmock) {
		mock.ExpectBegin()
		mock.ExpectQuery(q("SELECT free FROM sgh_segmento_horario WHERE id = $1 FOR UPDATE")).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(false))
		mock.ExpectRollback()
	}

	t.Run("update", func(t *testing.T) {
		repos, mock := newMock(t)
		booked(mock)
		err := repos.Segmentos.Update(context.Background(), &model.SegmentoHorario{ID: 4, Free: true}, nil)
		assert.ErrorIs(t, err, repository.ErrSegmentoOcupado)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete", func(t *testing.T) {
		repos, mock := newMock(t)
		booked(mock)
		assert.ErrorIs(t, repos.Segmentos.Delete(context.Background(), 4), repository.ErrSegmentoOcupado)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFuncionarioCreateWithRoles_GrantFailureRollsBack(t *testing.T) {
	repos, mock := newMock(t)
	fun := &model.Funcionario{Nombres: "María", Apellidos: "González", Rut: "196450963", Email: "maria.gonzalez@ejemplo.com", EspecialidadID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO fun_funcionario")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))
	mock.ExpectExec(q("INSERT INTO rol_roles (nombre) VALUES ($1) ON CONFLICT (nombre) DO NOTHING")).
		WithArgs("USA_CITAS").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("INSERT INTO rl_rol_fun (rol_id, fun_id)")).
		WithArgs("USA_CITAS", int64(12)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repos.Funcionarios.CreateWithRoles(context.Background(), fun, model.AllRoles)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFuncionarioCreateWithRoles_Commits(t *testing.T) {
	repos, mock := newMock(t)
	fun := &model.Funcionario{Rut: "196450963", EspecialidadID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO fun_funcionario")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))
	for _, n := range model.AllRoles {
		mock.ExpectExec(q("INSERT INTO rol_roles")).WithArgs(string(n)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("INSERT INTO rl_rol_fun")).WithArgs(string(n), int64(12)).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repos.Funcionarios.CreateWithRoles(context.Background(), fun, model.AllRoles))
	assert.Equal(t, int64(12), fun.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFuncionarioDelete_RemovesCitasFirst(t *testing.T) {
	repos, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM cit_cita")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM fun_funcionario WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repos.Funcionarios.Delete(context.Background(), 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFuncionarioList_NameIsMatchedLiterally(t *testing.T) {
	repos, mock := newMock(t)

	mock.ExpectQuery(q("WHERE (nombres ILIKE $1 OR apellidos ILIKE $1)")).
		WithArgs(`%100\%\_a\\b%`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, err := repos.Funcionarios.SearchByName(context.Background(), `100%_a\b`)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPacienteGetByRut_NotFoundIsDistinct(t *testing.T) {
	repos, mock := newMock(t)

	mock.ExpectQuery(q("FROM pac_paciente WHERE rut = $1")).
		WithArgs("111111111").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(q("FROM pac_paciente WHERE rut = $1")).
		WithArgs("222222222").
		WillReturnError(errors.New("connection refused"))

	_, err := repos.Pacientes.GetByRut(context.Background(), "111111111")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repos.Pacientes.GetByRut(context.Background(), "222222222")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestRolHasRole(t *testing.T) {
	repos, mock := newMock(t)

	mock.ExpectQuery(q("SELECT EXISTS")).
		WithArgs(int64(2), "USA_CITAS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repos.Roles.HasRole(context.Background(), 2, model.RolCitas)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(&pq.Error{Code: "23505"}), repository.ErrDuplicate)
	assert.ErrorIs(t, mapError(&pq.Error{Code: "23503"}), repository.ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23505"}), repository.ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
	assert.NoError(t, mapError(nil))
}
