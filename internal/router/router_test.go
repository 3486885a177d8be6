package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authhandler "github.com/jwalitptl/agenda-api/internal/handler/auth"
	citahandler "github.com/jwalitptl/agenda-api/internal/handler/cita"
	especialidadhandler "github.com/jwalitptl/agenda-api/internal/handler/especialidad"
	funcionariohandler "github.com/jwalitptl/agenda-api/internal/handler/funcionario"
	"github.com/jwalitptl/agenda-api/internal/handler/health"
	pacientehandler "github.com/jwalitptl/agenda-api/internal/handler/paciente"
	rbachandler "github.com/jwalitptl/agenda-api/internal/handler/rbac"
	segmentohandler "github.com/jwalitptl/agenda-api/internal/handler/segmento"
	"github.com/jwalitptl/agenda-api/internal/email"
	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository/memory"
	"github.com/jwalitptl/agenda-api/internal/seed"
	"github.com/jwalitptl/agenda-api/internal/service/auth"
	"github.com/jwalitptl/agenda-api/internal/service/cita"
	"github.com/jwalitptl/agenda-api/internal/service/especialidad"
	"github.com/jwalitptl/agenda-api/internal/service/funcionario"
	"github.com/jwalitptl/agenda-api/internal/service/paciente"
	"github.com/jwalitptl/agenda-api/internal/service/rbac"
	"github.com/jwalitptl/agenda-api/internal/service/recovery"
	"github.com/jwalitptl/agenda-api/internal/service/segmento"
	"github.com/jwalitptl/agenda-api/internal/session"
	jwtauth "github.com/jwalitptl/agenda-api/pkg/auth"
	"github.com/jwalitptl/agenda-api/pkg/messaging"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
	"github.com/jwalitptl/agenda-api/pkg/security"
)

const (
	rutAdmin  = "19.645.096-3" // seeded with every role
	rutAgenda = "13538951-K"   // seeded without USA_CITAS
)

type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

var _ email.Service = (*fakeMailer)(nil)

func (f *fakeMailer) SendRecoveryCode(_ context.Context, to, _, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[to] = code
	return nil
}

func (f *fakeMailer) SendCitaConfirmation(context.Context, *model.CitaAsignadaEvent) error {
	return nil
}

func (f *fakeMailer) code(to string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[to]
}

type testEnv struct {
	engine *gin.Engine
	mailer *fakeMailer
	broker *messaging.LocalBroker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, seed.Load(ctx, repos, hasher))

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("test", reg)
	broker := messaging.NewLocalBroker()
	t.Cleanup(func() { _ = broker.Close() })
	mailer := &fakeMailer{codes: map[string]string{}}

	rbacSvc := rbac.NewService(repos.Roles, repos.Funcionarios)
	segmentoSvc := segmento.NewService(repos.Segmentos, repos.Funcionarios, repos.Citas, m)
	funcionarioSvc := funcionario.NewService(repos.Funcionarios, repos.Especialidades, segmentoSvc, hasher, rbacSvc)
	tokens := jwtauth.NewManager("test-secret", "agenda-test", time.Hour)
	authSvc := auth.NewService(repos.Funcionarios, hasher, tokens, session.NewCacheStore(time.Hour), rbacSvc, m)
	recoverySvc := recovery.NewService(repos.Funcionarios, funcionarioSvc, mailer, time.Minute, m)
	publisher := messaging.NewEventPublisher(broker, model.EventCitaAsignada, "local", m)
	citaSvc := cita.NewService(repos.Citas, repos.Pacientes, repos.Segmentos, publisher, m)

	r, err := NewRouter(middleware.NewAuthMiddleware(authSvc), Handlers{
		Health:       health.NewHandler(nil),
		Auth:         authhandler.NewHandler(authSvc, recoverySvc),
		Especialidad: especialidadhandler.NewHandler(especialidad.NewService(repos.Especialidades)),
		Funcionario:  funcionariohandler.NewHandler(funcionarioSvc),
		Rbac:         rbachandler.NewHandler(rbacSvc),
		Paciente:     pacientehandler.NewHandler(paciente.NewService(repos.Pacientes)),
		Segmento:     segmentohandler.NewHandler(segmentoSvc),
		Cita:         citahandler.NewHandler(citaSvc),
	}, RouterConfig{
		CORSConfig:     middleware.DefaultCORSConfig(),
		RequestTimeout: 5 * time.Second,
		Gatherer:       reg,
		Metrics:        m,
	})
	require.NoError(t, err)
	r.Setup()

	return &testEnv{engine: r.Engine(), mailer: mailer, broker: broker}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Fields  []struct {
		Field string `json:"field"`
		Kind  string `json:"kind"`
	} `json:"fields"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (e *testEnv) login(t *testing.T, rut, password string) (string, int64) {
	t.Helper()
	code, env := e.do(t, http.MethodPost, "/api/funcionarios/login", "", gin.H{"rut": rut, "password": password})
	require.Equal(t, http.StatusOK, code, env.Message)

	var result struct {
		Token       string `json:"token"`
		Funcionario struct {
			ID int64 `json:"id"`
		} `json:"funcionario"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.NotEmpty(t, result.Token)
	return result.Token, result.Funcionario.ID
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)

	code, _ := e.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)

	code, env := e.do(t, http.MethodPost, "/api/funcionarios/login", "", gin.H{"rut": rutAdmin, "password": "wrong1A"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "RUT o contraseña incorrectos", env.Message)

	code, env = e.do(t, http.MethodPost, "/api/funcionarios/login", "", gin.H{"rut": "11.111.111-1", "password": seed.DefaultPassword})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "RUT o contraseña incorrectos", env.Message)

	token, id := e.login(t, rutAdmin, seed.DefaultPassword)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(1), id)
}

func TestPublicCatalogs(t *testing.T) {
	e := newTestEnv(t)

	code, env := e.do(t, http.MethodGet, "/api/especialidades", "", nil)
	require.Equal(t, http.StatusOK, code)
	var esps []model.Especialidad
	require.NoError(t, json.Unmarshal(env.Data, &esps))
	assert.Len(t, esps, 5)

	code, env = e.do(t, http.MethodGet, "/api/roles", "", nil)
	require.Equal(t, http.StatusOK, code)
	var roles []model.Rol
	require.NoError(t, json.Unmarshal(env.Data, &roles))
	assert.Len(t, roles, 3)
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/api/funcionarios", "/api/pacientes", "/api/gate?route=agenda", "/api/citas/1"} {
		code, env := e.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, "error", env.Status, path)
	}

	code, _ := e.do(t, http.MethodGet, "/api/funcionarios", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestGate(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.login(t, rutAgenda, seed.DefaultPassword)

	tests := []struct {
		route    string
		allowed  bool
		redirect string
	}{
		{"agenda", true, ""},
		{"inscripcion", true, ""},
		{"citas", false, "/dashboard"},
		{"", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			code, env := e.do(t, http.MethodGet, "/api/gate?route="+tt.route, token, nil)
			require.Equal(t, http.StatusOK, code)
			var d struct {
				Allowed  bool   `json:"allowed"`
				Redirect string `json:"redirect"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &d))
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.redirect, d.Redirect)
		})
	}
}

func TestAssignCita(t *testing.T) {
	e := newTestEnv(t)
	admin, _ := e.login(t, rutAdmin, seed.DefaultPassword)
	agenda, _ := e.login(t, rutAgenda, seed.DefaultPassword)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := e.broker.Subscribe(ctx, model.EventCitaAsignada)
	require.NoError(t, err)

	code, _ := e.do(t, http.MethodPost, "/api/citas/assign?pacienteId=1&segmentoHorarioId=1", agenda, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := e.do(t, http.MethodPost, "/api/citas/assign?pacienteId=1&segmentoHorarioId=1", admin, nil)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var detalle model.CitaDetalle
	require.NoError(t, json.Unmarshal(env.Data, &detalle))
	assert.Equal(t, int64(1), detalle.Paciente.ID)
	assert.False(t, detalle.SegmentoHorario.Free)

	select {
	case raw := <-events:
		assert.Contains(t, string(raw), model.EventCitaAsignada)
	case <-time.After(time.Second):
		t.Fatal("no cita.asignada event published")
	}

	code, env = e.do(t, http.MethodPost, "/api/citas/assign?pacienteId=2&segmentoHorarioId=1", admin, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Este horario ya está ocupado", env.Message)

	code, _ = e.do(t, http.MethodPost, "/api/citas/assign?pacienteId=1", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = e.do(t, http.MethodGet, "/api/citas?pacienteId=1", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var list []model.CitaDetalle
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	code, _ = e.do(t, http.MethodGet, "/api/citas", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodDelete, "/api/segmentos-horarios/1", admin, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestRegisterFuncionario(t *testing.T) {
	e := newTestEnv(t)

	body := gin.H{
		"nombres":        "Rodrigo",
		"apellidos":      "Fuentes",
		"rut":            "12.345.678-5",
		"telefono":       "555-3001",
		"email":          "rodrigo.fuentes@hospital.cl",
		"password":       "Abc123",
		"especialidadId": 1,
	}
	code, env := e.do(t, http.MethodPost, "/api/funcionarios", "", body)
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = e.do(t, http.MethodPost, "/api/funcionarios", "", body)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "error", env.Status)

	body["rut"] = "12.345.678-9"
	body["email"] = "otro@hospital.cl"
	code, env = e.do(t, http.MethodPost, "/api/funcionarios", "", body)
	require.Equal(t, http.StatusBadRequest, code)
	require.NotEmpty(t, env.Fields)
	assert.Equal(t, "rut", env.Fields[0].Field)
	assert.Equal(t, "invalidRut", env.Fields[0].Kind)

	token, _ := e.login(t, "12345678-5", "Abc123")
	code, env = e.do(t, http.MethodGet, "/api/gate?route=citas", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"allowed":true`)
}

func TestUpdateIsSelfOnly(t *testing.T) {
	e := newTestEnv(t)
	token, id := e.login(t, rutAgenda, seed.DefaultPassword)

	body := gin.H{
		"nombres":        "Josefina",
		"apellidos":      "Rodríguez",
		"telefono":       "555-1002",
		"email":          "jose.rodriguez@ejemplo.com",
		"especialidadId": 2,
	}
	code, _ := e.do(t, http.MethodPut, "/api/funcionarios/1", token, body)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := e.do(t, http.MethodPut, fmt.Sprintf("/api/funcionarios/%d", id), token, body)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), "Josefina")
}

func TestSegmentos(t *testing.T) {
	e := newTestEnv(t)
	token, id := e.login(t, rutAgenda, seed.DefaultPassword)

	body := gin.H{
		"nombre":          "Control",
		"fechaHoraInicio": "2026-11-02T09:00:00Z",
		"cupos":           4,
		"funcionarioId":   id,
	}
	code, env := e.do(t, http.MethodPost, "/api/segmentos-horarios", token, body)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var seg model.SegmentoHorario
	require.NoError(t, json.Unmarshal(env.Data, &seg))
	assert.True(t, seg.Free)

	code, env = e.do(t, http.MethodGet, fmt.Sprintf("/api/segmentos-horarios/%d/cupos", seg.ID), token, nil)
	require.Equal(t, http.StatusOK, code)
	var cupos []model.Cupo
	require.NoError(t, json.Unmarshal(env.Data, &cupos))
	assert.Len(t, cupos, 4)

	code, _ = e.do(t, http.MethodGet, fmt.Sprintf("/api/funcionarios/%d/segmentos", id), token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = e.do(t, http.MethodDelete, fmt.Sprintf("/api/segmentos-horarios/%d", seg.ID), token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, http.MethodGet, fmt.Sprintf("/api/segmentos-horarios/%d", seg.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPasswordRecovery(t *testing.T) {
	e := newTestEnv(t)
	const to = "maria.gonzalez@ejemplo.com"

	code, env := e.do(t, http.MethodPost, "/api/auth/recovery", "", gin.H{"rut": "1.111.111-4"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "RUT no encontrado", env.Message)

	code, _ = e.do(t, http.MethodPost, "/api/auth/recovery", "", gin.H{"rut": rutAdmin})
	require.Equal(t, http.StatusOK, code)
	recoveryCode := e.mailer.code(to)
	require.Len(t, recoveryCode, 6)

	code, env = e.do(t, http.MethodPost, "/api/auth/recovery/verify", "", gin.H{"rut": rutAdmin, "codigo": "ZZZZZZ"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Código inválido", env.Message)

	code, _ = e.do(t, http.MethodPost, "/api/auth/recovery/verify", "", gin.H{"rut": rutAdmin, "codigo": recoveryCode})
	assert.Equal(t, http.StatusOK, code)

	reset := gin.H{"rut": rutAdmin, "codigo": recoveryCode, "password": "Xyz789!"}
	code, env = e.do(t, http.MethodPost, "/api/auth/recovery/reset", "", reset)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = e.do(t, http.MethodPost, "/api/auth/recovery/reset", "", reset)
	assert.Equal(t, http.StatusBadRequest, code)

	e.login(t, rutAdmin, "Xyz789!")
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.login(t, rutAdmin, seed.DefaultPassword)

	code, _ := e.do(t, http.MethodGet, "/api/pacientes", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = e.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, env := e.do(t, http.MethodGet, "/api/pacientes", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Sesión inválida o expirada", env.Message)
}

func TestRoleChangesApplyToLiveSessions(t *testing.T) {
	e := newTestEnv(t)
	admin, _ := e.login(t, rutAdmin, seed.DefaultPassword)
	agenda, id := e.login(t, rutAgenda, seed.DefaultPassword)

	path := fmt.Sprintf("/api/funcionarios/%d/roles/USA_CITAS", id)
	code, _ := e.do(t, http.MethodPost, path, admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = e.do(t, http.MethodGet, "/api/citas?pacienteId=1", agenda, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = e.do(t, http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = e.do(t, http.MethodGet, "/api/citas?pacienteId=1", agenda, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := e.do(t, http.MethodPost, fmt.Sprintf("/api/funcionarios/%d/roles/ADMIN", id), admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Rol desconocido", env.Message)
}
