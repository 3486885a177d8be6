package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/agenda-api/config"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

func TestNewService_FallsBackToLogging(t *testing.T) {
	svc := NewService(config.SMTPConfig{}, metrics.NewNop())
	assert.IsType(t, &logService{}, svc)
	assert.NoError(t, svc.SendRecoveryCode(context.Background(), "a@b.cl", "Ana", "AB12CD"))

	svc = NewService(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, nil)
	assert.IsType(t, &smtpService{}, svc)
}

func TestMessages(t *testing.T) {
	msg := recoveryMessage("maria.gonzalez@ejemplo.com", "María", "X7K2QP")
	assert.Equal(t, "maria.gonzalez@ejemplo.com", msg.to)
	assert.Contains(t, msg.body, "X7K2QP")

	start := time.Date(2024, time.November, 25, 9, 0, 0, 0, time.UTC)
	msg = citaMessage(&model.CitaAsignadaEvent{
		PacienteNombre:  "Diego Castro",
		PacienteEmail:   "diego.castro@ejemplo.com",
		FechaHoraInicio: start,
		FechaHoraFin:    start.Add(3 * time.Hour),
	})
	assert.Equal(t, "cita", msg.kind)
	assert.Contains(t, msg.body, "25-11-2024 09:00")
	assert.Contains(t, msg.body, "12:00")
}
