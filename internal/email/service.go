package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/agenda-api/config"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

type Service interface {
	SendRecoveryCode(ctx context.Context, to, nombre, code string) error
	SendCitaConfirmation(ctx context.Context, evt *model.CitaAsignadaEvent) error
}

const dateTimeLayout = "02-01-2006 15:04"

type message struct {
	kind    string
	to      string
	subject string
	body    string
}

func recoveryMessage(to, nombre, code string) message {
	return message{
		kind:    "recovery",
		to:      to,
		subject: "Código de recuperación de contraseña",
		body: fmt.Sprintf(
			"Hola %s,\n\nTu código de recuperación es: %s\n\nSi no solicitaste este código, ignora este mensaje.\n",
			nombre, code),
	}
}

func citaMessage(evt *model.CitaAsignadaEvent) message {
	return message{
		kind:    "cita",
		to:      evt.PacienteEmail,
		subject: "Confirmación de cita",
		body: fmt.Sprintf(
			"Hola %s,\n\nTu cita quedó agendada para el %s (hasta %s).\n",
			evt.PacienteNombre,
			evt.FechaHoraInicio.Format(dateTimeLayout),
			evt.FechaHoraFin.Format("15:04")),
	}
}

// NewService returns an SMTP sender, or a sender that only logs when no
// SMTP host is configured.
func NewService(cfg config.SMTPConfig, m *metrics.Metrics) Service {
	if cfg.Host == "" {
		return &logService{metrics: m}
	}
	return &smtpService{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:    cfg.From,
		metrics: m,
	}
}

type smtpService struct {
	dialer  *gomail.Dialer
	from    string
	metrics *metrics.Metrics
}

func (s *smtpService) send(msg message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.to)
	m.SetHeader("Subject", msg.subject)
	m.SetBody("text/plain", msg.body)

	err := s.dialer.DialAndSend(m)
	if s.metrics != nil {
		s.metrics.MailsSent.WithLabelValues(msg.kind, metrics.Status(err)).Inc()
	}
	if err != nil {
		return fmt.Errorf("failed to send %s mail: %w", msg.kind, err)
	}
	return nil
}

func (s *smtpService) SendRecoveryCode(_ context.Context, to, nombre, code string) error {
	return s.send(recoveryMessage(to, nombre, code))
}

func (s *smtpService) SendCitaConfirmation(_ context.Context, evt *model.CitaAsignadaEvent) error {
	return s.send(citaMessage(evt))
}

type logService struct {
	metrics *metrics.Metrics
}

func (s *logService) send(msg message) error {
	log.Info().
		Str("kind", msg.kind).
		Str("to", msg.to).
		Str("subject", msg.subject).
		Msg("smtp not configured, mail logged instead of sent")
	if s.metrics != nil {
		s.metrics.MailsSent.WithLabelValues(msg.kind, "logged").Inc()
	}
	return nil
}

func (s *logService) SendRecoveryCode(_ context.Context, to, nombre, code string) error {
	return s.send(recoveryMessage(to, nombre, code))
}

func (s *logService) SendCitaConfirmation(_ context.Context, evt *model.CitaAsignadaEvent) error {
	return s.send(citaMessage(evt))
}
