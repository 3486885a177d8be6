package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/internal/email"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/pkg/messaging"
	"github.com/jwalitptl/agenda-api/pkg/worker"
)

// Notifier emails the patient when an appointment is assigned.
type Notifier struct {
	mailer email.Service
	retry  worker.RetryConfig
}

func NewNotifier(mailer email.Service, retry worker.RetryConfig) *Notifier {
	return &Notifier{mailer: mailer, retry: retry}
}

// Run consumes channel until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context, broker messaging.Broker, channel string) error {
	log.Info().Str("channel", channel).Msg("notifier started")
	err := messaging.Consume(ctx, broker, channel, n.Handle)
	log.Info().Str("channel", channel).Msg("notifier stopped")
	return err
}

func (n *Notifier) Handle(ctx context.Context, env messaging.Envelope) error {
	if env.Type != model.EventCitaAsignada {
		log.Debug().Str("type", env.Type).Msg("ignoring event")
		return nil
	}

	var evt model.CitaAsignadaEvent
	if err := json.Unmarshal(env.Payload, &evt); err != nil {
		return fmt.Errorf("failed to decode %s: %w", env.Type, err)
	}
	if evt.PacienteEmail == "" {
		log.Warn().Int64("cita_id", evt.CitaID).Msg("paciente has no email, skipping confirmation")
		return nil
	}

	err := worker.Retry(ctx, n.retry, func() error {
		return n.mailer.SendCitaConfirmation(ctx, &evt)
	})
	if err != nil {
		return fmt.Errorf("failed to send confirmation for cita %d: %w", evt.CitaID, err)
	}
	log.Info().Int64("cita_id", evt.CitaID).Msg("cita confirmation sent")
	return nil
}
