package cita

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/messaging"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

const (
	msgNotFound         = "Cita no encontrada"
	msgPacienteNotFound = "Paciente no encontrado"
	msgSegmentoNotFound = "Segmento horario no encontrado"
	msgOcupado          = "Este horario ya está ocupado"
)

type Service struct {
	citaRepo     repository.CitaRepository
	pacienteRepo repository.PacienteRepository
	segmentoRepo repository.SegmentoRepository
	publisher    messaging.Publisher
	metrics      *metrics.Metrics
}

func NewService(citaRepo repository.CitaRepository, pacienteRepo repository.PacienteRepository,
	segmentoRepo repository.SegmentoRepository, publisher messaging.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		citaRepo:     citaRepo,
		pacienteRepo: pacienteRepo,
		segmentoRepo: segmentoRepo,
		publisher:    publisher,
		metrics:      m,
	}
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.CitasRechazadas.WithLabelValues(reason).Inc()
	}
}

// Assign books the paciente onto the segment. The segment, its cupos and
// the new cita change together or not at all.
func (s *Service) Assign(ctx context.Context, pacienteID, segmentoID int64) (*model.Cita, error) {
	pac, err := s.pacienteRepo.Get(ctx, pacienteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.reject("paciente_not_found")
			return nil, apperrors.NotFound(msgPacienteNotFound, err)
		}
		return nil, apperrors.Internal(err)
	}

	seg, err := s.segmentoRepo.Get(ctx, segmentoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.reject("segmento_not_found")
			return nil, apperrors.NotFound(msgSegmentoNotFound, err)
		}
		return nil, apperrors.Internal(err)
	}

	cita, err := s.citaRepo.Assign(ctx, pacienteID, segmentoID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSegmentoOcupado), errors.Is(err, repository.ErrDuplicate):
			s.reject("ocupado")
			return nil, apperrors.Conflict(msgOcupado, err)
		case errors.Is(err, repository.ErrNotFound):
			s.reject("segmento_not_found")
			return nil, apperrors.NotFound(msgSegmentoNotFound, err)
		}
		return nil, apperrors.Internal(err)
	}

	if s.metrics != nil {
		s.metrics.CitasAsignadas.Inc()
	}
	log.Info().
		Int64("cita_id", cita.ID).
		Int64("paciente_id", pacienteID).
		Int64("segmento_id", segmentoID).
		Msg("cita assigned")

	s.publish(ctx, &model.CitaAsignadaEvent{
		CitaID:          cita.ID,
		PacienteID:      pac.ID,
		PacienteNombre:  pac.NombreCompleto(),
		PacienteEmail:   pac.Email,
		SegmentoID:      seg.ID,
		FuncionarioID:   seg.FuncionarioID,
		FechaHoraInicio: seg.FechaHoraInicio,
		FechaHoraFin:    seg.FechaHoraFin,
		AsignadaEn:      cita.CreatedAt,
	})
	return cita, nil
}

// publish runs after the assignment committed, so a failure here is only
// logged.
func (s *Service) publish(ctx context.Context, evt *model.CitaAsignadaEvent) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, model.EventCitaAsignada, evt); err != nil {
		log.Error().Err(err).Int64("cita_id", evt.CitaID).Msg("failed to publish cita event")
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*model.CitaDetalle, error) {
	cita, err := s.citaRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(msgNotFound, err)
		}
		return nil, apperrors.Internal(err)
	}
	return s.detalle(ctx, cita)
}

func (s *Service) detalle(ctx context.Context, cita *model.Cita) (*model.CitaDetalle, error) {
	pac, err := s.pacienteRepo.Get(ctx, cita.PacienteID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	seg, err := s.segmentoRepo.Get(ctx, cita.SegmentoID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.CitaDetalle{
		ID:              cita.ID,
		CreatedAt:       cita.CreatedAt,
		Paciente:        pac,
		SegmentoHorario: seg,
	}, nil
}

func (s *Service) detalles(ctx context.Context, citas []*model.Cita) ([]*model.CitaDetalle, error) {
	out := make([]*model.CitaDetalle, 0, len(citas))
	for _, c := range citas {
		d, err := s.detalle(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Service) ListByPaciente(ctx context.Context, pacienteID int64) ([]*model.CitaDetalle, error) {
	citas, err := s.citaRepo.ListByPaciente(ctx, pacienteID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.detalles(ctx, citas)
}

func (s *Service) ListByFuncionario(ctx context.Context, funcionarioID int64) ([]*model.CitaDetalle, error) {
	citas, err := s.citaRepo.ListByFuncionario(ctx, funcionarioID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.detalles(ctx, citas)
}
