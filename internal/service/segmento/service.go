package segmento

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

const (
	msgSegmentoNotFound    = "Segmento horario no encontrado"
	msgFuncionarioNotFound = "Funcionario no encontrado"
	msgSegmentoOcupado     = "El segmento horario tiene una cita asignada"
)

// GenerateCupos splits [start, end) into consecutive 30 minute DISPONIBLE
// cupos. A trailing remainder shorter than 30 minutes gets no cupo.
func GenerateCupos(seg *model.SegmentoHorario) []*model.Cupo {
	n := seg.Cupos()
	cupos := make([]*model.Cupo, 0, n)
	for i := 0; i < n; i++ {
		start := seg.FechaHoraInicio.Add(time.Duration(i) * model.SlotDuration)
		cupos = append(cupos, &model.Cupo{
			Estado:          model.CupoDisponible,
			FechaHoraInicio: start,
			FechaHoraFin:    start.Add(model.SlotDuration),
			Duracion:        int(model.SlotDuration / time.Minute),
			SegmentoID:      seg.ID,
		})
	}
	return cupos
}

// SlotCount returns the number of cupos in [start, end). The span must be a
// positive multiple of 30 minutes holding at most MaxCupos.
func SlotCount(start, end time.Time) (int, error) {
	span := end.Sub(start)
	if span <= 0 {
		return 0, apperrors.BadRequest("La hora de término debe ser posterior a la de inicio", nil)
	}
	if span%model.SlotDuration != 0 {
		return 0, apperrors.BadRequest("La duración debe ser múltiplo de 30 minutos", nil)
	}
	n := int(span / model.SlotDuration)
	if n > model.MaxCupos {
		return 0, apperrors.BadRequest(fmt.Sprintf("Un segmento admite como máximo %d cupos", model.MaxCupos), nil)
	}
	return n, nil
}

// WeekWindow returns [Sunday 00:00, next Sunday 00:00) around now, in now's
// location.
func WeekWindow(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 7)
}

type Service struct {
	segmentoRepo    repository.SegmentoRepository
	funcionarioRepo repository.FuncionarioRepository
	citaRepo        repository.CitaRepository
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewService(segmentoRepo repository.SegmentoRepository, funcionarioRepo repository.FuncionarioRepository,
	citaRepo repository.CitaRepository, m *metrics.Metrics) *Service {
	return &Service{
		segmentoRepo:    segmentoRepo,
		funcionarioRepo: funcionarioRepo,
		citaRepo:        citaRepo,
		metrics:         m,
		now:             time.Now,
	}
}

// WithClock replaces the clock used for the weekly window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// build resolves the end of the segment from the cupo count, or the explicit
// end when no count is given, and checks the owner exists.
func (s *Service) build(ctx context.Context, req *model.SegmentoRequest) (*model.SegmentoHorario, error) {
	var end time.Time
	switch {
	case req.Cupos > 0:
		end = req.FechaHoraInicio.Add(time.Duration(req.Cupos) * model.SlotDuration)
	case req.FechaHoraFin != nil:
		end = *req.FechaHoraFin
	default:
		return nil, apperrors.BadRequest("Debe indicar la cantidad de cupos o la hora de término", nil)
	}

	if _, err := SlotCount(req.FechaHoraInicio, end); err != nil {
		return nil, err
	}

	if _, err := s.funcionarioRepo.Get(ctx, req.FuncionarioID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(msgFuncionarioNotFound, err)
		}
		return nil, apperrors.Internal(err)
	}

	return &model.SegmentoHorario{
		Nombre:          req.Nombre,
		FechaHoraInicio: req.FechaHoraInicio,
		FechaHoraFin:    end,
		FuncionarioID:   req.FuncionarioID,
		Free:            true,
	}, nil
}

// writeError maps a failed segment write. Occupancy is re-checked by the
// repository under its lock.
func writeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrSegmentoOcupado):
		return apperrors.Conflict(msgSegmentoOcupado, err)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(msgSegmentoNotFound, err)
	}
	return apperrors.Internal(err)
}

func (s *Service) Create(ctx context.Context, req *model.SegmentoRequest) (*model.SegmentoHorario, error) {
	seg, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	cupos := GenerateCupos(seg)
	if err := s.segmentoRepo.Create(ctx, seg, cupos); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(msgFuncionarioNotFound, err)
		}
		return nil, apperrors.Internal(err)
	}

	if s.metrics != nil {
		s.metrics.SegmentosCreados.Inc()
		s.metrics.CuposGenerados.Add(float64(len(cupos)))
	}
	return seg, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.SegmentoHorario, error) {
	seg, err := s.segmentoRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(msgSegmentoNotFound, err)
		}
		return nil, apperrors.Internal(err)
	}
	return seg, nil
}

// Update replaces the segment's fields and regenerates its cupos. Occupied
// segments cannot change.
func (s *Service) Update(ctx context.Context, id int64, req *model.SegmentoRequest) (*model.SegmentoHorario, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Free {
		return nil, apperrors.Conflict(msgSegmentoOcupado, nil)
	}

	seg, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	seg.ID = id

	cupos := GenerateCupos(seg)
	if err := s.segmentoRepo.Update(ctx, seg, cupos); err != nil {
		return nil, writeError(err)
	}
	if s.metrics != nil {
		s.metrics.CuposGenerados.Add(float64(len(cupos)))
	}
	return seg, nil
}

// Delete removes the segment and its cupos. Segments holding a cita are kept.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	_, err := s.citaRepo.GetBySegmento(ctx, id)
	switch {
	case err == nil:
		return apperrors.Conflict(msgSegmentoOcupado, nil)
	case !errors.Is(err, repository.ErrNotFound):
		return apperrors.Internal(err)
	}

	if err := s.segmentoRepo.Delete(ctx, id); err != nil {
		return writeError(err)
	}
	return nil
}

func (s *Service) ListByFuncionario(ctx context.Context, funcionarioID int64) ([]*model.SegmentoHorario, error) {
	list, err := s.segmentoRepo.ListByFuncionario(ctx, funcionarioID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

func (s *Service) Cupos(ctx context.Context, id int64) ([]*model.Cupo, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	cupos, err := s.segmentoRepo.ListCupos(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return cupos, nil
}

// HasAvailabilityThisWeek reports whether the funcionario owns a free
// segment starting inside the current week.
func (s *Service) HasAvailabilityThisWeek(ctx context.Context, funcionarioID int64) (bool, error) {
	list, err := s.segmentoRepo.ListByFuncionario(ctx, funcionarioID)
	if err != nil {
		return false, apperrors.Internal(err)
	}

	from, to := WeekWindow(s.now())
	for _, seg := range list {
		if seg.Free && !seg.FechaHoraInicio.Before(from) && seg.FechaHoraInicio.Before(to) {
			return true, nil
		}
	}
	return false, nil
}
