package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
)

type citaRepository struct{ s *Store }

func (r *citaRepository) Assign(_ context.Context, pacienteID, segmentoID int64) (*model.Cita, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seg, ok := r.s.segmentos[segmentoID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if _, ok := r.s.pacientes[pacienteID]; !ok {
		return nil, repository.ErrNotFound
	}
	if !seg.Free {
		return nil, repository.ErrSegmentoOcupado
	}

	seg.Free = false
	for _, c := range r.s.cupos {
		if c.SegmentoID == segmentoID {
			c.Estado = model.CupoOcupado
		}
	}
	cita := &model.Cita{
		ID:         r.s.next("cita"),
		SegmentoID: segmentoID,
		PacienteID: pacienteID,
		CreatedAt:  time.Now().UTC(),
	}
	cp := *cita
	r.s.citas[cita.ID] = &cp
	return cita, nil
}

func (r *citaRepository) Get(_ context.Context, id int64) (*model.Cita, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.citas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *citaRepository) GetBySegmento(_ context.Context, segmentoID int64) (*model.Cita, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.citas {
		if c.SegmentoID == segmentoID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *citaRepository) filter(match func(*model.Cita) bool) []*model.Cita {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var list []*model.Cita
	for _, c := range r.s.citas {
		if match(c) {
			cp := *c
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (r *citaRepository) ListByPaciente(_ context.Context, pacienteID int64) ([]*model.Cita, error) {
	return r.filter(func(c *model.Cita) bool { return c.PacienteID == pacienteID }), nil
}

func (r *citaRepository) ListByFuncionario(_ context.Context, funcionarioID int64) ([]*model.Cita, error) {
	return r.filter(func(c *model.Cita) bool {
		seg, ok := r.s.segmentos[c.SegmentoID]
		return ok && seg.FuncionarioID == funcionarioID
	}), nil
}
