package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
)

type segmentoRepository struct{ s *Store }

// storeCupos must be called with the write lock held.
func (s *Store) storeCupos(segmentoID int64, cupos []*model.Cupo) {
	for _, c := range cupos {
		c.ID = s.next("cupo")
		c.SegmentoID = segmentoID
		cp := *c
		s.cupos[c.ID] = &cp
	}
}

// occupied reports whether the segment is booked. Must be called with the
// lock held.
func (s *Store) occupied(seg *model.SegmentoHorario) bool {
	if !seg.Free {
		return true
	}
	for _, c := range s.citas {
		if c.SegmentoID == seg.ID {
			return true
		}
	}
	return false
}

// deleteSegmento drops a segment with its cupos and cita. Must be called
// with the write lock held.
func (s *Store) deleteSegmento(id int64) {
	for cid, c := range s.cupos {
		if c.SegmentoID == id {
			delete(s.cupos, cid)
		}
	}
	for cid, c := range s.citas {
		if c.SegmentoID == id {
			delete(s.citas, cid)
		}
	}
	delete(s.segmentos, id)
}

func (r *segmentoRepository) Create(_ context.Context, seg *model.SegmentoHorario, cupos []*model.Cupo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.funcionarios[seg.FuncionarioID]; !ok {
		return repository.ErrNotFound
	}
	seg.ID = r.s.next("segmento")
	cp := *seg
	r.s.segmentos[seg.ID] = &cp
	r.s.storeCupos(seg.ID, cupos)
	return nil
}

func (r *segmentoRepository) Get(_ context.Context, id int64) (*model.SegmentoHorario, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seg, ok := r.s.segmentos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *seg
	return &cp, nil
}

func (r *segmentoRepository) ListByFuncionario(_ context.Context, funcionarioID int64) ([]*model.SegmentoHorario, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var list []*model.SegmentoHorario
	for _, seg := range r.s.segmentos {
		if seg.FuncionarioID == funcionarioID {
			cp := *seg
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].FechaHoraInicio.Before(list[j].FechaHoraInicio)
	})
	return list, nil
}

func (r *segmentoRepository) ListCupos(_ context.Context, segmentoID int64) ([]*model.Cupo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var list []*model.Cupo
	for _, c := range r.s.cupos {
		if c.SegmentoID == segmentoID {
			cp := *c
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].FechaHoraInicio.Before(list[j].FechaHoraInicio)
	})
	return list, nil
}

func (r *segmentoRepository) Update(_ context.Context, seg *model.SegmentoHorario, cupos []*model.Cupo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.segmentos[seg.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.s.occupied(cur) {
		return repository.ErrSegmentoOcupado
	}
	if _, ok := r.s.funcionarios[seg.FuncionarioID]; !ok {
		return repository.ErrNotFound
	}
	cp := *seg
	r.s.segmentos[seg.ID] = &cp
	for cid, c := range r.s.cupos {
		if c.SegmentoID == seg.ID {
			delete(r.s.cupos, cid)
		}
	}
	r.s.storeCupos(seg.ID, cupos)
	return nil
}

func (r *segmentoRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seg, ok := r.s.segmentos[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.s.occupied(seg) {
		return repository.ErrSegmentoOcupado
	}
	r.s.deleteSegmento(id)
	return nil
}
