package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
)

type pacienteRepository struct{ s *Store }

func (r *pacienteRepository) rutTaken(rut string, except int64) bool {
	for id, p := range r.s.pacientes {
		if id != except && p.Rut == rut {
			return true
		}
	}
	return false
}

func (r *pacienteRepository) Create(_ context.Context, pac *model.Paciente) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.rutTaken(pac.Rut, 0) {
		return repository.ErrDuplicate
	}
	pac.ID = r.s.next("paciente")
	cp := *pac
	r.s.pacientes[pac.ID] = &cp
	return nil
}

func (r *pacienteRepository) Get(_ context.Context, id int64) (*model.Paciente, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.pacientes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *pacienteRepository) GetByRut(_ context.Context, rut string) (*model.Paciente, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.pacientes {
		if p.Rut == rut {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *pacienteRepository) List(_ context.Context) ([]*model.Paciente, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*model.Paciente, 0, len(r.s.pacientes))
	for _, p := range r.s.pacientes {
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *pacienteRepository) Update(_ context.Context, pac *model.Paciente) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.pacientes[pac.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.rutTaken(pac.Rut, pac.ID) {
		return repository.ErrDuplicate
	}
	cp := *pac
	r.s.pacientes[pac.ID] = &cp
	return nil
}
