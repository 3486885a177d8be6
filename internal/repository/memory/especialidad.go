package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
)

type especialidadRepository struct{ s *Store }

func (r *especialidadRepository) Create(_ context.Context, esp *model.Especialidad) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.especialidades {
		if strings.EqualFold(e.Nombre, esp.Nombre) {
			return repository.ErrDuplicate
		}
	}
	esp.ID = r.s.next("especialidad")
	cp := *esp
	r.s.especialidades[esp.ID] = &cp
	return nil
}

func (r *especialidadRepository) Get(_ context.Context, id int64) (*model.Especialidad, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.especialidades[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *especialidadRepository) List(_ context.Context) ([]*model.Especialidad, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*model.Especialidad, 0, len(r.s.especialidades))
	for _, e := range r.s.especialidades {
		cp := *e
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
