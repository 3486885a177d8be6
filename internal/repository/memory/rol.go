package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
)

type rolRepository struct{ s *Store }

func (r *rolRepository) Create(_ context.Context, rol *model.Rol) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.roles {
		if existing.Nombre == rol.Nombre {
			return repository.ErrDuplicate
		}
	}
	rol.ID = r.s.next("rol")
	cp := *rol
	r.s.roles[rol.ID] = &cp
	return nil
}

// rolID returns the id of the named role, adding it to the catalog when
// missing. Must be called with the write lock held.
func (s *Store) rolID(nombre model.RolNombre) int64 {
	for id, rol := range s.roles {
		if rol.Nombre == nombre {
			return id
		}
	}
	id := s.next("rol")
	s.roles[id] = &model.Rol{ID: id, Nombre: nombre}
	return id
}

func sortRoles(list []*model.Rol) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

func (r *rolRepository) List(_ context.Context) ([]*model.Rol, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*model.Rol, 0, len(r.s.roles))
	for _, rol := range r.s.roles {
		cp := *rol
		list = append(list, &cp)
	}
	sortRoles(list)
	return list, nil
}

func (r *rolRepository) GetByNombre(_ context.Context, nombre model.RolNombre) (*model.Rol, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rol := range r.s.roles {
		if rol.Nombre == nombre {
			cp := *rol
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *rolRepository) ListByFuncionario(_ context.Context, funcionarioID int64) ([]*model.Rol, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var list []*model.Rol
	for g := range r.s.grants {
		if g.funcionarioID != funcionarioID {
			continue
		}
		if rol, ok := r.s.roles[g.rolID]; ok {
			cp := *rol
			list = append(list, &cp)
		}
	}
	sortRoles(list)
	return list, nil
}

func (r *rolRepository) Assign(_ context.Context, funcionarioID, rolID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.funcionarios[funcionarioID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.roles[rolID]; !ok {
		return repository.ErrNotFound
	}
	r.s.grants[grant{funcionarioID, rolID}] = struct{}{}
	return nil
}

func (r *rolRepository) Remove(_ context.Context, funcionarioID, rolID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g := grant{funcionarioID, rolID}
	if _, ok := r.s.grants[g]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.grants, g)
	return nil
}

func (r *rolRepository) HasRole(_ context.Context, funcionarioID int64, nombre model.RolNombre) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for g := range r.s.grants {
		if g.funcionarioID != funcionarioID {
			continue
		}
		if rol, ok := r.s.roles[g.rolID]; ok && rol.Nombre == nombre {
			return true, nil
		}
	}
	return false, nil
}
