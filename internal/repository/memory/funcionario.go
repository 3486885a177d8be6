package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
)

type funcionarioRepository struct{ s *Store }

func copyFuncionario(f *model.Funcionario) *model.Funcionario {
	cp := *f
	cp.Roles = nil
	cp.TieneDisponibilidad = nil
	return &cp
}

// conflict must be called with the lock held.
func (r *funcionarioRepository) conflict(fun *model.Funcionario) bool {
	for id, f := range r.s.funcionarios {
		if id == fun.ID {
			continue
		}
		if f.Rut == fun.Rut || strings.EqualFold(f.Email, fun.Email) {
			return true
		}
	}
	return false
}

func (r *funcionarioRepository) Create(_ context.Context, fun *model.Funcionario) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insert(fun)
}

func (r *funcionarioRepository) CreateWithRoles(_ context.Context, fun *model.Funcionario, roles []model.RolNombre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.insert(fun); err != nil {
		return err
	}
	for _, nombre := range roles {
		r.s.grants[grant{fun.ID, r.s.rolID(nombre)}] = struct{}{}
	}
	return nil
}

// insert must be called with the write lock held.
func (r *funcionarioRepository) insert(fun *model.Funcionario) error {
	if _, ok := r.s.especialidades[fun.EspecialidadID]; !ok {
		return repository.ErrNotFound
	}
	fun.ID = 0
	if r.conflict(fun) {
		return repository.ErrDuplicate
	}
	fun.ID = r.s.next("funcionario")
	r.s.funcionarios[fun.ID] = copyFuncionario(fun)
	return nil
}

func (r *funcionarioRepository) find(match func(*model.Funcionario) bool) (*model.Funcionario, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, f := range r.s.funcionarios {
		if match(f) {
			return copyFuncionario(f), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *funcionarioRepository) Get(_ context.Context, id int64) (*model.Funcionario, error) {
	return r.find(func(f *model.Funcionario) bool { return f.ID == id })
}

func (r *funcionarioRepository) GetByRut(_ context.Context, rut string) (*model.Funcionario, error) {
	return r.find(func(f *model.Funcionario) bool { return f.Rut == rut })
}

func (r *funcionarioRepository) GetByEmail(_ context.Context, email string) (*model.Funcionario, error) {
	return r.find(func(f *model.Funcionario) bool { return strings.EqualFold(f.Email, email) })
}

func (r *funcionarioRepository) SearchByName(ctx context.Context, name string) ([]*model.Funcionario, error) {
	return r.List(ctx, &model.FuncionarioFilters{Nombre: name})
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (r *funcionarioRepository) List(_ context.Context, filters *model.FuncionarioFilters) ([]*model.Funcionario, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var list []*model.Funcionario
	for _, f := range r.s.funcionarios {
		if filters != nil {
			if filters.Nombre != "" && !containsFold(f.Nombres, filters.Nombre) && !containsFold(f.Apellidos, filters.Nombre) {
				continue
			}
			if filters.Email != "" && !strings.EqualFold(f.Email, filters.Email) {
				continue
			}
			if filters.EspecialidadID != 0 && f.EspecialidadID != filters.EspecialidadID {
				continue
			}
		}
		list = append(list, copyFuncionario(f))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *funcionarioRepository) Update(_ context.Context, fun *model.Funcionario) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.funcionarios[fun.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.especialidades[fun.EspecialidadID]; !ok {
		return repository.ErrNotFound
	}
	if r.conflict(fun) {
		return repository.ErrDuplicate
	}
	// Password changes go through UpdatePassword.
	next := copyFuncionario(fun)
	next.Password = cur.Password
	r.s.funcionarios[fun.ID] = next
	return nil
}

func (r *funcionarioRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.funcionarios[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.Password = passwordHash
	return nil
}

func (r *funcionarioRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.funcionarios[id]; !ok {
		return repository.ErrNotFound
	}
	for g := range r.s.grants {
		if g.funcionarioID == id {
			delete(r.s.grants, g)
		}
	}
	for sid, seg := range r.s.segmentos {
		if seg.FuncionarioID == id {
			r.s.deleteSegmento(sid)
		}
	}
	delete(r.s.funcionarios, id)
	return nil
}
