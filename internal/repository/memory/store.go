// Package memory keeps every repository in process memory. It backs the
// default storage mode and the HTTP integration tests.
package memory

import (
	"sync"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
)

type grant struct {
	funcionarioID int64
	rolID         int64
}

// Store holds all tables behind one lock. Composite writes (segment plus
// cupos, assignment) happen under a single write lock so readers never see
// them half applied.
type Store struct {
	mu sync.RWMutex

	seq map[string]int64

	especialidades map[int64]*model.Especialidad
	funcionarios   map[int64]*model.Funcionario
	pacientes      map[int64]*model.Paciente
	segmentos      map[int64]*model.SegmentoHorario
	cupos          map[int64]*model.Cupo
	citas          map[int64]*model.Cita
	roles          map[int64]*model.Rol
	grants         map[grant]struct{}
}

func NewStore() *Store {
	return &Store{
		seq:            make(map[string]int64),
		especialidades: make(map[int64]*model.Especialidad),
		funcionarios:   make(map[int64]*model.Funcionario),
		pacientes:      make(map[int64]*model.Paciente),
		segmentos:      make(map[int64]*model.SegmentoHorario),
		cupos:          make(map[int64]*model.Cupo),
		citas:          make(map[int64]*model.Cita),
		roles:          make(map[int64]*model.Rol),
		grants:         make(map[grant]struct{}),
	}
}

// Repositories returns views over the store implementing every repository.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Especialidades: &especialidadRepository{s},
		Funcionarios:   &funcionarioRepository{s},
		Pacientes:      &pacienteRepository{s},
		Segmentos:      &segmentoRepository{s},
		Citas:          &citaRepository{s},
		Roles:          &rolRepository{s},
	}
}

// next must be called with the write lock held.
func (s *Store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}
