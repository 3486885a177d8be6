// Package session models the authenticated funcionario attached to a
// request and the stores that keep it between requests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/agenda-api/internal/model"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID             int64             `json:"id"`
	Rut            string            `json:"rut"`
	Nombres        string            `json:"nombres"`
	Apellidos      string            `json:"apellidos"`
	EspecialidadID int64             `json:"especialidadId"`
	Roles          []model.RolNombre `json:"roles"`
	IssuedAt       time.Time         `json:"issuedAt"`
}

func New(fun *model.Funcionario, roles []model.RolNombre) *Session {
	return &Session{
		ID:             fun.ID,
		Rut:            fun.Rut,
		Nombres:        fun.Nombres,
		Apellidos:      fun.Apellidos,
		EspecialidadID: fun.EspecialidadID,
		Roles:          roles,
		IssuedAt:       time.Now().UTC(),
	}
}

func (s *Session) HasRole(nombre model.RolNombre) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == nombre {
			return true
		}
	}
	return false
}

// Store keeps sessions keyed by token ID.
type Store interface {
	Save(ctx context.Context, key string, s *Session, ttl time.Duration) error
	Get(ctx context.Context, key string) (*Session, error)
	Delete(ctx context.Context, key string) error
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
