package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/repository"
	"github.com/jwalitptl/agenda-api/internal/session"
	jwtauth "github.com/jwalitptl/agenda-api/pkg/auth"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
	"github.com/jwalitptl/agenda-api/pkg/security"
	"github.com/jwalitptl/agenda-api/pkg/validator"
)

const (
	msgInvalidCredentials = "RUT o contraseña incorrectos"
	msgInvalidSession     = "Sesión inválida o expirada"
)

// RoleSource returns the current role names of a funcionario.
type RoleSource interface {
	Roles(ctx context.Context, funcionarioID int64) ([]model.RolNombre, error)
}

type LoginResult struct {
	Token       string             `json:"token"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	Funcionario *model.Funcionario `json:"funcionario"`
	Session     *session.Session   `json:"session"`
}

type Service struct {
	funcionarioRepo repository.FuncionarioRepository
	hasher          security.PasswordHasher
	tokens          *jwtauth.Manager
	sessions        session.Store
	roles           RoleSource
	metrics         *metrics.Metrics
}

func NewService(funcionarioRepo repository.FuncionarioRepository, hasher security.PasswordHasher,
	tokens *jwtauth.Manager, sessions session.Store, roles RoleSource, m *metrics.Metrics) *Service {
	return &Service{
		funcionarioRepo: funcionarioRepo,
		hasher:          hasher,
		tokens:          tokens,
		sessions:        sessions,
		roles:           roles,
		metrics:         m,
	}
}

func (s *Service) record(result string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}

// Login checks the credentials and opens a session. Unknown RUTs and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, rut, password string) (*LoginResult, error) {
	fun, err := s.funcionarioRepo.GetByRut(ctx, validator.CleanRut(rut))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.record("unknown_rut")
			return nil, apperrors.Unauthorized(msgInvalidCredentials, nil)
		}
		s.record("error")
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(fun.Password, password); err != nil {
		s.record("bad_password")
		return nil, apperrors.Unauthorized(msgInvalidCredentials, nil)
	}

	roles, err := s.roles.Roles(ctx, fun.ID)
	if err != nil {
		s.record("error")
		return nil, err
	}
	fun.Roles = roles

	token, claims, err := s.tokens.Issue(fun.ID, fun.Rut)
	if err != nil {
		s.record("error")
		return nil, apperrors.Internal(err)
	}

	sess := session.New(fun, roles)
	if err := s.sessions.Save(ctx, claims.ID, sess, s.tokens.Expiry()); err != nil {
		s.record("error")
		return nil, apperrors.Internal(err)
	}

	s.record("success")
	log.Info().Int64("funcionario_id", fun.ID).Msg("login")
	return &LoginResult{
		Token:       token,
		ExpiresAt:   claims.ExpiresAt.Time,
		Funcionario: fun,
		Session:     sess,
	}, nil
}

// Resolve validates the token and returns its session with the roles the
// funcionario holds now.
func (s *Service) Resolve(ctx context.Context, token string) (*session.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.Unauthorized(msgInvalidSession, err)
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgInvalidSession, err)
		}
		return nil, apperrors.Internal(err)
	}

	roles, err := s.roles.Roles(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	sess.Roles = roles
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return apperrors.Unauthorized(msgInvalidSession, err)
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return apperrors.Internal(err)
	}
	log.Info().Int64("funcionario_id", claims.FuncionarioID).Msg("logout")
	return nil
}
