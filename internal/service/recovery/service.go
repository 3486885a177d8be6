package recovery

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/internal/email"
	"github.com/jwalitptl/agenda-api/internal/repository"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
	"github.com/jwalitptl/agenda-api/pkg/validator"
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// MaxAttempts wrong guesses discard the pending code.
	MaxAttempts = 5

	msgRutNotFound     = "RUT no encontrado"
	msgInvalidCode     = "Código inválido"
	msgTooManyAttempts = "Demasiados intentos, solicite un nuevo código"
)

func attemptsKey(rut string) string { return "intentos:" + rut }

// PasswordResetter stores a new password under the recovery policy.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, funcionarioID int64, password string) error
}

type Service struct {
	funcionarioRepo repository.FuncionarioRepository
	passwords       PasswordResetter
	mailer          email.Service
	codes           *cache.Cache
	metrics         *metrics.Metrics
}

func NewService(funcionarioRepo repository.FuncionarioRepository, passwords PasswordResetter,
	mailer email.Service, codeTTL time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		funcionarioRepo: funcionarioRepo,
		passwords:       passwords,
		mailer:          mailer,
		codes:           cache.New(codeTTL, 2*codeTTL),
		metrics:         m,
	}
}

func (s *Service) record(stage string, err error) {
	if s.metrics != nil {
		s.metrics.RecoveryRequests.WithLabelValues(stage, metrics.Status(err)).Inc()
	}
}

func generateCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// RequestCode mails a fresh code to the funcionario owning rut. A new
// request replaces any pending code.
func (s *Service) RequestCode(ctx context.Context, rut string) (err error) {
	defer func() { s.record("request", err) }()

	rut = validator.CleanRut(rut)
	fun, err := s.funcionarioRepo.GetByRut(ctx, rut)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound(msgRutNotFound, err)
		}
		return apperrors.Internal(err)
	}

	code, err := generateCode()
	if err != nil {
		return apperrors.Internal(err)
	}
	s.codes.Set(rut, code, cache.DefaultExpiration)
	s.codes.Delete(attemptsKey(rut))

	if err := s.mailer.SendRecoveryCode(ctx, fun.Email, fun.Nombres, code); err != nil {
		s.codes.Delete(rut)
		log.Error().Err(err).Int64("funcionario_id", fun.ID).Msg("failed to send recovery code")
		return apperrors.Internal(err)
	}
	log.Info().Int64("funcionario_id", fun.ID).Msg("recovery code sent")
	return nil
}

// check compares code with the pending one. Each miss is counted under the
// RUT; the MaxAttempts-th miss drops the code.
func (s *Service) check(rut, code string) error {
	stored, ok := s.codes.Get(rut)
	if !ok {
		return apperrors.BadRequest(msgInvalidCode, nil)
	}
	if stored.(string) == code {
		return nil
	}

	key := attemptsKey(rut)
	_ = s.codes.Add(key, 0, cache.DefaultExpiration)
	n, err := s.codes.IncrementInt(key, 1)
	if err != nil {
		return apperrors.Internal(err)
	}
	if n >= MaxAttempts {
		s.codes.Delete(rut)
		s.codes.Delete(key)
		log.Warn().Str("rut", rut).Int("attempts", n).Msg("recovery code discarded after failed attempts")
		return apperrors.BadRequest(msgTooManyAttempts, nil)
	}
	return apperrors.BadRequest(msgInvalidCode, nil)
}

func (s *Service) VerifyCode(_ context.Context, rut, code string) (err error) {
	defer func() { s.record("verify", err) }()
	return s.check(validator.CleanRut(rut), code)
}

// Reset sets the new password and consumes the code.
func (s *Service) Reset(ctx context.Context, rut, code, password string) (err error) {
	defer func() { s.record("reset", err) }()

	rut = validator.CleanRut(rut)
	if err := s.check(rut, code); err != nil {
		return err
	}

	fun, err := s.funcionarioRepo.GetByRut(ctx, rut)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound(msgRutNotFound, err)
		}
		return apperrors.Internal(err)
	}

	if err := s.passwords.ResetPassword(ctx, fun.ID, password); err != nil {
		return err
	}
	s.codes.Delete(rut)
	s.codes.Delete(attemptsKey(rut))
	log.Info().Int64("funcionario_id", fun.ID).Msg("password reset")
	return nil
}
