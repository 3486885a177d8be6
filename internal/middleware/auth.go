package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/internal/gate"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/session"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/httputil"
)

const (
	ContextSession = "session"
	ContextToken   = "token"
)

// SessionResolver turns a bearer token into the caller's session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

type AuthMiddleware struct {
	resolver SessionResolver
}

func NewAuthMiddleware(resolver SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Authenticate resolves the bearer token and attaches the session to the
// gin and request contexts.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized("Sesión requerida", nil))
			return
		}

		sess, err := m.resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		c.Set(ContextSession, sess)
		c.Set(ContextToken, token)
		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
		c.Next()
	}
}

// RequireRole lets the request through only when gate.Decide allows the
// session into a route guarded by nombre.
func (m *AuthMiddleware) RequireRole(nombre model.RolNombre) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		d := gate.Decide(sess, nombre)
		if d.Allowed {
			c.Next()
			return
		}

		if d.Reason == gate.ReasonNoSession {
			httputil.RespondWithError(c, apperrors.Unauthorized("Sesión requerida", nil))
			return
		}
		log.Debug().
			Int64("funcionario_id", sess.ID).
			Str("rol", string(nombre)).
			Str("path", c.FullPath()).
			Msg("role gate denied")
		httputil.RespondWithError(c, apperrors.Forbidden("No tiene permisos para acceder a este recurso", nil))
	}
}

// SessionFrom returns the session set by Authenticate, or nil.
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

func TokenFrom(c *gin.Context) string {
	return c.GetString(ContextToken)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
