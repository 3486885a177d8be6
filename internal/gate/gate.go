// Package gate decides whether a session may enter a route.
package gate

import (
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/session"
)

const (
	RedirectLanding   = "/"
	RedirectDashboard = "/dashboard"
)

type Reason string

const (
	ReasonAllowed     Reason = ""
	ReasonNoSession   Reason = "no_session"
	ReasonNoRole      Reason = "no_required_role"
	ReasonMissingRole Reason = "missing_role"
)

type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
	Reason   Reason `json:"reason,omitempty"`
}

// Decide grants entry when s is a live session holding required.
func Decide(s *session.Session, required model.RolNombre) Decision {
	switch {
	case s == nil || s.ID == 0:
		return Decision{Redirect: RedirectLanding, Reason: ReasonNoSession}
	case required == "":
		return Decision{Redirect: RedirectLanding, Reason: ReasonNoRole}
	case !s.HasRole(required):
		return Decision{Redirect: RedirectDashboard, Reason: ReasonMissingRole}
	}
	return Decision{Allowed: true}
}

var routeRoles = map[string]model.RolNombre{
	"inscripcion": model.RolInscripcion,
	"agenda":      model.RolAgenda,
	"citas":       model.RolCitas,
}

// RouteRole returns the role guarding a front-end route. Unknown routes
// fall back to the agenda role.
func RouteRole(route string) model.RolNombre {
	if r, ok := routeRoles[route]; ok {
		return r
	}
	return model.RolAgenda
}
