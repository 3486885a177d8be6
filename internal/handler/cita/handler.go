package cita

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/service/cita"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/httputil"
)

type Handler struct {
	service *cita.Service
}

func NewHandler(service *cita.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	citas := r.Group("/citas", mw.Authenticate(), mw.RequireRole(model.RolCitas))
	{
		citas.POST("/assign", h.Assign)
		citas.GET("", h.List)
		citas.GET("/:id", h.Get)
	}
}

// Assign books a patient onto a segment. Both ids come as query
// parameters.
func (h *Handler) Assign(c *gin.Context) {
	var req model.AssignCitaRequest
	if err := httputil.BindQuery(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	cita, err := h.service.Assign(c.Request.Context(), req.PacienteID, req.SegmentoHorarioID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	detalle, err := h.service.Get(c.Request.Context(), cita.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, detalle)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	detalle, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, detalle)
}

func (h *Handler) List(c *gin.Context) {
	pacienteID, byPaciente, err := httputil.QueryID(c, "pacienteId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	funcionarioID, byFuncionario, err := httputil.QueryID(c, "funcionarioId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var list []*model.CitaDetalle
	switch {
	case byPaciente:
		list, err = h.service.ListByPaciente(c.Request.Context(), pacienteID)
	case byFuncionario:
		list, err = h.service.ListByFuncionario(c.Request.Context(), funcionarioID)
	default:
		err = apperrors.BadRequest("Debe indicar pacienteId o funcionarioId", nil)
	}
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, list)
}
