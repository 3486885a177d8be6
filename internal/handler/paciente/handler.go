package paciente

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/service/paciente"
	"github.com/jwalitptl/agenda-api/pkg/httputil"
)

type Handler struct {
	service *paciente.Service
}

func NewHandler(service *paciente.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	pacientes := r.Group("/pacientes", mw.Authenticate())
	{
		pacientes.GET("", h.List)
		pacientes.GET("/rut/:rut", h.GetByRut)
		pacientes.GET("/:id", h.Get)
	}

	inscripcion := pacientes.Group("", mw.RequireRole(model.RolInscripcion))
	{
		inscripcion.POST("", h.Create)
		inscripcion.PUT("/:id", h.Update)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.PacienteRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	pac, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, pac)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.PacienteRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	pac, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, pac)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	pac, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, pac)
}

func (h *Handler) GetByRut(c *gin.Context) {
	pac, err := h.service.GetByRut(c.Request.Context(), c.Param("rut"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, pac)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, list)
}
