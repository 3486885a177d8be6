package funcionario

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/service/funcionario"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/httputil"
)

type Handler struct {
	service *funcionario.Service
}

func NewHandler(service *funcionario.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	funcionarios := r.Group("/funcionarios")
	funcionarios.POST("", h.Register)

	authed := funcionarios.Group("", mw.Authenticate())
	{
		authed.GET("", h.List)
		authed.GET("/buscar", h.Search)
		authed.GET("/rut/:rut", h.GetByRut)
		authed.GET("/email/:email", h.GetByEmail)
		authed.GET("/:id", h.Get)
		authed.PUT("/:id", h.Update)
		authed.PUT("/:id/password", h.ChangePassword)
		authed.DELETE("/:id", h.Delete)
	}

	agenda := authed.Group("", mw.RequireRole(model.RolAgenda))
	{
		agenda.GET("/:id/segmentos", h.Segmentos)
		agenda.GET("/:id/disponibilidad", h.Disponibilidad)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterFuncionarioRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	fun, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, fun)
}

func (h *Handler) List(c *gin.Context) {
	var filters model.FuncionarioFilters
	if err := httputil.BindQuery(c, &filters); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	list, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, list)
}

func (h *Handler) Search(c *gin.Context) {
	list, err := h.service.Search(c.Request.Context(), c.Query("nombre"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, list)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	fun, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, fun)
}

func (h *Handler) GetByRut(c *gin.Context) {
	fun, err := h.service.GetByRut(c.Request.Context(), c.Param("rut"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, fun)
}

func (h *Handler) GetByEmail(c *gin.Context) {
	fun, err := h.service.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, fun)
}

// selfID returns the :id parameter when it names the caller.
func selfID(c *gin.Context) (int64, error) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		return 0, err
	}
	if sess := middleware.SessionFrom(c); sess == nil || sess.ID != id {
		return 0, apperrors.Forbidden("Solo puede modificar su propio perfil", nil)
	}
	return id, nil
}

func (h *Handler) Update(c *gin.Context) {
	id, err := selfID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateFuncionarioRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	fun, err := h.service.UpdateProfile(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, fun)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	id, err := selfID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.ChangePasswordRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), id, req.Password); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "Contraseña actualizada"})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"id": id})
}

func (h *Handler) Segmentos(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	segs, err := h.service.Segmentos(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, segs)
}

func (h *Handler) Disponibilidad(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	ok, err := h.service.Disponibilidad(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"funcionarioId": id, "tieneDisponibilidad": ok})
}
