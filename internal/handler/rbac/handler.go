package rbac

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/service/rbac"
	"github.com/jwalitptl/agenda-api/pkg/httputil"
)

type Handler struct {
	service *rbac.Service
}

func NewHandler(service *rbac.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	r.GET("/roles", h.ListRoles)

	roles := r.Group("/funcionarios/:id/roles", mw.Authenticate())
	{
		roles.GET("", h.ListFuncionarioRoles)
		roles.GET("/:rolNombre", h.HasRole)
		roles.POST("/:rolNombre", h.AssignRole)
		roles.DELETE("/:rolNombre", h.RemoveRole)
	}
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, roles)
}

func (h *Handler) ListFuncionarioRoles(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	roles, err := h.service.Roles(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, roles)
}

func (h *Handler) HasRole(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	nombre := model.RolNombre(c.Param("rolNombre"))
	ok, err := h.service.HasRole(c.Request.Context(), id, nombre)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"rol": nombre, "tieneRol": ok})
}

func (h *Handler) AssignRole(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	nombre := model.RolNombre(c.Param("rolNombre"))
	if err := h.service.AssignRole(c.Request.Context(), id, nombre); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"funcionarioId": id, "rol": nombre})
}

func (h *Handler) RemoveRole(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	nombre := model.RolNombre(c.Param("rolNombre"))
	if err := h.service.RemoveRole(c.Request.Context(), id, nombre); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"funcionarioId": id, "rol": nombre})
}
