package especialidad

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/agenda-api/internal/service/especialidad"
	"github.com/jwalitptl/agenda-api/pkg/httputil"
)

type Handler struct {
	service *especialidad.Service
}

func NewHandler(service *especialidad.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	especialidades := r.Group("/especialidades")
	{
		especialidades.GET("", h.List)
		especialidades.GET("/:id", h.Get)
	}
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
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

	esp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, esp)
}
