package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/agenda-api/internal/gate"
	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/internal/service/auth"
	"github.com/jwalitptl/agenda-api/internal/service/recovery"
	"github.com/jwalitptl/agenda-api/pkg/httputil"
)

type Handler struct {
	svc      *auth.Service
	recovery *recovery.Service
}

func NewHandler(svc *auth.Service, recoverySvc *recovery.Service) *Handler {
	return &Handler{svc: svc, recovery: recoverySvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	r.POST("/funcionarios/login", h.Login)

	auth := r.Group("/auth")
	{
		auth.POST("/logout", mw.Authenticate(), h.Logout)
		auth.POST("/recovery", h.RequestCode)
		auth.POST("/recovery/verify", h.VerifyCode)
		auth.POST("/recovery/reset", h.ResetPassword)
	}

	r.GET("/gate", mw.Authenticate(), h.Gate)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Rut, req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, result)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.TokenFrom(c)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "Sesión cerrada"})
}

type recoveryRequest struct {
	Rut string `json:"rut" binding:"required"`
}

type verifyRequest struct {
	Rut    string `json:"rut" binding:"required"`
	Codigo string `json:"codigo" binding:"required,len=6"`
}

type resetRequest struct {
	Rut      string `json:"rut" binding:"required"`
	Codigo   string `json:"codigo" binding:"required,len=6"`
	Password string `json:"password" binding:"required,strong_password"`
}

func (h *Handler) RequestCode(c *gin.Context) {
	var req recoveryRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.recovery.RequestCode(c.Request.Context(), req.Rut); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "Código enviado al correo registrado"})
}

func (h *Handler) VerifyCode(c *gin.Context) {
	var req verifyRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.recovery.VerifyCode(c.Request.Context(), req.Rut, req.Codigo); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"valid": true})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.recovery.Reset(c.Request.Context(), req.Rut, req.Codigo, req.Password); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "Contraseña actualizada"})
}

// Gate reports whether the caller may enter the front-end route named by
// the route query parameter.
func (h *Handler) Gate(c *gin.Context) {
	route := c.Query("route")
	decision := gate.Decide(middleware.SessionFrom(c), gate.RouteRole(route))
	httputil.RespondWithSuccess(c, http.StatusOK, decision)
}
