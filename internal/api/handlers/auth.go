package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/propdesk/internal/api/middleware"
	"github.com/propdesk/propdesk/internal/core/session"
	"github.com/propdesk/propdesk/internal/core/workspace"
)

type AuthHandler struct {
	sessions *session.Service
	registry *workspace.Registry
}

func NewAuthHandler(sessions *session.Service, registry *workspace.Registry) *AuthHandler {
	return &AuthHandler{sessions: sessions, registry: registry}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := h.sessions.Login(c.Request.Context(), middleware.GetSessionID(c), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.SetSession(c, v)

	c.JSON(http.StatusOK, meResponse(v))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sid := middleware.GetSessionID(c)
	if err := h.sessions.Logout(c.Request.Context(), sid); err != nil {
		respondError(c, err)
		return
	}
	h.registry.Evict(sid)

	c.JSON(http.StatusOK, meResponse(session.Values{}))
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, meResponse(middleware.GetSession(c)))
}

func meResponse(v session.Values) gin.H {
	resp := gin.H{"logged_in": v.LoggedIn(), "can_edit": v.LoggedIn()}
	if v.LoggedIn() {
		resp["user"] = v
	}
	return resp
}
