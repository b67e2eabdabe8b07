package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/middleware"
	"inkwell/internal/services"
	"inkwell/internal/session"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

var errNoSession = errors.New("session middleware not installed")

func sessionBody(s session.Session) gin.H {
	return gin.H{
		"authenticated": s.IsAuthenticated(),
		"state":         s.State.String(),
		"user":          s.User,
	}
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m := middleware.Manager(c)
	if m == nil {
		RespondError(c, services.NewInternalError("login unavailable", errNoSession))
		return
	}
	s, err := m.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	middleware.SetSession(c, s)
	c.JSON(http.StatusOK, sessionBody(s))
}

// Signup 注册并登录
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m := middleware.Manager(c)
	if m == nil {
		RespondError(c, services.NewInternalError("signup unavailable", errNoSession))
		return
	}
	s, err := m.Signup(c.Request.Context(), req.DisplayName, req.Username, req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	middleware.SetSession(c, s)
	c.JSON(http.StatusCreated, sessionBody(s))
}

// Logout 退出登录
func (h *AuthHandler) Logout(c *gin.Context) {
	m := middleware.Manager(c)
	if m == nil {
		RespondError(c, services.NewInternalError("logout unavailable", errNoSession))
		return
	}
	s, err := m.Logout(c.Request.Context())
	if err != nil {
		RespondError(c, services.NewInternalError("failed to clear session", err))
		return
	}
	middleware.SetSession(c, s)
	c.JSON(http.StatusOK, sessionBody(s))
}

// Me 当前会话
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, sessionBody(middleware.CurrentSession(c)))
}
