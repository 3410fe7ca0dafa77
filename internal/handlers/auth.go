package handlers

import (
	"errors"
	"net/http"

	"github.com/josenava/meal-calendar/internal/auth"
	dom "github.com/josenava/meal-calendar/internal/domain"
	"github.com/josenava/meal-calendar/internal/dto"
	"github.com/josenava/meal-calendar/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles login, register, logout and the current user.
type AuthHandler struct {
	tokens  *auth.Tokens
	userSvc *service.UserService
	log     *zap.Logger
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(tokens *auth.Tokens, userSvc *service.UserService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{tokens: tokens, userSvc: userSvc, log: log}
}

// Login godoc
// @Summary      Issue an access token
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      201   {object}  dto.TokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/token [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		writeError(c, h.log, err)
		return
	}
	h.issue(c, user)
}

// Register godoc
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Credentials"
// @Success      201   {object}  dto.TokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, dom.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
			return
		}
		writeError(c, h.log, err)
		return
	}
	h.issue(c, user)
}

// Logout godoc
// @Summary      Revoke the presented token
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw := auth.BearerToken(c); raw != "" {
		if err := h.tokens.Revoke(c.Request.Context(), raw); err != nil {
			h.log.Warn("token revoke failed", zap.Error(err))
		}
	}
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.userSvc.Get(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{ID: user.ID, Username: user.Username})
}

func (h *AuthHandler) issue(c *gin.Context, user dom.User) {
	tok, err := h.tokens.Issue(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TokenResponse{
		AccessToken: tok.Value,
		TokenType:   "bearer",
		ExpiresAt:   tok.ExpiresAt,
		User:        dto.UserResponse{ID: user.ID, Username: user.Username},
	})
}
