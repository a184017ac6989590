package handler

import (
	"net/http"

	"smartkanban/internal/auth"
	"smartkanban/internal/middleware"
	"smartkanban/internal/model"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// RefreshCookie is the name of the HttpOnly cookie carrying the refresh token.
const RefreshCookie = "refreshToken"

// UserHandler serves the per-account auth routes.
type UserHandler struct {
	account      *auth.Account
	cookieSecure bool
	logger       *log.Logger
}

func NewUserHandler(account *auth.Account, cookieSecure bool, logger *log.Logger) *UserHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &UserHandler{account: account, cookieSecure: cookieSecure, logger: logger}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User        model.PublicUser `json:"user"`
	AccessToken string           `json:"accessToken"`
}

type MeResponse struct {
	User model.PublicUser `json:"user"`
}

func registerMessage(fe validator.FieldError) string {
	if fe.Field() == "Email" {
		return "Email is required"
	}
	return "Password must be at least 6 characters"
}

func loginMessage(validator.FieldError) string {
	return "Email and password required"
}

// Register godoc
// @Summary      Register an account
// @Description  Creates the user with a default project and starts a session
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      RegisterRequest  true  "Credentials"
// @Success      201          {object}  AuthResponse
// @Failure      400          {object}  ErrorResponse
// @Failure      409          {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req, registerMessage) {
		return
	}

	session, err := h.account.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken.Token)
	c.JSON(http.StatusCreated, AuthResponse{User: session.User, AccessToken: session.AccessToken})
}

// Login godoc
// @Summary      Log in
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      LoginRequest  true  "Credentials"
// @Success      200          {object}  AuthResponse
// @Failure      400          {object}  ErrorResponse
// @Failure      401          {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req, loginMessage) {
		return
	}

	session, err := h.account.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken.Token)
	c.JSON(http.StatusOK, AuthResponse{User: session.User, AccessToken: session.AccessToken})
}

// Refresh godoc
// @Summary      Rotate the refresh token
// @Description  Consumes the refreshToken cookie and issues a new access token and cookie
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  AuthResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(RefreshCookie)

	session, err := h.account.Refresh(c.Request.Context(), token)
	if err != nil {
		if statusFor(err) == http.StatusUnauthorized && token != "" {
			h.clearRefreshCookie(c)
		}
		respondError(c, h.logger, err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken.Token)
	c.JSON(http.StatusOK, AuthResponse{User: session.User, AccessToken: session.AccessToken})
}

// Logout godoc
// @Summary      Log out
// @Tags         Auth
// @Success      204
// @Router       /auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(RefreshCookie)
	if err := h.account.Logout(c.Request.Context(), token); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MeResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.UserID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, MeResponse{User: model.PublicUser{ID: id.UserID, Email: id.Email}})
}

func (h *UserHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookie, token, int(h.account.RefreshTTL().Seconds()), "/", "", h.cookieSecure, true)
}

func (h *UserHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookie, "", -1, "/", "", h.cookieSecure, true)
}
