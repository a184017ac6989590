package handler

import (
	"net/http"

	"smartkanban/internal/auth"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// SharedLoginHandler exchanges the shared username and password for a token.
type SharedLoginHandler struct {
	shared *auth.SharedSecret
	logger *log.Logger
}

func NewSharedLoginHandler(shared *auth.SharedSecret, logger *log.Logger) *SharedLoginHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &SharedLoginHandler{shared: shared, logger: logger}
}

type SharedLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Login godoc
// @Summary      Shared-secret login
// @Description  Returns an opaque token to send as Bearer or X-Auth-Token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      SharedLoginRequest  true  "Credentials"
// @Success      200          {object}  TokenResponse
// @Failure      400          {object}  ErrorResponse
// @Failure      401          {object}  ErrorResponse
// @Router       /login [post]
func (h *SharedLoginHandler) Login(c *gin.Context) {
	var req SharedLoginRequest
	if !bindJSON(c, &req, func(validator.FieldError) string { return "Username and password required" }) {
		return
	}

	token, err := h.shared.Login(req.Username, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}
