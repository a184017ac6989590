package handler

import (
	"errors"
	"io"
	"net/http"

	"smartkanban/internal/middleware"
	"smartkanban/internal/repository"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a repository error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrValidation),
		errors.Is(err, repository.ErrInvariant),
		errors.Is(err, repository.ErrReference):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {error}. Unclassified errors are logged and
// hidden behind a generic message.
func respondError(c *gin.Context, logger *log.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(status, ErrorResponse{Error: "Internal server error"})
		return
	}

	msg := err.Error()
	var repoErr *repository.Error
	if errors.As(err, &repoErr) {
		msg = repoErr.Message
	}
	c.JSON(status, ErrorResponse{Error: msg})
}

// bindJSON decodes the request body into req. On failure it answers 400 and
// returns false; translate turns validator field errors into a message.
// An empty body binds as an empty object.
func bindJSON(c *gin.Context, req any, translate func(validator.FieldError) string) bool {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: middleware.BodyTooLargeMessage})
		return false
	}

	var fieldErrs validator.ValidationErrors
	if translate != nil && errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: translate(fieldErrs[0])})
		return false
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
	return false
}
