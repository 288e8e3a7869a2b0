// Package response writes the service's JSON success and error bodies.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shareit/service-booking/internal/platform/apperror"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Success writes 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error maps err to its HTTP status and writes the error body. Unclassified
// errors are reported as 500 with a generic message; the cause is attached
// to the context for the logging middleware.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	status := apperror.HTTPStatus(err)
	msg := "internal server error"
	var appErr *apperror.Error
	if errors.As(err, &appErr) && status != http.StatusInternalServerError {
		msg = appErr.Message
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// BadRequest writes 400 with message.
func BadRequest(c *gin.Context, message string) {
	Error(c, apperror.NewValidationError(message))
}
