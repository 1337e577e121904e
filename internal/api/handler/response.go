package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/viralpost/internal/domain"
	"github.com/timmy/viralpost/internal/logger"
)

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError maps the error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).WithError(err).Error("Request failed")
	}
	c.JSON(status, gin.H{
		"success": false,
		"message": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionExists), errors.Is(err, domain.ErrPostImmutable):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": msg,
	})
}
