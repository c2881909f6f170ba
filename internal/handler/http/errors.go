package http

import (
	"errors"
	"net/http"

	"github.com/caps24escola/pixel-world/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HandleServiceError writes the HTTP response for a service error.
func HandleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		ErrorResponse(c, http.StatusNotFound, err.Error())
	} else {
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
