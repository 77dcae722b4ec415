package handlers

import (
	"errors"
	"net/http"

	"linkbuckets/internal/services"

	"github.com/gin-gonic/gin"
)

// respondOK wraps data in the standard success envelope.
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// respondError maps service errors onto HTTP statuses. Anything that is not
// one of the request-level sentinels is treated as an internal error and its
// detail stays out of the response body.
func respondError(c *gin.Context, err error) {
	status := statusFromError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		c.Error(err)
		message = "Internal server error"
	}
	c.JSON(status, gin.H{"success": false, "error": message})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
