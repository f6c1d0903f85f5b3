package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/flashlytics/internal/analytics"
)

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, errorEnvelope{Error: apiError{Message: msg, Code: code}})
}

// respondCondition maps the analytics condition taxonomy onto HTTP statuses.
func respondCondition(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analytics.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, analytics.ErrRangeTooLarge):
		respondError(c, http.StatusUnprocessableEntity, "range_too_large", err)
	case errors.Is(err, analytics.ErrTimeout):
		respondError(c, http.StatusGatewayTimeout, "timeout", err)
	case errors.Is(err, analytics.ErrStoreUnavailable):
		respondError(c, http.StatusServiceUnavailable, "store_unavailable", err)
	default:
		respondError(c, http.StatusInternalServerError, "internal", err)
	}
}
