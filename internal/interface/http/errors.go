package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adboardhq/adboard/internal/application"
	"github.com/adboardhq/adboard/internal/infrastructure/media"
	"github.com/adboardhq/adboard/pkg/response"
)

// writeError maps domain errors to transport responses. Missing and
// not-owned resources share one 404.
func writeError(c *gin.Context, err error) {
	var vErr *application.ValidationError
	var mErr *media.Error

	switch {
	case errors.Is(err, application.ErrNotFound):
		resp := response.Error[any](c, http.StatusNotFound, "not found", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrConflict):
		resp := response.Error[any](c, http.StatusConflict, "already exists", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrInvalidCredentials):
		resp := response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		c.JSON(resp.Status, resp)
	case errors.As(err, &vErr):
		resp := response.Error[any](c, http.StatusBadRequest, "validation failed", map[string]string{vErr.Field: vErr.Reason})
		c.JSON(resp.Status, resp)
	case errors.As(err, &mErr):
		resp := response.Error[any](c, http.StatusBadRequest, "invalid media", mErr.Reason)
		c.JSON(resp.Status, resp)
	default:
		resp := response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		c.JSON(resp.Status, resp)
	}
}
