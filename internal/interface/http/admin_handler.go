package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adboardhq/adboard/internal/application"
	"github.com/adboardhq/adboard/internal/interface/middleware"
	"github.com/adboardhq/adboard/pkg/helpers"
	"github.com/adboardhq/adboard/pkg/response"
)

// AdminHandler exposes operator-only recovery actions.
type AdminHandler struct {
	Cache  application.Cache
	Logger *logrus.Logger
}

func NewAdminHandler(cache application.Cache, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Cache: cache, Logger: logger}
}

// ClearCaches drops every cached region. A recovery hatch for when cached
// state is suspect; normal invalidation never needs it.
func (h *AdminHandler) ClearCaches(c *gin.Context) {
	if err := h.Cache.ClearAll(c.Request.Context()); err != nil {
		if h.Logger != nil {
			helpers.LogError(h.Logger, "cache clear all failed", err, nil)
		}
		resp := response.Error[any](c, http.StatusInternalServerError, "cache clear failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	if h.Logger != nil {
		helpers.LogInfo(h.Logger, "all cache regions cleared", logrus.Fields{"by": c.GetString(middleware.CtxUserIDKey)})
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"cleared": true}, "caches cleared", nil)
	c.JSON(resp.Status, resp)
}
