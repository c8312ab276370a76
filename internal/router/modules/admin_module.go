package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adboardhq/adboard/internal/container"
	"github.com/adboardhq/adboard/internal/domain/entity"
	handlers "github.com/adboardhq/adboard/internal/interface/http"
	"github.com/adboardhq/adboard/internal/interface/middleware"
	"github.com/adboardhq/adboard/pkg/helpers"
)

type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(container.GetRedis(), m.JWT))
	admin.Use(middleware.RequireRole(string(entity.RoleAdmin)))
	{
		// Internal callers skip the limit; a full clear is expensive enough
		// to throttle from anywhere else.
		clearLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP())
		admin.POST("/cache/clear", clearLimiter, m.Handler.ClearCaches)
	}
}
