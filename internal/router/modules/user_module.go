package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adboardhq/adboard/internal/container"
	handlers "github.com/adboardhq/adboard/internal/interface/http"
	"github.com/adboardhq/adboard/internal/interface/middleware"
	"github.com/adboardhq/adboard/pkg/helpers"
)

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	// Avatars are public so ad pages can embed them without a session
	rg.GET("/users/:username/avatar", m.Handler.GetAvatar)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.PUT("/profile/password", m.Handler.ChangePassword)

		avatarLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByUserID(), nil)
		auth.PUT("/profile/avatar", avatarLimiter, m.Handler.ReplaceAvatar)
		auth.DELETE("/profile/avatar", avatarLimiter, m.Handler.RemoveAvatar)
	}
}
