package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adboardhq/adboard/internal/container"
	handlers "github.com/adboardhq/adboard/internal/interface/http"
	"github.com/adboardhq/adboard/internal/interface/middleware"
	"github.com/adboardhq/adboard/pkg/helpers"
)

// AdModule wires the ad catalog plus the per-ad comment routes.
type AdModule struct {
	Ads      *handlers.AdHandler
	Comments *handlers.CommentHandler
	JWT      *helpers.JWTManager
}

func NewAdModule(ads *handlers.AdHandler, comments *handlers.CommentHandler, jwt *helpers.JWTManager) *AdModule {
	return &AdModule{Ads: ads, Comments: comments, JWT: jwt}
}

func (m *AdModule) Register(rg *gin.RouterGroup) {
	// Public catalog reads
	rg.GET("/ads", m.Ads.Browse)
	rg.GET("/ads/search", m.Ads.Search)
	rg.GET("/ads/:id", m.Ads.Get)
	rg.GET("/ads/:id/image", m.Ads.GetImage)
	rg.GET("/ads/:id/comments", m.Comments.List)
	rg.GET("/ads/:id/comments/:commentId", m.Comments.Get)
	rg.GET("/users/:username/ads", m.Ads.ListByUser)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		writeLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil)

		auth.POST("/ads", writeLimiter, m.Ads.Create)
		auth.PATCH("/ads/:id", writeLimiter, m.Ads.Update)
		auth.PUT("/ads/:id/image", writeLimiter, m.Ads.ReplaceImage)
		auth.DELETE("/ads/:id/image", writeLimiter, m.Ads.RemoveImage)
		auth.DELETE("/ads/:id", m.Ads.Delete)

		auth.POST("/ads/:id/comments", writeLimiter, m.Comments.Create)
		auth.PATCH("/ads/:id/comments/:commentId", writeLimiter, m.Comments.Update)
		auth.DELETE("/ads/:id/comments/:commentId", m.Comments.Delete)
	}
}
