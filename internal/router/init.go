package router

import (
	"github.com/adboardhq/adboard/internal/application"
	"github.com/adboardhq/adboard/internal/container"
	pginfra "github.com/adboardhq/adboard/internal/infrastructure/postgres"
	handlers "github.com/adboardhq/adboard/internal/interface/http"
	"github.com/adboardhq/adboard/internal/router/modules"
)

type UserModuleDeps struct {
	Service     *application.UserService
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	repo := pginfra.NewUserRepository(container.GetPGPool())
	cfg := container.GetConfig()

	var mail application.EmailPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		mail = pub
	}

	service := application.NewUserService(
		repo,
		container.GetTxManager(),
		container.GetMedia(),
		container.GetJWT(),
		container.GetRedis(),
		mail,
		container.GetLogger(),
	)

	return UserModuleDeps{
		Service:     service,
		AuthHandler: handlers.NewAuthHandler(service, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure),
		UserHandler: handlers.NewUserHandler(service, container.GetLogger()),
	}
}

type AdModuleDeps struct {
	AdService      *application.AdService
	AdReader       *application.AdReader
	CommentService *application.CommentService
	CommentReader  *application.CommentReader
	AdHandler      *handlers.AdHandler
	CommentHandler *handlers.CommentHandler
}

func buildAdDeps() AdModuleDeps {
	adRepo := pginfra.NewAdRepository(container.GetPGPool())
	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	commentRepo := pginfra.NewCommentRepository(container.GetPGPool())

	var indexer *application.AdIndexer
	if es := container.GetES(); es != nil {
		indexer = application.NewAdIndexer(es, container.GetConfig().ESAdsIndex, container.GetLogger())
	}

	adService := application.NewAdService(
		adRepo,
		container.GetTxManager(),
		container.GetMedia(),
		container.GetCache(),
		indexer,
		container.GetLogger(),
	)
	adReader := application.NewAdReader(adRepo, userRepo, container.GetMedia(), container.GetCache(), container.GetLogger())

	commentService := application.NewCommentService(commentRepo, adRepo, container.GetTxManager(), container.GetCache(), container.GetLogger())
	commentReader := application.NewCommentReader(commentRepo, adRepo, userRepo, container.GetCache(), container.GetLogger())

	return AdModuleDeps{
		AdService:      adService,
		AdReader:       adReader,
		CommentService: commentService,
		CommentReader:  commentReader,
		AdHandler:      handlers.NewAdHandler(adService, adReader, indexer, container.GetLogger()),
		CommentHandler: handlers.NewCommentHandler(commentService, commentReader, container.GetLogger()),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	userDeps := buildUserDeps()
	adDeps := buildAdDeps()

	jwt := container.GetJWT()

	r.Add(modules.NewAuthModule(userDeps.AuthHandler, jwt))
	r.Add(modules.NewUserModule(userDeps.UserHandler, jwt))
	r.Add(modules.NewAdModule(adDeps.AdHandler, adDeps.CommentHandler, jwt))
	r.Add(modules.NewAdminModule(handlers.NewAdminHandler(container.GetCache(), container.GetLogger()), jwt))
}
