package routes

import (
	"persona-match/internal/delivery/http/handler"
	"persona-match/internal/delivery/http/middleware"
	"persona-match/internal/pkg/jwt"
	"persona-match/internal/repository"
	"persona-match/internal/usecase"
	"persona-match/internal/ws"

	"github.com/gofiber/fiber/v3"
)

func RegisterV1(r fiber.Router, deps Deps) {
	if r == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(
		deps.Config.Auth.AccessSecret,
		deps.Config.Auth.RefreshSecret,
		deps.Config.Auth.AccessExpiresIn,
		deps.Config.Auth.RefreshExpiresIn,
	)
	authMw := middleware.NewAuthMiddleware(jwtSvc)

	userRepo := repository.NewPostgresUserRepository(deps.DB)
	profileRepo := repository.NewPostgresProfileRepository(deps.DB)
	matchRepo := repository.NewPostgresMatchRepository(deps.DB)

	notifier := ws.Notifier{}

	authUC := usecase.NewAuthUsecase(userRepo, jwtSvc)
	jobUC := usecase.NewMatchJob(profileRepo, matchRepo, deps.Config.Matching, deps.Cache, notifier, deps.Logger)
	listUC := usecase.NewMatchListUsecase(matchRepo, profileRepo, deps.Cache, deps.Logger)
	statusUC := usecase.NewMatchStatusUsecase(matchRepo, deps.Cache, notifier)

	authGroup := r.Group("/auth")
	handler.NewAuthHandler(authUC).RegisterRoutes(authGroup)

	protected := r.Group("", authMw.Middleware())
	handler.NewMatchHandler(listUC, statusUC).RegisterRoutes(protected)
	handler.NewMatchJobHandler(jobUC).RegisterRoutes(protected)

	if deps.Hub != nil {
		wsHandler := ws.NewHandler(deps.Hub, jwtSvc, deps.Logger)
		r.Get("/ws", wsHandler.HandleMatchesWS)
	}
}
