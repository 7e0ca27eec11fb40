package routes

import (
	"persona-match/internal/config"
	"persona-match/internal/database"
	"persona-match/internal/delivery/http/handler"
	"persona-match/internal/infrastructure/cache"
	"persona-match/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type Deps struct {
	Config config.Config
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub
	Logger *zap.Logger
}

type Registry struct {
	deps Deps
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	handler.NewHealthHandler(r.deps.DB).RegisterRoutes(app)

	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.deps)
}
