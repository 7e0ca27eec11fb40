package app

import (
	"fmt"
	"strings"

	"persona-match/internal/config"
	"persona-match/internal/delivery/http/middleware"
	"persona-match/internal/delivery/http/routes"
	"persona-match/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
	Hub   *ws.Hub
}

func Bootstrap(cfg config.Config, c *Container) (*App, error) {
	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	errMw := middleware.NewErrorMiddleware(c.Logger)
	accessMw := middleware.NewAccessLogMiddleware(c.Logger)
	f.Use(errMw.Middleware())
	f.Use(accessMw.Middleware())

	hub := ws.NewHub(c.Logger)
	ws.SetDefaultHub(hub)
	go hub.Run()

	registry := routes.NewRegistry(routes.Deps{
		Config: cfg,
		DB:     c.DB,
		Cache:  c.Cache,
		Hub:    hub,
		Logger: c.Logger,
	})
	registry.Register(f)

	return &App{Fiber: f, Hub: hub}, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
