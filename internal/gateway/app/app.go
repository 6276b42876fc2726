package app

import (
	"context"
	"fmt"

	"idea2app/internal/gateway/config"
	"idea2app/internal/gateway/handler"
	"idea2app/internal/gateway/server"
)

type App struct {
	server   *server.Server
	services *Services
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	services, err := NewServices(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	deps := handler.Deps{
		Projects:  services.Stores.Projects,
		Artifacts: services.Stores.Artifacts,
		Credits:   services.Stores.Credits,
		Generator: services.Orchestrator,
		Chat:      services.Chat,
		Catalog:   services.Catalog,
	}
	if services.Stores.Archived {
		deps.Restorer = services.Stores.Artifacts
	}

	mux := server.NewMux(handler.New(deps), cfg.AllowedOrigins...)
	srv := server.New(cfg.Port, mux)

	return &App{
		server:   srv,
		services: services,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.services.Close(); err == nil {
		err = cerr
	}
	return err
}
