package handlers

import (
	"ApiMonitor/internal/dependencies"
	"ApiMonitor/internal/monitor/services"
	"log/slog"
)

type Handlers struct {
	engine *services.Engine
	logger *slog.Logger
}

func NewHandlers(container *dependencies.Container) *Handlers {
	logger := container.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handlers{
		engine: container.Engine,
		logger: logger.With("component", "api"),
	}
}
