// Package dashboard serves the summary views of the panel home page.
package dashboard

import (
	"log/slog"

	"compliance-panel/internal/dashboard/handler"
	"compliance-panel/internal/dashboard/service"
)

type Service = service.Service

type Handler = handler.Handler

func NewService(policies service.PolicySource, widgets service.WidgetSource, clients service.ClientSource, logger *slog.Logger) *Service {
	return service.New(policies, widgets, clients, logger)
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return handler.New(svc, logger)
}
