// Package client manages the organizations the panel serves.
package client

import (
	"log/slog"

	"github.com/jmoiron/sqlx"

	"compliance-panel/internal/client/handler"
	"compliance-panel/internal/client/service"
	"compliance-panel/internal/client/store"
)

type Service = service.Service

type Handler = handler.Handler

// NewStore returns a Postgres store when db is set and an in-memory store otherwise.
func NewStore(db *sqlx.DB) service.Store {
	if db == nil {
		return store.NewInMemory()
	}
	return store.NewPostgres(db)
}

func NewService(st service.Store, opts ...service.Option) *Service {
	return service.New(st, opts...)
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return handler.New(svc, logger)
}
