// Package policy manages versioned compliance documents built from the
// jurisdiction template catalog.
package policy

import (
	"log/slog"

	"github.com/jmoiron/sqlx"

	"compliance-panel/internal/policy/handler"
	"compliance-panel/internal/policy/service"
	"compliance-panel/internal/policy/store"
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
