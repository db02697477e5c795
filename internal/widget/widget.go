// Package widget manages embeddable consent widgets: the admin lifecycle and
// the token-guarded endpoints customer sites load them from.
package widget

import (
	"log/slog"

	"github.com/jmoiron/sqlx"

	"compliance-panel/internal/platform/config"
	"compliance-panel/internal/widget/embed"
	"compliance-panel/internal/widget/handler"
	"compliance-panel/internal/widget/service"
	"compliance-panel/internal/widget/store"
)

type Service = service.Service

// NewStore returns a Postgres store when db is set and an in-memory store otherwise.
func NewStore(db *sqlx.DB) service.Store {
	if db == nil {
		return store.NewInMemory()
	}
	return store.NewPostgres(db)
}

// NewService wires a Service with an embed signer built from cfg.
func NewService(st service.Store, cfg config.WidgetConfig, opts ...service.Option) *Service {
	return service.New(st, embed.NewSigner(cfg.SigningKey, cfg.TokenTTL), opts...)
}

func NewHandler(svc *Service, logger *slog.Logger) *handler.Handler {
	return handler.New(svc, logger)
}

func NewEmbedHandler(svc *Service, logger *slog.Logger) *handler.EmbedHandler {
	return handler.NewEmbed(svc, logger)
}
