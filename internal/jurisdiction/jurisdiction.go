// Package jurisdiction resolves which country's privacy law applies to a
// visitor and recommends the policy templates that law requires.
package jurisdiction

import (
	"fmt"
	"log/slog"

	"compliance-panel/internal/jurisdiction/adapters/ipapi"
	"compliance-panel/internal/jurisdiction/adapters/maxmind"
	"compliance-panel/internal/jurisdiction/handler"
	"compliance-panel/internal/jurisdiction/service"
	"compliance-panel/internal/platform/config"
)

// Resolver runs the device, bounding box and network resolution chain.
type Resolver = service.Resolver

// Handler wires the public jurisdiction endpoints to a Resolver.
type Handler = handler.Handler

// NewResolver constructs a Resolver. network may be nil.
func NewResolver(network service.NetworkLocator, opts ...service.Option) *Resolver {
	return service.New(network, opts...)
}

// NewHandler constructs the HTTP handler for /public/jurisdiction routes.
func NewHandler(r *Resolver, logger *slog.Logger) *Handler {
	return handler.New(r, logger)
}

// NetworkLocator picks the network step from configuration: a local MaxMind
// database when a path is set, otherwise the HTTP API, otherwise none.
// The returned close func is never nil.
func NetworkLocator(cfg config.GeoConfig, logger *slog.Logger) (service.NetworkLocator, func() error, error) {
	noop := func() error { return nil }
	switch {
	case cfg.DBPath != "":
		locator, err := maxmind.Open(cfg.DBPath)
		if err != nil {
			return nil, noop, fmt.Errorf("open geoip database: %w", err)
		}
		logger.Info("network geolocation via maxmind database", "path", cfg.DBPath)
		return locator, locator.Close, nil
	case cfg.APIURL != "":
		client, err := ipapi.New(cfg.APIURL, ipapi.WithLogger(logger))
		if err != nil {
			return nil, noop, err
		}
		logger.Info("network geolocation via http api")
		return client, noop, nil
	default:
		logger.Warn("no network geolocation configured; visitors without a device fix resolve to unknown")
		return nil, noop, nil
	}
}
