package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"compliance-panel/internal/jurisdiction/geo"
	"compliance-panel/internal/jurisdiction/metrics"
	"compliance-panel/internal/jurisdiction/models"
	"compliance-panel/internal/jurisdiction/regulation"
	audit "compliance-panel/pkg/platform/audit"
)

//go:generate mockgen -source=resolver.go -destination=mocks/resolver-mocks.go -package=mocks DeviceLocator,NetworkLocator,AuditPublisher

const tracerName = "compliance-panel/internal/jurisdiction/service"

const (
	DefaultDeviceTimeout  = 10 * time.Second
	DefaultNetworkTimeout = 3 * time.Second
)

// DeviceLocator obtains a position fix from the visitor's device.
// Implementations wrap models.ErrPermissionDenied, models.ErrPositionTimeout
// or models.ErrPositionUnavailable on failure.
type DeviceLocator interface {
	CurrentPosition(ctx context.Context, opts models.PositionOptions) (models.Coordinate, error)
}

// NetworkLocator maps a client IP address to a country.
type NetworkLocator interface {
	CountryForIP(ctx context.Context, ip string) (models.CountryCode, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Request carries the per-visitor inputs of one resolution attempt.
// Device is nil when the visitor offered no position.
type Request struct {
	Device   DeviceLocator
	ClientIP string
}

// Resolver runs the device -> bounding box -> network chain.
type Resolver struct {
	network        NetworkLocator
	deviceTimeout  time.Duration
	networkTimeout time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(r *Resolver) {
		r.auditPublisher = publisher
	}
}

// WithDeviceTimeout bounds the wait for a device fix. Non-positive values keep the default.
func WithDeviceTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.deviceTimeout = d
		}
	}
}

// WithNetworkTimeout bounds the network lookup. Non-positive values keep the default.
func WithNetworkTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.networkTimeout = d
		}
	}
}

// New constructs a Resolver. network may be nil, in which case the chain
// ends after the device step.
func New(network NetworkLocator, opts ...Option) *Resolver {
	r := &Resolver{
		network:        network,
		deviceTimeout:  DefaultDeviceTimeout,
		networkTimeout: DefaultNetworkTimeout,
		logger:         slog.Default(),
		tracer:         otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveCountry determines the visitor's country. Steps run strictly in
// order and the first success wins. Failures never reach the caller: they
// are logged at debug level and the chain advances, ending in an unknown
// resolution. If ctx is cancelled the outcome is discarded as unknown.
func (r *Resolver) ResolveCountry(ctx context.Context, req Request) models.Resolution {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "jurisdiction.ResolveCountry")
	defer span.End()

	res := r.resolve(ctx, req)
	if ctx.Err() != nil {
		res = models.Unresolved()
	}

	span.SetAttributes(
		attribute.String("jurisdiction.source", string(res.Source)),
		attribute.String("jurisdiction.country", res.Country.String()),
	)
	r.metrics.ObserveResolution(string(res.Source), start)
	r.emitResolved(ctx, res)
	return res
}

func (r *Resolver) resolve(ctx context.Context, req Request) models.Resolution {
	if req.Device != nil {
		if country, ok := r.fromDevice(ctx, req.Device); ok {
			return models.Resolution{Country: country, Source: models.SourceDevice}
		}
	}
	if ctx.Err() != nil {
		return models.Unresolved()
	}
	if r.network != nil && req.ClientIP != "" {
		if country, ok := r.fromNetwork(ctx, req.ClientIP); ok {
			return models.Resolution{Country: country, Source: models.SourceNetwork}
		}
	}
	return models.Unresolved()
}

func (r *Resolver) fromDevice(ctx context.Context, device DeviceLocator) (models.CountryCode, bool) {
	ctx, span := r.tracer.Start(ctx, "jurisdiction.device")
	defer span.End()

	opts := models.PositionOptions{Timeout: r.deviceTimeout, EnableHighAccuracy: false}
	coord, err := within(ctx, r.deviceTimeout, models.ErrPositionTimeout, func(ctx context.Context) (models.Coordinate, error) {
		return device.CurrentPosition(ctx, opts)
	})
	if err != nil {
		r.stepFailed(ctx, span, "device", err)
		return models.Unknown, false
	}
	if !coord.Valid() {
		r.stepFailed(ctx, span, "device", models.ErrPositionUnavailable)
		return models.Unknown, false
	}

	country, ok := geo.Locate(coord)
	if !ok {
		r.metrics.IncrementStepFailure("bounding_box", "no_match")
		r.logger.DebugContext(ctx, "device position outside known regions",
			"latitude", coord.Latitude,
			"longitude", coord.Longitude,
		)
		return models.Unknown, false
	}
	return country, true
}

func (r *Resolver) fromNetwork(ctx context.Context, ip string) (models.CountryCode, bool) {
	ctx, span := r.tracer.Start(ctx, "jurisdiction.network")
	defer span.End()

	raw, err := within(ctx, r.networkTimeout, models.ErrLocatorUnavailable, func(ctx context.Context) (models.CountryCode, error) {
		return r.network.CountryForIP(ctx, ip)
	})
	if err != nil {
		r.stepFailed(ctx, span, "network", err)
		return models.Unknown, false
	}
	country := models.NormalizeCountry(string(raw))
	if country.IsUnknown() {
		r.stepFailed(ctx, span, "network", models.ErrCountryNotFound)
		return models.Unknown, false
	}
	return country, true
}

func (r *Resolver) stepFailed(ctx context.Context, span trace.Span, step string, err error) {
	reason := models.FailureReason(err)
	span.SetAttributes(attribute.String("jurisdiction.failure", reason))
	r.metrics.IncrementStepFailure(step, reason)
	r.logger.DebugContext(ctx, "jurisdiction step failed",
		"step", step,
		"reason", reason,
		"error", err,
	)
}

func (r *Resolver) emitResolved(ctx context.Context, res models.Resolution) {
	if r.auditPublisher == nil {
		return
	}
	detail := res.Country.String()
	if detail == "" {
		detail = "unknown"
	}
	// The request may already be cancelled; the audit record is still wanted.
	err := r.auditPublisher.Emit(context.WithoutCancel(ctx), audit.Event{
		Action:      audit.EventJurisdictionResolved,
		SubjectType: "jurisdiction",
		SubjectID:   string(res.Source),
		Detail:      detail,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "failed to emit jurisdiction audit event", "error", err)
	}
}

// RecommendedTemplates returns the templates required in country.
func (r *Resolver) RecommendedTemplates(country models.CountryCode) []models.TemplateID {
	return regulation.RecommendedTemplates(country)
}

// Catalog returns the template catalog annotated for country.
func (r *Resolver) Catalog(country models.CountryCode) []models.TemplateCard {
	return regulation.CatalogFor(country)
}

// within runs fn with a deadline and returns as soon as either fn finishes
// or the deadline passes. A late result is dropped into a buffered channel
// and discarded, so an fn that ignores ctx cannot hold up the caller.
// Deadline expiry is reported as timeoutErr; parent cancellation as ctx.Err().
func within[T any](ctx context.Context, timeout time.Duration, timeoutErr error, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		v, err := fn(stepCtx)
		done <- result{value: v, err: err}
	}()

	var zero T
	select {
	case res := <-done:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, errors.Join(timeoutErr, res.err)
		}
		return res.value, res.err
	case <-stepCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, timeoutErr
	}
}
