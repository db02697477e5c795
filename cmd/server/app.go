package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"compliance-panel/internal/client"
	clientmetrics "compliance-panel/internal/client/metrics"
	clientservice "compliance-panel/internal/client/service"
	"compliance-panel/internal/dashboard"
	"compliance-panel/internal/jurisdiction"
	jurisdictionmetrics "compliance-panel/internal/jurisdiction/metrics"
	jurisdictionservice "compliance-panel/internal/jurisdiction/service"
	"compliance-panel/internal/platform/config"
	platformmetrics "compliance-panel/internal/platform/metrics"
	"compliance-panel/internal/platform/postgres"
	platformredis "compliance-panel/internal/platform/redis"
	"compliance-panel/internal/policy"
	policymetrics "compliance-panel/internal/policy/metrics"
	policyservice "compliance-panel/internal/policy/service"
	ratelimitmetrics "compliance-panel/internal/ratelimit/metrics"
	rlmiddleware "compliance-panel/internal/ratelimit/middleware"
	ratelimitmodels "compliance-panel/internal/ratelimit/models"
	"compliance-panel/internal/ratelimit/store/bucket"
	"compliance-panel/internal/widget"
	widgetmetrics "compliance-panel/internal/widget/metrics"
	widgetservice "compliance-panel/internal/widget/service"
	audit "compliance-panel/pkg/platform/audit"
	auditkafka "compliance-panel/pkg/platform/audit/kafka"
	"compliance-panel/pkg/platform/audit/publisher"
	"compliance-panel/pkg/platform/audit/store/logsink"
)

const (
	auditBufferSize = 1024
	// Customer sites call the embed endpoints on every page view.
	embedLimitMultiplier = 10
)

// app holds the wired services and the resources that must be released on shutdown.
type app struct {
	db          *sqlx.DB
	redis       *platformredis.Client
	httpMetrics *platformmetrics.Metrics

	policies     *policy.Service
	widgets      *widget.Service
	clients      *client.Service
	dashboard    *dashboard.Service
	resolver     *jurisdiction.Resolver
	rateLimiter  *rlmiddleware.Middleware
	healthChecks map[string]func(context.Context) error

	closers []func()
}

func newApp(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	return buildApp(ctx, cfg, log, prometheus.DefaultRegisterer)
}

// buildApp wires every module. Optional infrastructure (Postgres, Redis,
// Kafka, GeoIP) is used only when configured; the fallbacks keep a bare
// development setup fully functional.
func buildApp(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer) (_ *app, err error) {
	a := &app{healthChecks: map[string]func(context.Context) error{}}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := postgres.Migrate(db, log); err != nil {
			return nil, err
		}
		a.db = db
		a.healthChecks["postgres"] = db.PingContext
		log.Info("using postgres stores")
	} else {
		log.Warn("DATABASE_URL not set; using in-memory stores")
	}

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		a.redis = rdb
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		a.healthChecks["redis"] = rdb.Health
	}

	sink, closeSink, err := auditSink(ctx, cfg.Kafka, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeSink)
	if pinger, ok := sink.(interface{ Ping(context.Context) error }); ok {
		a.healthChecks["kafka"] = pinger.Ping
	}
	pub := publisher.NewPublisher(sink, publisher.WithAsyncBuffer(auditBufferSize), publisher.WithLogger(log))
	// Closed before the sink so the buffer drains into an open producer.
	a.closers = append(a.closers, pub.Close)

	network, closeNetwork, err := jurisdiction.NetworkLocator(cfg.Geo, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = closeNetwork() })

	a.httpMetrics = platformmetrics.NewWith(reg)
	a.resolver = jurisdiction.NewResolver(network,
		jurisdictionservice.WithLogger(log),
		jurisdictionservice.WithMetrics(jurisdictionmetrics.NewWith(reg)),
		jurisdictionservice.WithAuditPublisher(pub),
		jurisdictionservice.WithDeviceTimeout(cfg.Geo.DeviceTimeout),
		jurisdictionservice.WithNetworkTimeout(cfg.Geo.NetworkTimeout),
	)
	a.policies = policy.NewService(policy.NewStore(a.db),
		policyservice.WithLogger(log),
		policyservice.WithMetrics(policymetrics.NewWith(reg)),
		policyservice.WithAuditPublisher(pub),
	)
	a.widgets = widget.NewService(widget.NewStore(a.db), cfg.Widget,
		widgetservice.WithLogger(log),
		widgetservice.WithMetrics(widgetmetrics.NewWith(reg)),
		widgetservice.WithAuditPublisher(pub),
	)
	a.clients = client.NewService(client.NewStore(a.db),
		clientservice.WithLogger(log),
		clientservice.WithMetrics(clientmetrics.NewWith(reg)),
		clientservice.WithAuditPublisher(pub),
	)
	a.dashboard = dashboard.NewService(a.policies, a.widgets, a.clients, log)
	a.rateLimiter = newRateLimiter(cfg.RateLimit, a.redis, log, ratelimitmetrics.NewWith(reg))
	return a, nil
}

// auditSink returns a Kafka sink when brokers are configured and a log sink otherwise.
func auditSink(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Brokers) == 0 {
		log.Info("KAFKA_BROKERS not set; audit events go to the log")
		return logsink.New(log), func() {}, nil
	}
	sink, err := auditkafka.NewSink(auditkafka.Config{Brokers: cfg.Brokers, Topic: cfg.Topic}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("audit sink: %w", err)
	}
	topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sink.EnsureTopic(topicCtx, 3, 1); err != nil {
		log.Warn("could not ensure audit topic", "topic", cfg.Topic, "error", err)
	}
	closeSink := func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sink.Close(flushCtx)
	}
	return sink, closeSink, nil
}

func newRateLimiter(cfg config.RateLimitConfig, rdb *platformredis.Client, log *slog.Logger, m *ratelimitmetrics.Metrics) *rlmiddleware.Middleware {
	limits := map[ratelimitmodels.EndpointClass]ratelimitmodels.Limit{
		ratelimitmodels.ClassResolve: {RequestsPerWindow: cfg.RequestsPerMinute, Window: time.Minute},
		ratelimitmodels.ClassEmbed:   {RequestsPerWindow: cfg.RequestsPerMinute * embedLimitMultiplier, Window: time.Minute},
	}
	var primary bucket.Store
	if rdb != nil {
		primary = bucket.NewRedisBucketStore(rdb.Client)
	}
	limiter := rlmiddleware.NewLimiter(primary, limits,
		rlmiddleware.WithLogger(log),
		rlmiddleware.WithMetrics(m),
	)
	return rlmiddleware.New(limiter, log,
		rlmiddleware.WithDisabled(cfg.Disabled),
		rlmiddleware.WithMiddlewareMetrics(m),
	)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
