// Package logsink writes audit events to the structured log. It is the sink
// used when no Kafka brokers are configured.
package logsink

import (
	"context"
	"log/slog"

	audit "compliance-panel/pkg/platform/audit"
)

type Sink struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Sink {
	return &Sink{logger: logger.With("component", "audit")}
}

func (s *Sink) Append(ctx context.Context, e audit.Event) error {
	s.logger.InfoContext(ctx, "audit event",
		"category", string(e.Category),
		"action", string(e.Action),
		"subject_type", e.SubjectType,
		"subject_id", e.SubjectID,
		"detail", e.Detail,
		"request_id", e.RequestID,
		"timestamp", e.Timestamp,
	)
	return nil
}
