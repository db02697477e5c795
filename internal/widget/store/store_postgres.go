package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"compliance-panel/internal/widget/models"
	id "compliance-panel/pkg/domain"
	"compliance-panel/pkg/platform/sentinel"
	"compliance-panel/pkg/platform/tx"
)

const widgetColumns = `id, name, type, status, description, platform, impressions, config, created_at, updated_at, deployed_at`

// PostgresStore persists widgets in PostgreSQL. Config is a JSONB column and
// per-device impression counts live in widget_impressions.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type widgetRow struct {
	ID          id.WidgetID   `db:"id"`
	Name        string        `db:"name"`
	Type        string        `db:"type"`
	Status      string        `db:"status"`
	Description string        `db:"description"`
	Platform    string        `db:"platform"`
	Impressions int64         `db:"impressions"`
	Config      models.Config `db:"config"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
	DeployedAt  sql.NullTime  `db:"deployed_at"`
}

func (r widgetRow) toModel() *models.Widget {
	w := &models.Widget{
		ID:          r.ID,
		Name:        r.Name,
		Type:        models.Type(r.Type),
		Status:      models.Status(r.Status),
		Description: r.Description,
		Platform:    r.Platform,
		Impressions: r.Impressions,
		Config:      r.Config,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DeployedAt.Valid {
		t := r.DeployedAt.Time.UTC()
		w.DeployedAt = &t
	}
	return w
}

func toRow(w *models.Widget) widgetRow {
	row := widgetRow{
		ID:          w.ID,
		Name:        w.Name,
		Type:        string(w.Type),
		Status:      string(w.Status),
		Description: w.Description,
		Platform:    w.Platform,
		Impressions: w.Impressions,
		Config:      w.Config,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	if w.DeployedAt != nil {
		row.DeployedAt = sql.NullTime{Time: *w.DeployedAt, Valid: true}
	}
	return row
}

func (s *PostgresStore) Create(ctx context.Context, w *models.Widget) error {
	_, err := sqlx.NamedExecContext(ctx, tx.Q(ctx, s.db), `
		INSERT INTO widgets (`+widgetColumns+`)
		VALUES (:id, :name, :type, :status, :description, :platform, :impressions, :config, :created_at, :updated_at, :deployed_at)`,
		toRow(w))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert widget: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, widgetID id.WidgetID) (*models.Widget, error) {
	var row widgetRow
	err := tx.Q(ctx, s.db).GetContext(ctx, &row, `SELECT `+widgetColumns+` FROM widgets WHERE id = $1`, widgetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find widget by id: %w", err)
	}
	return row.toModel(), nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.Widget, error) {
	var rows []widgetRow
	err := tx.Q(ctx, s.db).SelectContext(ctx, &rows, `
		SELECT `+widgetColumns+` FROM widgets
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR type = $2)
		  AND ($3 = '' OR name ILIKE $3 ESCAPE '\' OR description ILIKE $3 ESCAPE '\')
		ORDER BY updated_at DESC, id::text ASC`,
		string(filter.Status), string(filter.Type), likePattern(filter.Search))
	if err != nil {
		return nil, fmt.Errorf("list widgets: %w", err)
	}
	return toModels(rows), nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*models.Widget, error) {
	var rows []widgetRow
	err := tx.Q(ctx, s.db).SelectContext(ctx, &rows, `
		SELECT `+widgetColumns+` FROM widgets
		ORDER BY updated_at DESC, id::text ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent widgets: %w", err)
	}
	return toModels(rows), nil
}

func (s *PostgresStore) Execute(ctx context.Context, widgetID id.WidgetID, validate func(*models.Widget) error, mutate func(*models.Widget)) (*models.Widget, error) {
	var result *models.Widget
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Q(ctx, s.db)
		var row widgetRow
		if err := q.GetContext(ctx, &row, `SELECT `+widgetColumns+` FROM widgets WHERE id = $1 FOR UPDATE`, widgetID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock widget: %w", err)
		}
		w := row.toModel()
		if err := validate(w); err != nil {
			return err
		}
		mutate(w)
		if _, err := sqlx.NamedExecContext(ctx, q, `
			UPDATE widgets SET
				name = :name, type = :type, status = :status, description = :description,
				platform = :platform, config = :config,
				updated_at = :updated_at, deployed_at = :deployed_at
			WHERE id = :id`, toRow(w)); err != nil {
			return fmt.Errorf("update widget: %w", err)
		}
		result = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, widgetID id.WidgetID) error {
	res, err := tx.Q(ctx, s.db).ExecContext(ctx, `DELETE FROM widgets WHERE id = $1`, widgetID)
	if err != nil {
		return fmt.Errorf("delete widget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete widget: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// RecordImpression bumps the total and the device bucket in one transaction.
// Only active widgets count; anything else is sentinel.ErrNotFound.
func (s *PostgresStore) RecordImpression(ctx context.Context, widgetID id.WidgetID, class models.DeviceClass) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Q(ctx, s.db)
		res, err := q.ExecContext(ctx,
			`UPDATE widgets SET impressions = impressions + 1 WHERE id = $1 AND status = 'active'`, widgetID)
		if err != nil {
			return fmt.Errorf("increment impressions: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("increment impressions: %w", err)
		}
		if n == 0 {
			return sentinel.ErrNotFound
		}
		if _, err := q.ExecContext(ctx, `
			INSERT INTO widget_impressions (widget_id, device_class, count)
			VALUES ($1, $2, 1)
			ON CONFLICT (widget_id, device_class) DO UPDATE SET count = widget_impressions.count + 1`,
			widgetID, string(class)); err != nil {
			return fmt.Errorf("record device impression: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Impressions(ctx context.Context, widgetID id.WidgetID) (models.ImpressionBreakdown, error) {
	if _, err := s.FindByID(ctx, widgetID); err != nil {
		return nil, err
	}
	var rows []struct {
		DeviceClass string `db:"device_class"`
		Count       int64  `db:"count"`
	}
	err := tx.Q(ctx, s.db).SelectContext(ctx, &rows,
		`SELECT device_class, count FROM widget_impressions WHERE widget_id = $1`, widgetID)
	if err != nil {
		return nil, fmt.Errorf("widget impressions: %w", err)
	}
	out := make(models.ImpressionBreakdown, len(rows))
	for _, r := range rows {
		out[models.DeviceClass(r.DeviceClass)] = r.Count
	}
	return out, nil
}

func (s *PostgresStore) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	err := tx.Q(ctx, s.db).GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'draft') AS draft,
			COUNT(*) FILTER (WHERE status = 'inactive') AS inactive,
			COALESCE(SUM(impressions), 0) AS impressions
		FROM widgets`)
	if err != nil {
		return models.Stats{}, fmt.Errorf("widget stats: %w", err)
	}
	return stats, nil
}

func toModels(rows []widgetRow) []*models.Widget {
	out := make([]*models.Widget, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}

func likePattern(search string) string {
	if search == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}
