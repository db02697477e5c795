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

	jmodels "compliance-panel/internal/jurisdiction/models"
	"compliance-panel/internal/policy/models"
	id "compliance-panel/pkg/domain"
	"compliance-panel/pkg/platform/sentinel"
	"compliance-panel/pkg/platform/tx"
)

const policyColumns = `id, name, description, type, content, status, version, regions, created_at, updated_at, published_at`

// PostgresStore persists policies in PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type policyRow struct {
	ID          id.PolicyID    `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Type        string         `db:"type"`
	Content     string         `db:"content"`
	Status      string         `db:"status"`
	Version     int            `db:"version"`
	Regions     pq.StringArray `db:"regions"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	PublishedAt sql.NullTime   `db:"published_at"`
}

func (r policyRow) toModel() *models.Policy {
	p := &models.Policy{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Type:        jmodels.TemplateID(r.Type),
		Content:     r.Content,
		Status:      models.Status(r.Status),
		Version:     r.Version,
		Regions:     []string(r.Regions),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if p.Regions == nil {
		p.Regions = []string{}
	}
	if r.PublishedAt.Valid {
		t := r.PublishedAt.Time.UTC()
		p.PublishedAt = &t
	}
	return p
}

func toRow(p *models.Policy) policyRow {
	row := policyRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Type:        string(p.Type),
		Content:     p.Content,
		Status:      string(p.Status),
		Version:     p.Version,
		Regions:     pq.StringArray(p.Regions),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if row.Regions == nil {
		row.Regions = pq.StringArray{}
	}
	if p.PublishedAt != nil {
		row.PublishedAt = sql.NullTime{Time: *p.PublishedAt, Valid: true}
	}
	return row
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Policy) error {
	_, err := sqlx.NamedExecContext(ctx, tx.Q(ctx, s.db), `
		INSERT INTO policies (`+policyColumns+`)
		VALUES (:id, :name, :description, :type, :content, :status, :version, :regions, :created_at, :updated_at, :published_at)`,
		toRow(p))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, policyID id.PolicyID) (*models.Policy, error) {
	var row policyRow
	err := tx.Q(ctx, s.db).GetContext(ctx, &row, `SELECT `+policyColumns+` FROM policies WHERE id = $1`, policyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find policy by id: %w", err)
	}
	return row.toModel(), nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.Policy, error) {
	var rows []policyRow
	err := tx.Q(ctx, s.db).SelectContext(ctx, &rows, `
		SELECT `+policyColumns+` FROM policies
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR type = $2)
		  AND ($3 = '' OR name ILIKE $3 ESCAPE '\' OR description ILIKE $3 ESCAPE '\')
		ORDER BY updated_at DESC, id::text ASC`,
		string(filter.Status), string(filter.Type), likePattern(filter.Search))
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return toModels(rows), nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*models.Policy, error) {
	var rows []policyRow
	err := tx.Q(ctx, s.db).SelectContext(ctx, &rows, `
		SELECT `+policyColumns+` FROM policies
		ORDER BY updated_at DESC, id::text ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent policies: %w", err)
	}
	return toModels(rows), nil
}

// Execute locks the row with FOR UPDATE for the duration of validate and mutate.
func (s *PostgresStore) Execute(ctx context.Context, policyID id.PolicyID, validate func(*models.Policy) error, mutate func(*models.Policy)) (*models.Policy, error) {
	var result *models.Policy
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Q(ctx, s.db)
		var row policyRow
		if err := q.GetContext(ctx, &row, `SELECT `+policyColumns+` FROM policies WHERE id = $1 FOR UPDATE`, policyID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock policy: %w", err)
		}
		p := row.toModel()
		if err := validate(p); err != nil {
			return err
		}
		mutate(p)
		if _, err := sqlx.NamedExecContext(ctx, q, `
			UPDATE policies SET
				name = :name, description = :description, type = :type, content = :content,
				status = :status, version = :version, regions = :regions,
				updated_at = :updated_at, published_at = :published_at
			WHERE id = :id`, toRow(p)); err != nil {
			return fmt.Errorf("update policy: %w", err)
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, policyID id.PolicyID) error {
	res, err := tx.Q(ctx, s.db).ExecContext(ctx, `DELETE FROM policies WHERE id = $1`, policyID)
	if err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	err := tx.Q(ctx, s.db).GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'draft') AS draft,
			COUNT(*) FILTER (WHERE status = 'archived') AS archived
		FROM policies`)
	if err != nil {
		return models.Stats{}, fmt.Errorf("policy stats: %w", err)
	}
	return stats, nil
}

func toModels(rows []policyRow) []*models.Policy {
	out := make([]*models.Policy, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}

// likePattern wraps search in wildcards, escaping LIKE metacharacters.
func likePattern(search string) string {
	if search == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}
