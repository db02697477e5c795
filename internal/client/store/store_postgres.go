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

	"compliance-panel/internal/client/models"
	jmodels "compliance-panel/internal/jurisdiction/models"
	id "compliance-panel/pkg/domain"
	"compliance-panel/pkg/platform/sentinel"
	"compliance-panel/pkg/platform/tx"
)

const clientColumns = `id, name, email, website, status, industry, country, company_size, plan,
	subscription_status, subscription_start, subscription_end, policies_count, widgets_count,
	created_at, updated_at, last_active`

// PostgresStore persists clients in PostgreSQL. The lower(email) unique
// index enforces email uniqueness.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type clientRow struct {
	ID                 id.ClientID  `db:"id"`
	Name               string       `db:"name"`
	Email              string       `db:"email"`
	Website            string       `db:"website"`
	Status             string       `db:"status"`
	Industry           string       `db:"industry"`
	Country            string       `db:"country"`
	CompanySize        string       `db:"company_size"`
	Plan               string       `db:"plan"`
	SubscriptionStatus string       `db:"subscription_status"`
	SubscriptionStart  sql.NullTime `db:"subscription_start"`
	SubscriptionEnd    sql.NullTime `db:"subscription_end"`
	PoliciesCount      int          `db:"policies_count"`
	WidgetsCount       int          `db:"widgets_count"`
	CreatedAt          time.Time    `db:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
	LastActive         sql.NullTime `db:"last_active"`
}

func fromNull(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func toNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r clientRow) toModel() *models.Client {
	return &models.Client{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Website:     r.Website,
		Status:      models.Status(r.Status),
		Industry:    r.Industry,
		Country:     jmodels.CountryCode(r.Country),
		CompanySize: r.CompanySize,
		Subscription: models.Subscription{
			Plan:      r.Plan,
			Status:    r.SubscriptionStatus,
			StartDate: fromNull(r.SubscriptionStart),
			EndDate:   fromNull(r.SubscriptionEnd),
		},
		Usage:      models.Usage{Policies: r.PoliciesCount, Widgets: r.WidgetsCount},
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
		LastActive: fromNull(r.LastActive),
	}
}

func toRow(c *models.Client) clientRow {
	return clientRow{
		ID:                 c.ID,
		Name:               c.Name,
		Email:              c.Email,
		Website:            c.Website,
		Status:             string(c.Status),
		Industry:           c.Industry,
		Country:            string(c.Country),
		CompanySize:        c.CompanySize,
		Plan:               c.Subscription.Plan,
		SubscriptionStatus: c.Subscription.Status,
		SubscriptionStart:  toNull(c.Subscription.StartDate),
		SubscriptionEnd:    toNull(c.Subscription.EndDate),
		PoliciesCount:      c.Usage.Policies,
		WidgetsCount:       c.Usage.Widgets,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
		LastActive:         toNull(c.LastActive),
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Client) error {
	_, err := sqlx.NamedExecContext(ctx, tx.Q(ctx, s.db), `
		INSERT INTO clients (`+clientColumns+`)
		VALUES (:id, :name, :email, :website, :status, :industry, :country, :company_size, :plan,
			:subscription_status, :subscription_start, :subscription_end, :policies_count, :widgets_count,
			:created_at, :updated_at, :last_active)`,
		toRow(c))
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	var row clientRow
	err := tx.Q(ctx, s.db).GetContext(ctx, &row, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find client by id: %w", err)
	}
	return row.toModel(), nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.Client, error) {
	var rows []clientRow
	err := tx.Q(ctx, s.db).SelectContext(ctx, &rows, `
		SELECT `+clientColumns+` FROM clients
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR lower(industry) = lower($2))
		  AND ($3 = '' OR lower(plan) = lower($3))
		  AND ($4 = '' OR name ILIKE $4 ESCAPE '\' OR email ILIKE $4 ESCAPE '\' OR website ILIKE $4 ESCAPE '\')
		ORDER BY updated_at DESC, id::text ASC`,
		string(filter.Status), filter.Industry, filter.Plan, likePattern(filter.Search))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return toModels(rows), nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*models.Client, error) {
	var rows []clientRow
	err := tx.Q(ctx, s.db).SelectContext(ctx, &rows, `
		SELECT `+clientColumns+` FROM clients
		ORDER BY created_at DESC, id::text ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent clients: %w", err)
	}
	return toModels(rows), nil
}

// Execute locks the row with FOR UPDATE for the duration of validate and mutate.
func (s *PostgresStore) Execute(ctx context.Context, clientID id.ClientID, validate func(*models.Client) error, mutate func(*models.Client)) (*models.Client, error) {
	var result *models.Client
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Q(ctx, s.db)
		var row clientRow
		if err := q.GetContext(ctx, &row, `SELECT `+clientColumns+` FROM clients WHERE id = $1 FOR UPDATE`, clientID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock client: %w", err)
		}
		c := row.toModel()
		if err := validate(c); err != nil {
			return err
		}
		mutate(c)
		if _, err := sqlx.NamedExecContext(ctx, q, `
			UPDATE clients SET
				name = :name, email = :email, website = :website, status = :status,
				industry = :industry, country = :country, company_size = :company_size,
				plan = :plan, subscription_status = :subscription_status,
				subscription_start = :subscription_start, subscription_end = :subscription_end,
				policies_count = :policies_count, widgets_count = :widgets_count,
				updated_at = :updated_at, last_active = :last_active
			WHERE id = :id`, toRow(c)); err != nil {
			if isUniqueViolation(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("update client: %w", err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, clientID id.ClientID) error {
	res, err := tx.Q(ctx, s.db).ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, clientID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
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
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'inactive') AS inactive
		FROM clients`)
	if err != nil {
		return models.Stats{}, fmt.Errorf("client stats: %w", err)
	}
	return stats, nil
}

func toModels(rows []clientRow) []*models.Client {
	out := make([]*models.Client, 0, len(rows))
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
