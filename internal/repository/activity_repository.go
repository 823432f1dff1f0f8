package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
)

// ActivityRepository хранит ленту активности и считает статистику дашборда.
type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	query := `
		INSERT INTO activities (type, action, entity_id, message, actor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, a.Type, a.Action, a.EntityID, a.Message, a.ActorID).
		Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("activity repository: create %w", err)
	}
	return nil
}

// ListRecent возвращает последние записи ленты.
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	var items []models.Activity
	query := `
		SELECT id, type, action, entity_id, message, actor_id, created_at
		FROM activities
		ORDER BY created_at DESC, id
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, fmt.Errorf("activity repository: list recent %w", err)
	}
	return items, nil
}

// Stats считает все счётчики дашборда одним запросом.
func (r *ActivityRepository) Stats(ctx context.Context) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM customers) AS total_customers,
			(SELECT COUNT(*) FROM customers WHERE is_active) AS active_customers,
			(SELECT COUNT(*) FROM products) AS total_products,
			(SELECT COUNT(*) FROM products WHERE is_active) AS active_products,
			(SELECT COUNT(*) FROM categories) AS total_categories,
			(SELECT COUNT(*) FROM categories WHERE parent_id IS NULL) AS root_categories,
			(SELECT COUNT(*) FROM categories WHERE is_active) AS active_categories,
			(SELECT COUNT(*) FROM catalogs) AS total_catalogs,
			(SELECT COUNT(*) FROM catalogs WHERE is_active) AS live_catalogs,
			(SELECT COUNT(*) FROM inquiries) AS total_inquiries,
			(SELECT COUNT(*) FROM inquiries WHERE status = 'pending') AS pending_inquiries,
			(SELECT COUNT(*) FROM inquiries WHERE status = 'responded') AS responded_inquiries,
			(SELECT COUNT(*) FROM inquiries WHERE status = 'closed') AS closed_inquiries
	`
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("activity repository: stats %w", err)
	}
	return &stats, nil
}
