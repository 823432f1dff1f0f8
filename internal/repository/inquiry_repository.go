package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/repository/common"
)

var (
	ErrInquiryNotFound = errors.New("inquiry not found")
	ErrInquiryRef      = errors.New("inquiry references missing customer or catalog")
)

const inquirySelect = `
	SELECT i.id, i.customer_id, cu.name AS customer_name, cu.email AS customer_email,
		i.catalog_id, ca.name AS catalog_name, i.product_name, i.message, i.priority, i.status,
		i.created_at, i.updated_at
	FROM inquiries i
	JOIN customers cu ON cu.id = i.customer_id
	LEFT JOIN catalogs ca ON ca.id = i.catalog_id`

// InquiryRepository отвечает за таблицу inquiries.
type InquiryRepository struct {
	db *sqlx.DB
}

func NewInquiryRepository(db *sqlx.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

func (r *InquiryRepository) Create(ctx context.Context, in *models.Inquiry) error {
	query := `
		INSERT INTO inquiries (customer_id, catalog_id, product_name, message, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		in.CustomerID, in.CatalogID, in.ProductName, in.Message, in.Priority, in.Status,
	).Scan(&in.ID, &in.CreatedAt, &in.UpdatedAt); err != nil {
		if errors.Is(common.TranslatePQ(err), common.ErrBrokenRef) {
			return ErrInquiryRef
		}
		return fmt.Errorf("inquiry repository: create %w", err)
	}
	return nil
}

func (r *InquiryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	in, err := common.GetByField[models.Inquiry](ctx, r.db, inquirySelect, "i.id", id, ErrInquiryNotFound)
	if err != nil && !errors.Is(err, ErrInquiryNotFound) {
		return nil, fmt.Errorf("inquiry repository: %w", err)
	}
	return in, err
}

func inquiryWhere(f models.InquiryFilter) *common.Where {
	w := &common.Where{}
	if f.Status != "" {
		w.Add("i.status = ?", f.Status)
	}
	if f.Priority != "" {
		w.Add("i.priority = ?", f.Priority)
	}
	if f.CustomerID != nil {
		w.Add("i.customer_id = ?", *f.CustomerID)
	}
	return w
}

func (r *InquiryRepository) List(ctx context.Context, f models.InquiryFilter) ([]models.Inquiry, error) {
	w := inquiryWhere(f)
	query := fmt.Sprintf("%s%s ORDER BY i.created_at DESC, i.id LIMIT $%d OFFSET $%d",
		inquirySelect, w.SQL(), w.Next(), w.Next()+1)
	args := append(w.Args(), f.Limit, f.Offset)

	var inquiries []models.Inquiry
	if err := r.db.SelectContext(ctx, &inquiries, query, args...); err != nil {
		return nil, fmt.Errorf("inquiry repository: list %w", err)
	}
	return inquiries, nil
}

func (r *InquiryRepository) Count(ctx context.Context, f models.InquiryFilter) (int, error) {
	w := inquiryWhere(f)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM inquiries i`+w.SQL(), w.Args()...); err != nil {
		return 0, fmt.Errorf("inquiry repository: count %w", err)
	}
	return total, nil
}

func (r *InquiryRepository) Update(ctx context.Context, in *models.Inquiry) error {
	query := `
		UPDATE inquiries
		SET catalog_id = $2, product_name = $3, message = $4, priority = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		in.ID, in.CatalogID, in.ProductName, in.Message, in.Priority, in.Status,
	).Scan(&in.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInquiryNotFound
		}
		if errors.Is(common.TranslatePQ(err), common.ErrBrokenRef) {
			return ErrInquiryRef
		}
		return fmt.Errorf("inquiry repository: update %w", err)
	}
	return nil
}

func (r *InquiryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inquiries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("inquiry repository: delete %w", err)
	}
	return common.CheckAffected(res, ErrInquiryNotFound)
}
