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
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrCustomerEmailTaken = errors.New("customer email already taken")
	ErrCustomerInUse      = errors.New("customer is referenced")
)

const customerSelect = `
	SELECT cu.id, cu.name, cu.email, cu.phone, cu.region, cu.is_active, cu.created_at, cu.updated_at,
		(SELECT COUNT(*) FROM catalogs ca WHERE ca.customer_id = cu.id) AS catalog_count,
		(SELECT COUNT(*) FROM inquiries i WHERE i.customer_id = cu.id) AS inquiry_count
	FROM customers cu`

// CustomerRepository отвечает за таблицу customers.
type CustomerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (name, email, phone, region, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, c.Name, c.Email, c.Phone, c.Region, c.Active).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(common.TranslatePQ(err), common.ErrAlreadyExists) {
			return ErrCustomerEmailTaken
		}
		return fmt.Errorf("customer repository: create %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	c, err := common.GetByField[models.Customer](ctx, r.db, customerSelect, "cu.id", id, ErrCustomerNotFound)
	if err != nil && !errors.Is(err, ErrCustomerNotFound) {
		return nil, fmt.Errorf("customer repository: %w", err)
	}
	return c, err
}

func customerWhere(f models.CustomerFilter) *common.Where {
	w := &common.Where{}
	if f.Active != nil {
		w.Add("cu.is_active = ?", *f.Active)
	}
	if f.Query != "" {
		w.Add("(cu.name ILIKE ? OR cu.email ILIKE ?)", "%"+f.Query+"%")
	}
	return w
}

func (r *CustomerRepository) List(ctx context.Context, f models.CustomerFilter) ([]models.Customer, error) {
	w := customerWhere(f)
	query := fmt.Sprintf("%s%s ORDER BY cu.created_at DESC, cu.id LIMIT $%d OFFSET $%d",
		customerSelect, w.SQL(), w.Next(), w.Next()+1)
	args := append(w.Args(), f.Limit, f.Offset)

	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, fmt.Errorf("customer repository: list %w", err)
	}
	return customers, nil
}

func (r *CustomerRepository) Count(ctx context.Context, f models.CustomerFilter) (int, error) {
	w := customerWhere(f)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM customers cu`+w.SQL(), w.Args()...); err != nil {
		return 0, fmt.Errorf("customer repository: count %w", err)
	}
	return total, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, email = $3, phone = $4, region = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.Region, c.Active).
		Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCustomerNotFound
		}
		if errors.Is(common.TranslatePQ(err), common.ErrAlreadyExists) {
			return ErrCustomerEmailTaken
		}
		return fmt.Errorf("customer repository: update %w", err)
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(common.TranslatePQ(err), common.ErrReferenced) {
			return ErrCustomerInUse
		}
		return fmt.Errorf("customer repository: delete %w", err)
	}
	return common.CheckAffected(res, ErrCustomerNotFound)
}
