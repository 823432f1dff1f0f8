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
	// ErrCategoryNotFound возвращается, когда категория не найдена.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryParentMissing возвращается, когда parent_id ссылается на несуществующую категорию.
	ErrCategoryParentMissing = errors.New("category parent does not exist")
	// ErrCategoryInUse возвращается при удалении категории, на которую есть ссылки.
	ErrCategoryInUse = errors.New("category is referenced")
)

const categorySelect = `
	SELECT c.id, c.name, c.description, c.parent_id, c.is_active, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM categories s WHERE s.parent_id = c.id) AS subcategory_count,
		(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id) AS product_count
	FROM categories c`

// CategoryRepository отвечает за таблицу categories.
type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create сохраняет категорию. Уровень не хранится.
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (name, description, parent_id, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, c.Name, c.Description, c.ParentID, c.Active).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(common.TranslatePQ(err), common.ErrBrokenRef) {
			return ErrCategoryParentMissing
		}
		return fmt.Errorf("category repository: create %w", err)
	}
	return nil
}

// GetByID возвращает категорию с количеством подкатегорий и товаров.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := common.GetByField[models.Category](ctx, r.db, categorySelect, "c.id", id, ErrCategoryNotFound)
	if err != nil && !errors.Is(err, ErrCategoryNotFound) {
		return nil, fmt.Errorf("category repository: %w", err)
	}
	return c, err
}

// List возвращает все категории с производными счётчиками в порядке создания.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.db.SelectContext(ctx, &cats, categorySelect+` ORDER BY c.created_at, c.id`); err != nil {
		return nil, fmt.Errorf("category repository: list %w", err)
	}
	return cats, nil
}

// Parents возвращает пары id/parent_id всех категорий для расчёта уровней и проверки циклов.
func (r *CategoryRepository) Parents(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.db.SelectContext(ctx, &cats, `SELECT id, parent_id FROM categories`); err != nil {
		return nil, fmt.Errorf("category repository: parents %w", err)
	}
	return cats, nil
}

// Update сохраняет имя, описание, родителя и флаг активности.
func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, parent_id = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, c.ID, c.Name, c.Description, c.ParentID, c.Active).
		Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		if errors.Is(common.TranslatePQ(err), common.ErrBrokenRef) {
			return ErrCategoryParentMissing
		}
		return fmt.Errorf("category repository: update %w", err)
	}
	return nil
}

// Delete удаляет категорию. Ссылки из подкатегорий и товаров блокируют удаление на уровне БД.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if errors.Is(common.TranslatePQ(err), common.ErrReferenced) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("category repository: delete %w", err)
	}
	return common.CheckAffected(res, ErrCategoryNotFound)
}
