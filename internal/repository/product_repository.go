package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/repository/common"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductImageNotFound = errors.New("product image not found")
	ErrProductCategory      = errors.New("product category does not exist")
)

const productSelect = `
	SELECT p.id, p.name, p.short_description, p.long_description, p.base_price, p.offer_percentage,
		p.category_id, COALESCE(c.name, '') AS category_name, p.is_active, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

const imageColumns = `id, product_id, file_path, original_name, mime_type, size_bytes, position, created_at`

// ProductRepository отвечает за таблицы products и product_images.
type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, short_description, long_description, base_price, offer_percentage, category_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		p.Name, p.ShortDescription, p.LongDescription, p.BasePrice, p.OfferPercentage, p.CategoryID, p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(common.TranslatePQ(err), common.ErrBrokenRef) {
			return ErrProductCategory
		}
		return fmt.Errorf("product repository: create %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := common.GetByField[models.Product](ctx, r.db, productSelect, "p.id", id, ErrProductNotFound)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("product repository: %w", err)
	}
	return p, nil
}

func productWhere(f models.ProductFilter) *common.Where {
	w := &common.Where{}
	if f.CategoryID != nil {
		w.Add("p.category_id = ?", *f.CategoryID)
	}
	if f.Active != nil {
		w.Add("p.is_active = ?", *f.Active)
	}
	if f.Query != "" {
		w.Add("p.name ILIKE ?", "%"+f.Query+"%")
	}
	return w
}

// List возвращает страницу товаров по фильтру, новые сверху.
func (r *ProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	w := productWhere(f)
	query := fmt.Sprintf("%s%s ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d",
		productSelect, w.SQL(), w.Next(), w.Next()+1)
	args := append(w.Args(), f.Limit, f.Offset)

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("product repository: list %w", err)
	}
	return products, nil
}

// Count возвращает количество товаров по фильтру без учёта пагинации.
func (r *ProductRepository) Count(ctx context.Context, f models.ProductFilter) (int, error) {
	w := productWhere(f)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM products p`+w.SQL(), w.Args()...); err != nil {
		return 0, fmt.Errorf("product repository: count %w", err)
	}
	return total, nil
}

// ListByIDs возвращает товары с указанными id; отсутствующие id пропускаются.
func (r *ProductRepository) ListByIDs(ctx context.Context, ids []uuid.UUID, onlyActive bool) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	query := productSelect + ` WHERE p.id = ANY($1)`
	if onlyActive {
		query += ` AND p.is_active = TRUE`
	}
	query += ` ORDER BY p.name`

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("product repository: list by ids %w", err)
	}
	return products, nil
}

// CountExisting возвращает, сколько из переданных id реально существует.
func (r *ProductRepository) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("product repository: count existing %w", err)
	}
	return n, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $2, short_description = $3, long_description = $4, base_price = $5,
			offer_percentage = $6, category_id = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.Name, p.ShortDescription, p.LongDescription, p.BasePrice, p.OfferPercentage, p.CategoryID, p.Active,
	).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if errors.Is(common.TranslatePQ(err), common.ErrBrokenRef) {
			return ErrProductCategory
		}
		return fmt.Errorf("product repository: update %w", err)
	}
	return nil
}

// Delete удаляет товар; изображения удаляются каскадом.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("product repository: delete %w", err)
	}
	return common.CheckAffected(res, ErrProductNotFound)
}

// AddImage сохраняет изображение последним в списке товара.
func (r *ProductRepository) AddImage(ctx context.Context, img *models.ProductImage) error {
	query := `
		INSERT INTO product_images (product_id, file_path, original_name, mime_type, size_bytes, position)
		VALUES ($1, $2, $3, $4, $5, (SELECT COALESCE(MAX(position) + 1, 0) FROM product_images WHERE product_id = $1))
		RETURNING id, position, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		img.ProductID, img.FilePath, img.OriginalName, img.MimeType, img.SizeBytes,
	).Scan(&img.ID, &img.Position, &img.CreatedAt); err != nil {
		if errors.Is(common.TranslatePQ(err), common.ErrBrokenRef) {
			return ErrProductNotFound
		}
		return fmt.Errorf("product repository: add image %w", err)
	}
	return nil
}

// GetImage возвращает изображение конкретного товара.
func (r *ProductRepository) GetImage(ctx context.Context, productID, imageID uuid.UUID) (*models.ProductImage, error) {
	var img models.ProductImage
	query := `SELECT ` + imageColumns + ` FROM product_images WHERE id = $1 AND product_id = $2`
	if err := r.db.GetContext(ctx, &img, query, imageID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductImageNotFound
		}
		return nil, fmt.Errorf("product repository: get image %w", err)
	}
	return &img, nil
}

// ListImages возвращает изображения товаров, сгруппированные по product_id.
func (r *ProductRepository) ListImages(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]models.ProductImage, error) {
	out := make(map[uuid.UUID][]models.ProductImage, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var images []models.ProductImage
	query := `SELECT ` + imageColumns + ` FROM product_images WHERE product_id = ANY($1) ORDER BY position, created_at`
	if err := r.db.SelectContext(ctx, &images, query, pq.Array(productIDs)); err != nil {
		return nil, fmt.Errorf("product repository: list images %w", err)
	}
	for _, img := range images {
		out[img.ProductID] = append(out[img.ProductID], img)
	}
	return out, nil
}

func (r *ProductRepository) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM product_images WHERE id = $1 AND product_id = $2`, imageID, productID)
	if err != nil {
		return fmt.Errorf("product repository: delete image %w", err)
	}
	return common.CheckAffected(res, ErrProductImageNotFound)
}
