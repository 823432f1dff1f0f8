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
	ErrCatalogNotFound = errors.New("catalog not found")
	ErrCatalogCustomer = errors.New("catalog customer does not exist")
	ErrCatalogProducts = errors.New("catalog product does not exist")
)

const catalogSelect = `
	SELECT ca.id, ca.name, ca.customer_id, cu.name AS customer_name, cu.email AS customer_email,
		ca.password_hash, (ca.password_hash IS NOT NULL) AS has_password, ca.is_active, ca.views,
		ca.created_at, ca.updated_at,
		(SELECT COUNT(*) FROM catalog_products cp WHERE cp.catalog_id = ca.id) AS product_count,
		(SELECT COUNT(*) FROM inquiries i WHERE i.catalog_id = ca.id) AS inquiry_count
	FROM catalogs ca
	JOIN customers cu ON cu.id = ca.customer_id`

// CatalogRepository отвечает за таблицы catalogs и catalog_products.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Create сохраняет каталог и его набор товаров в одной транзакции.
func (r *CatalogRepository) Create(ctx context.Context, c *models.Catalog) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO catalogs (name, customer_id, password_hash, is_active)
			VALUES ($1, $2, $3, $4)
			RETURNING id, views, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query, c.Name, c.CustomerID, c.PasswordHash, c.Active).
			Scan(&c.ID, &c.Views, &c.CreatedAt, &c.UpdatedAt); err != nil {
			if errors.Is(common.TranslatePQ(err), common.ErrBrokenRef) {
				return ErrCatalogCustomer
			}
			return fmt.Errorf("catalog repository: create %w", err)
		}
		return insertCatalogProducts(ctx, tx, c.ID, c.ProductIDs)
	})
}

// ReplaceProducts заменяет набор товаров каталога.
func (r *CatalogRepository) ReplaceProducts(ctx context.Context, catalogID uuid.UUID, productIDs []uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE catalogs SET updated_at = NOW() WHERE id = $1`, catalogID)
		if err != nil {
			return fmt.Errorf("catalog repository: touch %w", err)
		}
		if err := common.CheckAffected(res, ErrCatalogNotFound); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_products WHERE catalog_id = $1`, catalogID); err != nil {
			return fmt.Errorf("catalog repository: clear products %w", err)
		}
		return insertCatalogProducts(ctx, tx, catalogID, productIDs)
	})
}

func insertCatalogProducts(ctx context.Context, tx *sqlx.Tx, catalogID uuid.UUID, productIDs []uuid.UUID) error {
	bi := common.NewBatchInserter(tx, `INSERT INTO catalog_products (catalog_id, product_id, position)`, 3, 200)
	for i, pid := range productIDs {
		if err := bi.Add(ctx, catalogID, pid, i); err != nil {
			return translateCatalogProductErr(err)
		}
	}
	if err := bi.Flush(ctx); err != nil {
		return translateCatalogProductErr(err)
	}
	return nil
}

func translateCatalogProductErr(err error) error {
	if errors.Is(common.TranslatePQ(err), common.ErrBrokenRef) {
		return ErrCatalogProducts
	}
	return fmt.Errorf("catalog repository: insert products %w", err)
}

func (r *CatalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Catalog, error) {
	c, err := common.GetByField[models.Catalog](ctx, r.db, catalogSelect, "ca.id", id, ErrCatalogNotFound)
	if err != nil {
		if errors.Is(err, ErrCatalogNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("catalog repository: %w", err)
	}

	ids, err := r.ProductIDs(ctx, []uuid.UUID{c.ID})
	if err != nil {
		return nil, err
	}
	c.ProductIDs = ids[c.ID]
	return c, nil
}

func catalogWhere(f models.CatalogFilter) *common.Where {
	w := &common.Where{}
	if f.CustomerID != nil {
		w.Add("ca.customer_id = ?", *f.CustomerID)
	}
	if f.Active != nil {
		w.Add("ca.is_active = ?", *f.Active)
	}
	if f.Query != "" {
		w.Add("ca.name ILIKE ?", "%"+f.Query+"%")
	}
	return w
}

func (r *CatalogRepository) List(ctx context.Context, f models.CatalogFilter) ([]models.Catalog, error) {
	w := catalogWhere(f)
	query := fmt.Sprintf("%s%s ORDER BY ca.created_at DESC, ca.id LIMIT $%d OFFSET $%d",
		catalogSelect, w.SQL(), w.Next(), w.Next()+1)
	args := append(w.Args(), f.Limit, f.Offset)

	var catalogs []models.Catalog
	if err := r.db.SelectContext(ctx, &catalogs, query, args...); err != nil {
		return nil, fmt.Errorf("catalog repository: list %w", err)
	}

	ids := make([]uuid.UUID, len(catalogs))
	for i := range catalogs {
		ids[i] = catalogs[i].ID
	}
	products, err := r.ProductIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range catalogs {
		catalogs[i].ProductIDs = products[catalogs[i].ID]
	}
	return catalogs, nil
}

func (r *CatalogRepository) Count(ctx context.Context, f models.CatalogFilter) (int, error) {
	w := catalogWhere(f)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM catalogs ca`+w.SQL(), w.Args()...); err != nil {
		return 0, fmt.Errorf("catalog repository: count %w", err)
	}
	return total, nil
}

// ProductIDs возвращает товары каталогов в порядке добавления.
func (r *CatalogRepository) ProductIDs(ctx context.Context, catalogIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(catalogIDs))
	for _, id := range catalogIDs {
		out[id] = []uuid.UUID{}
	}
	if len(catalogIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		CatalogID uuid.UUID `db:"catalog_id"`
		ProductID uuid.UUID `db:"product_id"`
	}
	query := `SELECT catalog_id, product_id FROM catalog_products WHERE catalog_id = ANY($1) ORDER BY position`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(catalogIDs)); err != nil {
		return nil, fmt.Errorf("catalog repository: product ids %w", err)
	}
	for _, row := range rows {
		out[row.CatalogID] = append(out[row.CatalogID], row.ProductID)
	}
	return out, nil
}

func (r *CatalogRepository) Update(ctx context.Context, c *models.Catalog) error {
	query := `
		UPDATE catalogs
		SET name = $2, customer_id = $3, password_hash = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, c.ID, c.Name, c.CustomerID, c.PasswordHash, c.Active).
		Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCatalogNotFound
		}
		if errors.Is(common.TranslatePQ(err), common.ErrBrokenRef) {
			return ErrCatalogCustomer
		}
		return fmt.Errorf("catalog repository: update %w", err)
	}
	return nil
}

// Delete удаляет каталог; связи с товарами удаляются каскадом, запросы теряют ссылку.
func (r *CatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM catalogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog repository: delete %w", err)
	}
	return common.CheckAffected(res, ErrCatalogNotFound)
}

// IncrementViews увеличивает счётчик просмотров.
func (r *CatalogRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE catalogs SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog repository: increment views %w", err)
	}
	return common.CheckAffected(res, ErrCatalogNotFound)
}

