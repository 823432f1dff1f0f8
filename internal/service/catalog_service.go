package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/validation"
)

type CatalogRepository interface {
	Create(ctx context.Context, c *models.Catalog) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Catalog, error)
	List(ctx context.Context, f models.CatalogFilter) ([]models.Catalog, error)
	Count(ctx context.Context, f models.CatalogFilter) (int, error)
	Update(ctx context.Context, c *models.Catalog) error
	ReplaceProducts(ctx context.Context, catalogID uuid.UUID, productIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// CatalogProducts то, что каталогу нужно знать о товарах.
type CatalogProducts interface {
	CountExisting(ctx context.Context, ids []uuid.UUID) (int, error)
	ByIDs(ctx context.Context, ids []uuid.UUID, onlyActive bool) ([]models.Product, error)
}

type CatalogInput struct {
	Name        string
	CustomerID  uuid.UUID
	HasPassword bool
	Password    *string
	Active      *bool
	ProductIDs  []uuid.UUID
}

// CatalogPatch частичное обновление. HasPassword=false снимает пароль,
// новый Password заменяет старый.
type CatalogPatch struct {
	Name        *string
	CustomerID  *uuid.UUID
	HasPassword *bool
	Password    *string
	Active      *bool
}

type CatalogService struct {
	repo     CatalogRepository
	products CatalogProducts
	activity *ActivityService
}

func NewCatalogService(repo CatalogRepository, products CatalogProducts, activity *ActivityService) *CatalogService {
	return &CatalogService{repo: repo, products: products, activity: activity}
}

func (s *CatalogService) Create(ctx context.Context, in CatalogInput) (*models.Catalog, error) {
	errs := validation.Errors{}
	errs.Check("name", validation.ValidateName("название каталога", in.Name))
	if in.CustomerID == uuid.Nil {
		errs.Check("customerId", fmt.Errorf("клиент обязателен"))
	}
	if in.HasPassword {
		if in.Password == nil || *in.Password == "" {
			errs.Check("password", fmt.Errorf("для защищённого каталога нужен пароль"))
		} else {
			errs.Check("password", validation.ValidatePassword(*in.Password))
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	productIDs := uniqueIDs(in.ProductIDs)
	if err := s.checkProducts(ctx, productIDs); err != nil {
		return nil, err
	}

	c := &models.Catalog{
		Name:       strings.TrimSpace(in.Name),
		CustomerID: in.CustomerID,
		Active:     true,
		ProductIDs: productIDs,
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if in.HasPassword {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
		}
		c.PasswordHash = &hash
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}

	created, err := s.Get(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActivityCatalog, models.ActionCreated, c.ID,
		fmt.Sprintf("Создан каталог %s для %s", created.Name, created.Customer.Name))
	return created, nil
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Catalog, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	decorateCatalog(c)
	return c, nil
}

func (s *CatalogService) List(ctx context.Context, f models.CatalogFilter) ([]models.Catalog, int, error) {
	f.Limit, f.Offset = NormalizePage(f.Limit, f.Offset)
	f.Query = strings.TrimSpace(f.Query)

	catalogs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, mapRepoErr(err)
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, 0, mapRepoErr(err)
	}
	if catalogs == nil {
		catalogs = []models.Catalog{}
	}
	for i := range catalogs {
		decorateCatalog(&catalogs[i])
	}
	return catalogs, total, nil
}

func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, patch CatalogPatch) (*models.Catalog, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	errs := validation.Errors{}
	if patch.Name != nil {
		errs.Check("name", validation.ValidateName("название каталога", *patch.Name))
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.CustomerID != nil {
		c.CustomerID = *patch.CustomerID
	}
	if patch.Active != nil {
		c.Active = *patch.Active
	}

	wantPassword := c.PasswordHash != nil
	if patch.HasPassword != nil {
		wantPassword = *patch.HasPassword
	}
	newPassword := patch.Password != nil && *patch.Password != ""
	switch {
	case !wantPassword:
		c.PasswordHash = nil
	case newPassword:
		errs.Check("password", validation.ValidatePassword(*patch.Password))
	case c.PasswordHash == nil:
		errs.Check("password", fmt.Errorf("для защищённого каталога нужен пароль"))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if wantPassword && newPassword {
		hash, err := HashPassword(*patch.Password)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
		}
		c.PasswordHash = &hash
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActivityCatalog, models.ActionUpdated, id,
		fmt.Sprintf("Изменён каталог %s", updated.Name))
	return updated, nil
}

// ReplaceProducts заменяет набор товаров каталога; все товары должны существовать.
func (s *CatalogService) ReplaceProducts(ctx context.Context, id uuid.UUID, productIDs []uuid.UUID) (*models.Catalog, error) {
	productIDs = uniqueIDs(productIDs)
	if err := s.checkProducts(ctx, productIDs); err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceProducts(ctx, id, productIDs); err != nil {
		return nil, mapRepoErr(err)
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActivityCatalog, models.ActionUpdated, id,
		fmt.Sprintf("Обновлены товары каталога %s (%d)", updated.Name, len(productIDs)))
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}

	s.activity.Record(ctx, models.ActivityCatalog, models.ActionDeleted, id,
		fmt.Sprintf("Удалён каталог %s", c.Name))
	return nil
}

// Access открывает каталог клиенту. Неактивный каталог выглядит как отсутствующий.
func (s *CatalogService) Access(ctx context.Context, id uuid.UUID, password string) (*models.PublicCatalog, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !c.Active {
		return nil, apperror.NotFound("каталог не найден")
	}
	if c.PasswordHash != nil && !CheckPassword(*c.PasswordHash, password) {
		return nil, apperror.ErrWrongPassword
	}

	products, err := s.products.ByIDs(ctx, c.ProductIDs, true)
	if err != nil {
		return nil, err
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		logger.Log.WithError(err).Warn("catalog service: не удалось увеличить счётчик просмотров")
	}

	return &models.PublicCatalog{
		ID:       c.ID,
		Name:     c.Name,
		Customer: c.CustomerName,
		Products: orderByIDs(products, c.ProductIDs),
	}, nil
}

func (s *CatalogService) checkProducts(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := s.products.CountExisting(ctx, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		return apperror.Validation("productIds", fmt.Sprintf("не найдено товаров: %d", len(ids)-n))
	}
	return nil
}

func decorateCatalog(c *models.Catalog) {
	c.Customer = &models.Ref{ID: c.CustomerID, Name: c.CustomerName, Email: c.CustomerEmail}
	c.HasPassword = c.PasswordHash != nil
	if c.ProductIDs == nil {
		c.ProductIDs = []uuid.UUID{}
	}
}

// uniqueIDs убирает повторы, сохраняя порядок.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// orderByIDs раскладывает товары в порядке каталога.
func orderByIDs(products []models.Product, ids []uuid.UUID) []models.Product {
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
