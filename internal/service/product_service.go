package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/zipzag-catalog/internal/domain/valueobject"
	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/storage"
	"github.com/ignatzorin/zipzag-catalog/internal/validation"
)

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	Count(ctx context.Context, f models.ProductFilter) (int, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID, onlyActive bool) ([]models.Product, error)
	CountExisting(ctx context.Context, ids []uuid.UUID) (int, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddImage(ctx context.Context, img *models.ProductImage) error
	GetImage(ctx context.Context, productID, imageID uuid.UUID) (*models.ProductImage, error)
	ListImages(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]models.ProductImage, error)
	DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error
}

// ImageStore файловое хранилище изображений товаров.
type ImageStore interface {
	Save(ctx context.Context, productID uuid.UUID, originalName string, r io.Reader) (*storage.StoredFile, error)
	Delete(ctx context.Context, relativePath string) error
	DeleteDir(ctx context.Context, productID uuid.UUID) error
	URL(relativePath string) string
}

// ProductInput поля создания товара.
type ProductInput struct {
	Name             string
	ShortDescription string
	LongDescription  string
	BasePrice        float64
	OfferPercentage  float64
	CategoryID       uuid.UUID
	Active           *bool
}

// ProductPatch частичное обновление товара.
type ProductPatch struct {
	Name             *string
	ShortDescription *string
	LongDescription  *string
	BasePrice        *float64
	OfferPercentage  *float64
	CategoryID       *uuid.UUID
	Active           *bool
}

type ProductService struct {
	repo     ProductRepository
	images   ImageStore
	cache    Cache
	activity *ActivityService
}

func NewProductService(repo ProductRepository, images ImageStore, cache Cache, activity *ActivityService) *ProductService {
	return &ProductService{repo: repo, images: images, cache: cache, activity: activity}
}

func validateProduct(p *models.Product) error {
	errs := validation.Errors{}
	errs.Check("name", validation.ValidateName("название товара", p.Name))
	errs.Check("shortDescription", validation.ValidateLength("краткое описание", p.ShortDescription, 0, validation.MaxShortDescriptionLength))
	errs.Check("longDescription", validation.ValidateLength("полное описание", p.LongDescription,
		validation.MinLongDescriptionLength, validation.MaxLongDescriptionLength))
	errs.Check("basePrice", validation.ValidatePrice(p.BasePrice))
	errs.Check("offerPercentage", validation.ValidatePercentage(p.OfferPercentage))
	if p.CategoryID == uuid.Nil {
		errs.Check("categoryId", errors.New("категория обязательна"))
	}
	return errs.Err()
}

// Create создаёт товар в существующей категории.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := &models.Product{
		Name:             strings.TrimSpace(in.Name),
		ShortDescription: strings.TrimSpace(in.ShortDescription),
		LongDescription:  strings.TrimSpace(in.LongDescription),
		BasePrice:        in.BasePrice,
		OfferPercentage:  in.OfferPercentage,
		CategoryID:       in.CategoryID,
		Active:           true,
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, mapRepoErr(err)
	}
	s.invalidate(ctx)

	// имя категории берём из хранилища, чтобы ответ совпадал с GetByID
	created, err := s.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActivityProduct, models.ActionCreated, p.ID,
		fmt.Sprintf("Добавлен товар %s", p.Name))
	return created, nil
}

// Get возвращает товар с итоговой ценой и изображениями.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	products := []models.Product{*p}
	if err := s.decorate(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// List возвращает страницу товаров и общее количество.
func (s *ProductService) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int, error) {
	f.Limit, f.Offset = NormalizePage(f.Limit, f.Offset)
	f.Query = strings.TrimSpace(f.Query)

	products, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, mapRepoErr(err)
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, 0, mapRepoErr(err)
	}

	if products == nil {
		products = []models.Product{}
	}
	if err := s.decorate(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ByIDs возвращает товары по списку id с заполненными ценами и изображениями.
func (s *ProductService) ByIDs(ctx context.Context, ids []uuid.UUID, onlyActive bool) ([]models.Product, error) {
	products, err := s.repo.ListByIDs(ctx, ids, onlyActive)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if products == nil {
		products = []models.Product{}
	}
	if err := s.decorate(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// CountExisting считает, сколько товаров из списка существует.
func (s *ProductService) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	n, err := s.repo.CountExisting(ctx, ids)
	return n, mapRepoErr(err)
}

// Update применяет только переданные поля.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.ShortDescription != nil {
		p.ShortDescription = strings.TrimSpace(*patch.ShortDescription)
	}
	if patch.LongDescription != nil {
		p.LongDescription = strings.TrimSpace(*patch.LongDescription)
	}
	if patch.BasePrice != nil {
		p.BasePrice = *patch.BasePrice
	}
	if patch.OfferPercentage != nil {
		p.OfferPercentage = *patch.OfferPercentage
	}
	categoryChanged := false
	if patch.CategoryID != nil {
		categoryChanged = *patch.CategoryID != p.CategoryID
		p.CategoryID = *patch.CategoryID
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, mapRepoErr(err)
	}
	if categoryChanged {
		s.invalidate(ctx)
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActivityProduct, models.ActionUpdated, id,
		fmt.Sprintf("Изменён товар %s", p.Name))
	return updated, nil
}

// Delete удаляет товар вместе с файлами изображений.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}

	if err := s.images.DeleteDir(ctx, id); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"product_id": id,
			"error":      err.Error(),
		}).Warn("product service: не удалось удалить файлы изображений")
	}

	s.invalidate(ctx)
	s.activity.Record(ctx, models.ActivityProduct, models.ActionDeleted, id,
		fmt.Sprintf("Удалён товар %s", p.Name))
	return nil
}

// AddImage сохраняет файл и регистрирует его у товара.
func (s *ProductService) AddImage(ctx context.Context, productID uuid.UUID, originalName string, r io.Reader) (*models.ProductImage, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	stored, err := s.images.Save(ctx, productID, originalName, r)
	if err != nil {
		return nil, mapStorageErr(err)
	}

	img := &models.ProductImage{
		ProductID:    productID,
		FilePath:     stored.Path,
		OriginalName: originalName,
		MimeType:     stored.MimeType,
		SizeBytes:    stored.Size,
	}
	if err := s.repo.AddImage(ctx, img); err != nil {
		if delErr := s.images.Delete(ctx, stored.Path); delErr != nil {
			logger.Log.WithError(delErr).Warn("product service: не удалось удалить файл после ошибки")
		}
		return nil, mapRepoErr(err)
	}
	img.URL = s.images.URL(img.FilePath)

	s.activity.Record(ctx, models.ActivityProduct, models.ActionUpdated, productID,
		fmt.Sprintf("Добавлено изображение товара %s", p.Name))
	return img, nil
}

// DeleteImage удаляет изображение товара и его файл.
func (s *ProductService) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	img, err := s.repo.GetImage(ctx, productID, imageID)
	if err != nil {
		return mapRepoErr(err)
	}
	if err := s.repo.DeleteImage(ctx, productID, imageID); err != nil {
		return mapRepoErr(err)
	}
	if err := s.images.Delete(ctx, img.FilePath); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"image_id": imageID,
			"error":    err.Error(),
		}).Warn("product service: не удалось удалить файл изображения")
	}

	s.activity.Record(ctx, models.ActivityProduct, models.ActionUpdated, productID,
		"Удалено изображение товара")
	return nil
}

// decorate заполняет вычисляемые поля: итоговую цену, категорию и изображения.
func (s *ProductService) decorate(ctx context.Context, products []models.Product) error {
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	images, err := s.repo.ListImages(ctx, ids)
	if err != nil {
		return mapRepoErr(err)
	}

	for i := range products {
		p := &products[i]
		p.FinalPrice = valueobject.FinalPrice(p.BasePrice, p.OfferPercentage)
		p.Category = &models.Ref{ID: p.CategoryID, Name: p.CategoryName}
		p.Images = images[p.ID]
		if p.Images == nil {
			p.Images = []models.ProductImage{}
		}
		for j := range p.Images {
			p.Images[j].URL = s.images.URL(p.Images[j].FilePath)
		}
	}
	return nil
}

// invalidate сбрасывает список категорий, в нём хранится productCount.
func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateByPrefix(ctx, CategoryCachePrefix); err != nil {
		logger.Log.WithError(err).Warn("product service: не удалось сбросить кэш")
	}
}

func mapStorageErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrEmptyFile),
		errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, storage.ErrExtensionMismatch),
		errors.Is(err, storage.ErrTooLarge):
		return apperror.Validation("file", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить файл")
	}
}
