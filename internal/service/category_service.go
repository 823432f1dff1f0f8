package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/domain/hierarchy"
	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/validation"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Parents(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryInput поля создания категории.
type CategoryInput struct {
	Name        string
	Description *string
	ParentID    *uuid.UUID
	Active      *bool
}

// CategoryPatch частичное обновление категории.
// ParentSet отличает "родитель не передан" от "сделать корневой" (ParentSet и ParentID == nil).
type CategoryPatch struct {
	Name        *string
	Description *string
	ParentSet   bool
	ParentID    *uuid.UUID
	Active      *bool
}

// CategoryService хранит иерархию категорий. Уровень всегда вычисляется по
// текущей цепочке родителей, поэтому перенос ветки сразу меняет уровни потомков.
type CategoryService struct {
	repo     CategoryRepository
	cache    Cache
	cacheTTL time.Duration
	activity *ActivityService
}

func NewCategoryService(repo CategoryRepository, cache Cache, cacheTTL time.Duration, activity *ActivityService) *CategoryService {
	return &CategoryService{repo: repo, cache: cache, cacheTTL: cacheTTL, activity: activity}
}

func validateCategoryName(name string) error {
	return validation.ValidateName("название категории", name)
}

// Create создаёт категорию. Родитель, если указан, должен существовать.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := validateCategoryName(in.Name); err != nil {
		return nil, apperror.Validation("name", err.Error())
	}
	if err := validation.ValidateOptional("описание", in.Description, validation.MaxDescriptionLength); err != nil {
		return nil, apperror.Validation("description", err.Error())
	}

	ix, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		if _, ok := ix[*in.ParentID]; !ok {
			return nil, apperror.Validation("parentId", "родительская категория не найдена")
		}
	}

	c := &models.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: validation.TrimPtr(in.Description),
		ParentID:    in.ParentID,
		Active:      true,
	}
	if in.Active != nil {
		c.Active = *in.Active
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}

	ix[c.ID] = c.ParentID
	c.Level = ix.Levels()[c.ID]

	s.invalidate(ctx)
	s.activity.Record(ctx, models.ActivityCategory, models.ActionCreated, c.ID,
		fmt.Sprintf("Создана категория %s", c.Name))
	return c, nil
}

// Get возвращает категорию с уровнем и счётчиками.
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	ix, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	c.Level = ix.Levels()[c.ID]
	return c, nil
}

// List возвращает все категории в порядке отображения иерархии.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	cats, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.PreOrder(cats), nil
}

// Tree возвращает категории вложенным деревом.
func (s *CategoryService) Tree(ctx context.Context) ([]*models.CategoryNode, error) {
	cats, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.Tree(cats), nil
}

// Update применяет только переданные поля.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*models.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if patch.Name != nil {
		if err := validateCategoryName(*patch.Name); err != nil {
			return nil, apperror.Validation("name", err.Error())
		}
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		if err := validation.ValidateOptional("описание", patch.Description, validation.MaxDescriptionLength); err != nil {
			return nil, apperror.Validation("description", err.Error())
		}
		c.Description = validation.TrimPtr(patch.Description)
	}
	if patch.Active != nil {
		c.Active = *patch.Active
	}

	ix, err := s.index(ctx)
	if err != nil {
		return nil, err
	}

	if patch.ParentSet {
		if patch.ParentID != nil {
			if _, ok := ix[*patch.ParentID]; !ok {
				return nil, apperror.Validation("parentId", "родительская категория не найдена")
			}
			if ix.WouldCreateCycle(id, *patch.ParentID) {
				return nil, apperror.Validation("parentId", "категория не может быть вложена в себя или в своего потомка")
			}
		}
		c.ParentID = patch.ParentID
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}

	ix[c.ID] = c.ParentID
	c.Level = ix.Levels()[c.ID]

	s.invalidate(ctx)
	s.activity.Record(ctx, models.ActivityCategory, models.ActionUpdated, c.ID,
		fmt.Sprintf("Изменена категория %s", c.Name))
	return c, nil
}

// Delete удаляет категорию без подкатегорий и товаров.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if c.SubcategoryCount > 0 {
		return apperror.Dependency(fmt.Sprintf("у категории есть подкатегории (%d)", c.SubcategoryCount))
	}
	if c.ProductCount > 0 {
		return apperror.Dependency(fmt.Sprintf("в категории есть товары (%d)", c.ProductCount))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}

	s.invalidate(ctx)
	s.activity.Record(ctx, models.ActivityCategory, models.ActionDeleted, id,
		fmt.Sprintf("Удалена категория %s", c.Name))
	return nil
}

func (s *CategoryService) all(ctx context.Context) ([]models.Category, error) {
	cats, err := GetOrSet(ctx, s.cache, CategoryListCacheKey(), s.cacheTTL, func() ([]models.Category, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return cats, nil
}

func (s *CategoryService) index(ctx context.Context) (hierarchy.Index, error) {
	parents, err := s.repo.Parents(ctx)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return hierarchy.NewIndex(parents), nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateByPrefix(ctx, CategoryCachePrefix); err != nil {
		logger.Log.WithError(err).Warn("category service: не удалось сбросить кэш")
	}
}
