package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/validation"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, f models.CustomerFilter) ([]models.Customer, error)
	Count(ctx context.Context, f models.CustomerFilter) (int, error)
	Update(ctx context.Context, c *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CustomerInput struct {
	Name   string
	Email  string
	Phone  *string
	Region *string
	Active *bool
}

type CustomerPatch struct {
	Name   *string
	Email  *string
	Phone  *string
	Region *string
	Active *bool
}

type CustomerService struct {
	repo     CustomerRepository
	activity *ActivityService
}

func NewCustomerService(repo CustomerRepository, activity *ActivityService) *CustomerService {
	return &CustomerService{repo: repo, activity: activity}
}

func validateCustomer(c *models.Customer) error {
	errs := validation.Errors{}
	errs.Check("name", validation.ValidateName("имя клиента", c.Name))
	errs.Check("email", validation.ValidateEmail(c.Email))
	if c.Phone != nil {
		errs.Check("phone", validation.ValidatePhone(*c.Phone))
	}
	errs.Check("region", validation.ValidateOptional("регион", c.Region, validation.MaxRegionLength))
	return errs.Err()
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	c := &models.Customer{
		Name:   strings.TrimSpace(in.Name),
		Email:  validation.NormalizeEmail(in.Email),
		Phone:  validation.TrimPtr(in.Phone),
		Region: validation.TrimPtr(in.Region),
		Active: true,
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if err := validateCustomer(c); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}

	s.activity.Record(ctx, models.ActivityCustomer, models.ActionCreated, c.ID,
		fmt.Sprintf("Добавлен клиент %s", c.Name))
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return c, nil
}

// List возвращает страницу клиентов и общее количество по фильтру.
func (s *CustomerService) List(ctx context.Context, f models.CustomerFilter) ([]models.Customer, int, error) {
	f.Limit, f.Offset = NormalizePage(f.Limit, f.Offset)
	f.Query = strings.TrimSpace(f.Query)

	customers, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, mapRepoErr(err)
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, 0, mapRepoErr(err)
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	return customers, total, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, patch CustomerPatch) (*models.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		c.Email = validation.NormalizeEmail(*patch.Email)
	}
	// пустая строка очищает необязательные поля
	if patch.Phone != nil {
		c.Phone = validation.TrimPtr(patch.Phone)
	}
	if patch.Region != nil {
		c.Region = validation.TrimPtr(patch.Region)
	}
	if patch.Active != nil {
		c.Active = *patch.Active
	}
	if err := validateCustomer(c); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}

	s.activity.Record(ctx, models.ActivityCustomer, models.ActionUpdated, c.ID,
		fmt.Sprintf("Изменён клиент %s", c.Name))
	return c, nil
}

// Delete удаляет клиента без каталогов и запросов.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if c.CatalogCount > 0 {
		return apperror.Dependency(fmt.Sprintf("у клиента есть каталоги (%d)", c.CatalogCount))
	}
	if c.InquiryCount > 0 {
		return apperror.Dependency(fmt.Sprintf("у клиента есть запросы (%d)", c.InquiryCount))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}

	s.activity.Record(ctx, models.ActivityCustomer, models.ActionDeleted, id,
		fmt.Sprintf("Удалён клиент %s", c.Name))
	return nil
}
