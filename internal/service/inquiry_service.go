package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/domain/valueobject"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/validation"
)

type InquiryRepository interface {
	Create(ctx context.Context, in *models.Inquiry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
	List(ctx context.Context, f models.InquiryFilter) ([]models.Inquiry, error)
	Count(ctx context.Context, f models.InquiryFilter) (int, error)
	Update(ctx context.Context, in *models.Inquiry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type InquiryInput struct {
	CustomerID  uuid.UUID
	CatalogID   *uuid.UUID
	ProductName *string
	Message     string
	Priority    string
	Status      string
}

// InquiryPatch частичное обновление. CatalogSet позволяет отвязать запрос от каталога.
type InquiryPatch struct {
	CatalogSet  bool
	CatalogID   *uuid.UUID
	ProductName *string
	Message     *string
	Priority    *string
	Status      *string
}

type InquiryService struct {
	repo     InquiryRepository
	activity *ActivityService
}

func NewInquiryService(repo InquiryRepository, activity *ActivityService) *InquiryService {
	return &InquiryService{repo: repo, activity: activity}
}

func (s *InquiryService) Create(ctx context.Context, in InquiryInput) (*models.Inquiry, error) {
	errs := validation.Errors{}
	if in.CustomerID == uuid.Nil {
		errs.Check("customerId", fmt.Errorf("клиент обязателен"))
	}
	errs.Check("message", validation.ValidateNonEmpty("сообщение", in.Message))
	errs.Check("message", validation.ValidateLength("сообщение", in.Message, 0, validation.MaxMessageLength))
	errs.Check("productName", validation.ValidateOptional("название товара", in.ProductName, validation.MaxNameLength))
	priority, err := valueobject.NewInquiryPriority(in.Priority)
	errs.Check("priority", fieldErr(err))
	status, err := valueobject.NewInquiryStatus(in.Status)
	errs.Check("status", fieldErr(err))
	if err := errs.Err(); err != nil {
		return nil, err
	}

	inquiry := &models.Inquiry{
		CustomerID:  in.CustomerID,
		CatalogID:   in.CatalogID,
		ProductName: validation.TrimPtr(in.ProductName),
		Message:     in.Message,
		Priority:    string(priority),
		Status:      string(status),
	}
	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, mapRepoErr(err)
	}

	created, err := s.Get(ctx, inquiry.ID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActivityInquiry, models.ActionCreated, created.ID,
		fmt.Sprintf("Новый запрос от %s", created.Customer.Name))
	return created, nil
}

func (s *InquiryService) Get(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	inquiry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	decorateInquiry(inquiry)
	return inquiry, nil
}

// List возвращает страницу запросов; фильтры статуса и приоритета проверяются.
func (s *InquiryService) List(ctx context.Context, f models.InquiryFilter) ([]models.Inquiry, int, error) {
	if f.Status != "" && !valueobject.InquiryStatus(f.Status).IsValid() {
		return nil, 0, apperror.Validation("status", "некорректный статус запроса")
	}
	if f.Priority != "" && !valueobject.InquiryPriority(f.Priority).IsValid() {
		return nil, 0, apperror.Validation("priority", "некорректный приоритет запроса")
	}
	f.Limit, f.Offset = NormalizePage(f.Limit, f.Offset)

	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, mapRepoErr(err)
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, 0, mapRepoErr(err)
	}
	if items == nil {
		items = []models.Inquiry{}
	}
	for i := range items {
		decorateInquiry(&items[i])
	}
	return items, total, nil
}

// Update меняет поля запроса. Статус может перейти в любое допустимое значение.
func (s *InquiryService) Update(ctx context.Context, id uuid.UUID, patch InquiryPatch) (*models.Inquiry, error) {
	inquiry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	errs := validation.Errors{}
	if patch.Message != nil {
		errs.Check("message", validation.ValidateNonEmpty("сообщение", *patch.Message))
		errs.Check("message", validation.ValidateLength("сообщение", *patch.Message, 0, validation.MaxMessageLength))
		inquiry.Message = *patch.Message
	}
	if patch.ProductName != nil {
		errs.Check("productName", validation.ValidateOptional("название товара", patch.ProductName, validation.MaxNameLength))
		inquiry.ProductName = validation.TrimPtr(patch.ProductName)
	}
	if patch.CatalogSet {
		inquiry.CatalogID = patch.CatalogID
	}
	if patch.Priority != nil {
		p := valueobject.InquiryPriority(*patch.Priority)
		if !p.IsValid() {
			errs.Check("priority", fmt.Errorf("некорректный приоритет запроса"))
		}
		inquiry.Priority = string(p)
	}
	statusChanged := false
	if patch.Status != nil {
		next := valueobject.InquiryStatus(*patch.Status)
		if !valueobject.InquiryStatus(inquiry.Status).CanTransitionTo(next) {
			errs.Check("status", fmt.Errorf("некорректный статус запроса"))
		}
		statusChanged = inquiry.Status != string(next)
		inquiry.Status = string(next)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, inquiry); err != nil {
		return nil, mapRepoErr(err)
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Изменён запрос от %s", updated.Customer.Name)
	if statusChanged {
		msg = fmt.Sprintf("Запрос от %s: статус %s", updated.Customer.Name, updated.Status)
	}
	s.activity.Record(ctx, models.ActivityInquiry, models.ActionUpdated, id, msg)
	return updated, nil
}

func (s *InquiryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.activity.Record(ctx, models.ActivityInquiry, models.ActionDeleted, id, "Удалён запрос")
	return nil
}

func decorateInquiry(in *models.Inquiry) {
	in.Customer = &models.Ref{ID: in.CustomerID, Name: in.CustomerName, Email: in.CustomerEmail}
}

// fieldErr достаёт текст из ошибки валидации value object, чтобы собрать её в общий список полей.
func fieldErr(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperror.As(err); ok {
		return errors.New(appErr.Message)
	}
	return err
}
