package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/repository"
)

type mockCustomerRepo struct {
	mock.Mock
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *models.Customer) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil {
		c.ID = uuid.New()
		c.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *mockCustomerRepo) List(ctx context.Context, f models.CustomerFilter) ([]models.Customer, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *mockCustomerRepo) Count(ctx context.Context, f models.CustomerFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *mockCustomerRepo) Update(ctx context.Context, c *models.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestCustomerService_CreateNormalizesEmail(t *testing.T) {
	repo := new(mockCustomerRepo)
	act := newActivityFixture(t)
	svc := NewCustomerService(repo, act.service)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Customer) bool {
		return c.Email == "anna@example.com" && c.Phone == nil && *c.Region == "Москва"
	})).Return(nil)

	c, err := svc.Create(context.Background(), CustomerInput{
		Name:   "Анна",
		Email:  " Anna@Example.com ",
		Phone:  ptr(""),
		Region: ptr(" Москва "),
	})
	require.NoError(t, err)
	assert.True(t, c.Active)
	repo.AssertExpectations(t)
}

func TestCustomerService_CreateDuplicateEmail(t *testing.T) {
	repo := new(mockCustomerRepo)
	act := newActivityFixture(t)
	svc := NewCustomerService(repo, act.service)

	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrCustomerEmailTaken)

	_, err := svc.Create(context.Background(), CustomerInput{Name: "Анна", Email: "anna@example.com"})
	assert.True(t, apperror.IsConflict(err))
}

func TestCustomerService_CreateValidation(t *testing.T) {
	repo := new(mockCustomerRepo)
	act := newActivityFixture(t)
	svc := NewCustomerService(repo, act.service)

	_, err := svc.Create(context.Background(), CustomerInput{Name: "А", Email: "not-an-email", Phone: ptr("123")})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "name")
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "phone")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCustomerService_DeleteBlockedByCatalogs(t *testing.T) {
	repo := new(mockCustomerRepo)
	act := newActivityFixture(t)
	svc := NewCustomerService(repo, act.service)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&models.Customer{ID: id, Name: "Анна", CatalogCount: 2}, nil)

	err := svc.Delete(context.Background(), id)
	assert.True(t, apperror.IsConflict(err))
	repo.AssertNotCalled(t, "Delete", mock.Anything, id)
}

func TestCustomerService_DeleteWithoutDependencies(t *testing.T) {
	repo := new(mockCustomerRepo)
	act := newActivityFixture(t)
	svc := NewCustomerService(repo, act.service)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&models.Customer{ID: id, Name: "Анна"}, nil)
	repo.On("Delete", mock.Anything, id).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	repo.AssertExpectations(t)
}

func TestCustomerService_GetNotFound(t *testing.T) {
	repo := new(mockCustomerRepo)
	act := newActivityFixture(t)
	svc := NewCustomerService(repo, act.service)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, repository.ErrCustomerNotFound)

	_, err := svc.Get(context.Background(), id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCustomerService_ListNormalizesPage(t *testing.T) {
	repo := new(mockCustomerRepo)
	act := newActivityFixture(t)
	svc := NewCustomerService(repo, act.service)

	want := models.CustomerFilter{Query: "анна", Limit: maxPageLimit, Offset: 0}
	repo.On("List", mock.Anything, want).Return(nil, nil)
	repo.On("Count", mock.Anything, want).Return(0, nil)

	items, total, err := svc.List(context.Background(), models.CustomerFilter{Query: " анна ", Limit: 1000, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, items)
	repo.AssertExpectations(t)
}
