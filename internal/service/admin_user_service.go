package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/domain/valueobject"
	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/validation"
)

type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	List(ctx context.Context) ([]models.AdminUser, error)
	Update(ctx context.Context, user *models.AdminUser) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	CountActiveSuperAdmins(ctx context.Context) (int, error)
	DeleteSessionsByAdmin(ctx context.Context, adminID uuid.UUID) error
}

// AdminUserInput поля создания администратора.
type AdminUserInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
	Role     string
	Active   *bool
}

// AdminUserPatch частичное обновление; nil означает "не менять".
type AdminUserPatch struct {
	FullName *string
	Email    *string
	Phone    *string
	Password *string
	Role     *string
	Active   *bool
}

// AdminUserService управляет учётными записями администраторов.
type AdminUserService struct {
	repo     AdminUserRepository
	activity *ActivityService
}

func NewAdminUserService(repo AdminUserRepository, activity *ActivityService) *AdminUserService {
	return &AdminUserService{repo: repo, activity: activity}
}

func (s *AdminUserService) List(ctx context.Context) ([]models.AdminUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if users == nil {
		users = []models.AdminUser{}
	}
	return users, nil
}

func (s *AdminUserService) Get(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	user, err := s.repo.GetByID(ctx, id)
	return user, mapRepoErr(err)
}

func (s *AdminUserService) Create(ctx context.Context, in AdminUserInput) (*models.AdminUser, error) {
	errs := validation.Errors{}
	errs.Check("fullName", validation.ValidateName("имя", in.FullName))
	errs.Check("email", validation.ValidateEmail(in.Email))
	errs.Check("phone", validation.ValidatePhone(in.Phone))
	errs.Check("password", validation.ValidatePassword(in.Password))
	if _, err := valueobject.NewAdminRole(in.Role); err != nil {
		errs.Check("role", fmt.Errorf("роль должна быть super-admin или sub-admin"))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
	}

	user := &models.AdminUser{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        validation.NormalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
	}
	if in.Active != nil {
		user.Active = *in.Active
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapRepoErr(err)
	}

	s.activity.Record(ctx, models.ActivityAdmin, models.ActionCreated, user.ID,
		fmt.Sprintf("Добавлен администратор %s", user.FullName))
	return user, nil
}

// Update применяет изменения. Нельзя отключить или понизить себя,
// и нельзя оставить систему без активного super-admin.
func (s *AdminUserService) Update(ctx context.Context, actorID, id uuid.UUID, patch AdminUserPatch) (*models.AdminUser, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	errs := validation.Errors{}
	if patch.FullName != nil {
		errs.Check("fullName", validation.ValidateName("имя", *patch.FullName))
		user.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.Email != nil {
		errs.Check("email", validation.ValidateEmail(*patch.Email))
		user.Email = validation.NormalizeEmail(*patch.Email)
	}
	if patch.Phone != nil {
		errs.Check("phone", validation.ValidatePhone(*patch.Phone))
		user.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Password != nil {
		errs.Check("password", validation.ValidatePassword(*patch.Password))
	}
	wasSuper := user.IsSuperAdmin() && user.Active
	if patch.Role != nil {
		if _, err := valueobject.NewAdminRole(*patch.Role); err != nil {
			errs.Check("role", fmt.Errorf("роль должна быть super-admin или sub-admin"))
		}
		user.Role = *patch.Role
	}
	if patch.Active != nil {
		user.Active = *patch.Active
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if actorID == id && (!user.Active || !user.IsSuperAdmin()) && wasSuper {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя отключить или понизить собственную учётную запись")
	}
	if wasSuper && (!user.Active || !user.IsSuperAdmin()) {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return nil, err
		}
	}

	if patch.Password != nil {
		hash, err := HashPassword(*patch.Password)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, mapRepoErr(err)
	}

	// отключённый администратор теряет все сессии, а смена пароля завершает старые входы
	if !user.Active || patch.Password != nil {
		if err := s.repo.DeleteSessionsByAdmin(ctx, user.ID); err != nil {
			logger.Log.WithError(err).Warn("admin service: не удалось завершить сессии")
		}
	}

	s.activity.Record(ctx, models.ActivityAdmin, models.ActionUpdated, user.ID,
		fmt.Sprintf("Изменён администратор %s", user.FullName))
	return user, nil
}

func (s *AdminUserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return apperror.New(apperror.ErrCodeForbidden, "нельзя удалить собственную учётную запись")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if user.IsSuperAdmin() && user.Active {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}

	s.activity.Record(ctx, models.ActivityAdmin, models.ActionDeleted, id,
		fmt.Sprintf("Удалён администратор %s", user.FullName))
	return nil
}

// ensureAnotherSuperAdmin проверяет, что после изменения останется хотя бы один активный super-admin.
func (s *AdminUserService) ensureAnotherSuperAdmin(ctx context.Context) error {
	n, err := s.repo.CountActiveSuperAdmins(ctx)
	if err != nil {
		return mapRepoErr(err)
	}
	if n <= 1 {
		return apperror.Dependency("нельзя отключить последнего активного super-admin")
	}
	return nil
}

// EnsureBootstrapAdmin создаёт super-admin, если таблица администраторов пуста.
// Возвращает true, если администратор был создан.
func (s *AdminUserService) EnsureBootstrapAdmin(ctx context.Context, email, password, name string) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, mapRepoErr(err)
	}
	if n > 0 {
		return false, nil
	}

	_, err = s.Create(ctx, AdminUserInput{
		FullName: name,
		Email:    email,
		Phone:    "0000000000",
		Password: password,
		Role:     models.RoleSuperAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
