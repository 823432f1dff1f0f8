package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
)

func newAdminService(t *testing.T) (*AdminUserService, *fakeAdminRepo) {
	t.Helper()
	repo := newFakeAdminRepo()
	act := newActivityFixture(t)
	return NewAdminUserService(repo, act.service), repo
}

func TestAdminUserService_CreateValidation(t *testing.T) {
	svc, _ := newAdminService(t)

	_, err := svc.Create(context.Background(), AdminUserInput{
		FullName: "И",
		Email:    "bad",
		Phone:    "123",
		Password: "12345",
		Role:     "owner",
	})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	for _, field := range []string{"fullName", "email", "phone", "password", "role"} {
		assert.Contains(t, appErr.Fields, field)
	}
}

func TestAdminUserService_CreateDuplicateEmail(t *testing.T) {
	svc, repo := newAdminService(t)
	seedAdmin(t, repo, "admin@zipzag.ru", "password123", models.RoleSuperAdmin, true)

	_, err := svc.Create(context.Background(), AdminUserInput{
		FullName: "Второй",
		Email:    "ADMIN@zipzag.ru",
		Phone:    "+79990000001",
		Password: "password123",
		Role:     models.RoleSubAdmin,
	})
	assert.True(t, apperror.IsConflict(err))
}

func TestAdminUserService_CannotDeactivateSelf(t *testing.T) {
	svc, repo := newAdminService(t)
	admin := seedAdmin(t, repo, "admin@zipzag.ru", "password123", models.RoleSuperAdmin, true)
	seedAdmin(t, repo, "second@zipzag.ru", "password123", models.RoleSuperAdmin, true)

	_, err := svc.Update(context.Background(), admin.ID, admin.ID, AdminUserPatch{Active: ptr(false)})
	assert.True(t, apperror.IsForbidden(err))

	_, err = svc.Update(context.Background(), admin.ID, admin.ID, AdminUserPatch{Role: ptr(models.RoleSubAdmin)})
	assert.True(t, apperror.IsForbidden(err))
}

func TestAdminUserService_CannotDeleteSelf(t *testing.T) {
	svc, repo := newAdminService(t)
	admin := seedAdmin(t, repo, "admin@zipzag.ru", "password123", models.RoleSuperAdmin, true)

	err := svc.Delete(context.Background(), admin.ID, admin.ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestAdminUserService_LastSuperAdminProtected(t *testing.T) {
	svc, repo := newAdminService(t)
	actor := seedAdmin(t, repo, "sub@zipzag.ru", "password123", models.RoleSubAdmin, true)
	last := seedAdmin(t, repo, "admin@zipzag.ru", "password123", models.RoleSuperAdmin, true)

	_, err := svc.Update(context.Background(), actor.ID, last.ID, AdminUserPatch{Role: ptr(models.RoleSubAdmin)})
	assert.True(t, apperror.IsConflict(err))

	err = svc.Delete(context.Background(), actor.ID, last.ID)
	assert.True(t, apperror.IsConflict(err))
}

func TestAdminUserService_DeactivateDropsSessions(t *testing.T) {
	svc, repo := newAdminService(t)
	actor := seedAdmin(t, repo, "admin@zipzag.ru", "password123", models.RoleSuperAdmin, true)
	sub := seedAdmin(t, repo, "sub@zipzag.ru", "password123", models.RoleSubAdmin, true)
	require.NoError(t, repo.CreateSession(context.Background(), &models.AdminSession{
		AdminID:      sub.ID,
		RefreshToken: "token",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))

	updated, err := svc.Update(context.Background(), actor.ID, sub.ID, AdminUserPatch{Active: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, 0, repo.sessionCount())
}

func TestAdminUserService_PasswordChange(t *testing.T) {
	svc, repo := newAdminService(t)
	actor := seedAdmin(t, repo, "admin@zipzag.ru", "password123", models.RoleSuperAdmin, true)
	sub := seedAdmin(t, repo, "sub@zipzag.ru", "password123", models.RoleSubAdmin, true)

	_, err := svc.Update(context.Background(), actor.ID, sub.ID, AdminUserPatch{Password: ptr("newpass1")})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.True(t, CheckPassword(stored.PasswordHash, "newpass1"))
	assert.False(t, CheckPassword(stored.PasswordHash, "password123"))
}

func TestAdminUserService_EnsureBootstrapAdmin(t *testing.T) {
	svc, repo := newAdminService(t)
	ctx := context.Background()

	created, err := svc.EnsureBootstrapAdmin(ctx, "root@zipzag.ru", "password123", "Root")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureBootstrapAdmin(ctx, "other@zipzag.ru", "password123", "Other")
	require.NoError(t, err)
	assert.False(t, created)

	n, _ := repo.Count(ctx)
	assert.Equal(t, 1, n)
	admin, err := repo.GetByEmail(ctx, "root@zipzag.ru")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, admin.Role)
}
