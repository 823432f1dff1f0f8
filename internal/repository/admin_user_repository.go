package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/repository/common"
)

var (
	// ErrAdminNotFound возвращается, когда администратор не найден.
	ErrAdminNotFound = errors.New("admin user not found")
	// ErrAdminEmailTaken возвращается при повторном email.
	ErrAdminEmailTaken = errors.New("admin email already taken")
	// ErrSessionNotFound возвращается, когда refresh токен не найден или истёк.
	ErrSessionNotFound = errors.New("session not found")
)

const adminColumns = `id, full_name, email, phone, password_hash, role, is_active, last_login_at, created_at, updated_at`

// AdminUserRepository отвечает за таблицы admin_users и admin_sessions.
type AdminUserRepository struct {
	db *sqlx.DB
}

// NewAdminUserRepository создаёт экземпляр репозитория.
func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// Create сохраняет нового администратора.
func (r *AdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	query := `
		INSERT INTO admin_users (full_name, email, phone, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.FullName, user.Email, user.Phone, user.PasswordHash, user.Role, user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(common.TranslatePQ(err), common.ErrAlreadyExists) {
			return ErrAdminEmailTaken
		}
		return fmt.Errorf("admin repository: create %w", err)
	}

	return nil
}

// GetByID возвращает администратора по идентификатору.
func (r *AdminUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	user, err := common.GetByField[models.AdminUser](ctx, r.db, `SELECT `+adminColumns+` FROM admin_users`, "id", id, ErrAdminNotFound)
	if err != nil && !errors.Is(err, ErrAdminNotFound) {
		return nil, fmt.Errorf("admin repository: %w", err)
	}
	return user, err
}

// GetByEmail возвращает администратора по email.
func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	user, err := common.GetByField[models.AdminUser](ctx, r.db, `SELECT `+adminColumns+` FROM admin_users`, "email", email, ErrAdminNotFound)
	if err != nil && !errors.Is(err, ErrAdminNotFound) {
		return nil, fmt.Errorf("admin repository: %w", err)
	}
	return user, err
}

// List возвращает всех администраторов, новые сверху.
func (r *AdminUserRepository) List(ctx context.Context) ([]models.AdminUser, error) {
	var users []models.AdminUser
	query := `SELECT ` + adminColumns + ` FROM admin_users ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("admin repository: list %w", err)
	}
	return users, nil
}

// Update сохраняет изменяемые поля администратора.
func (r *AdminUserRepository) Update(ctx context.Context, user *models.AdminUser) error {
	query := `
		UPDATE admin_users
		SET full_name = $2, email = $3, phone = $4, password_hash = $5, role = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.ID, user.FullName, user.Email, user.Phone, user.PasswordHash, user.Role, user.Active,
	).Scan(&user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAdminNotFound
		}
		if errors.Is(common.TranslatePQ(err), common.ErrAlreadyExists) {
			return ErrAdminEmailTaken
		}
		return fmt.Errorf("admin repository: update %w", err)
	}

	return nil
}

// Delete удаляет администратора вместе с его сессиями.
func (r *AdminUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("admin repository: delete %w", err)
	}
	return common.CheckAffected(res, ErrAdminNotFound)
}

// Count возвращает общее количество администраторов.
func (r *AdminUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admin_users`); err != nil {
		return 0, fmt.Errorf("admin repository: count %w", err)
	}
	return count, nil
}

// CountActiveSuperAdmins возвращает количество активных super-admin.
func (r *AdminUserRepository) CountActiveSuperAdmins(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM admin_users WHERE role = $1 AND is_active = TRUE`
	if err := r.db.GetContext(ctx, &count, query, models.RoleSuperAdmin); err != nil {
		return 0, fmt.Errorf("admin repository: count super admins %w", err)
	}
	return count, nil
}

// UpdateLastLoginAt обновляет время последнего входа.
func (r *AdminUserRepository) UpdateLastLoginAt(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE admin_users SET last_login_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("admin repository: update last login at %w", err)
	}
	return nil
}

// CreateSession сохраняет новую сессию.
func (r *AdminUserRepository) CreateSession(ctx context.Context, session *models.AdminSession) error {
	query := `
		INSERT INTO admin_sessions (admin_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		session.AdminID, session.RefreshToken, session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("admin repository: create session %w", err)
	}

	return nil
}

// GetSession возвращает не истёкшую сессию по refresh токену.
func (r *AdminUserRepository) GetSession(ctx context.Context, refreshToken string) (*models.AdminSession, error) {
	var session models.AdminSession
	query := `
		SELECT id, admin_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM admin_sessions
		WHERE refresh_token = $1 AND expires_at > NOW()
	`
	if err := r.db.GetContext(ctx, &session, query, refreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("admin repository: get session %w", err)
	}
	return &session, nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *AdminUserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("admin repository: delete session %w", err)
	}
	return nil
}

// DeleteSessionsByAdmin завершает все сессии администратора (при отключении учётной записи).
func (r *AdminUserRepository) DeleteSessionsByAdmin(ctx context.Context, adminID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE admin_id = $1`, adminID); err != nil {
		return fmt.Errorf("admin repository: delete sessions by admin %w", err)
	}
	return nil
}
