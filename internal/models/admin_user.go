package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser описывает администратора каталога.
type AdminUser struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	FullName     string     `db:"full_name" json:"fullName"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	Active       bool       `db:"is_active" json:"active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsSuperAdmin сообщает, есть ли у администратора полный доступ.
func (u *AdminUser) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// AdminSession сохранённый refresh токен администратора.
type AdminSession struct {
	ID           uuid.UUID `db:"id" json:"id"`
	AdminID      uuid.UUID `db:"admin_id" json:"adminId"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	UserAgent    *string   `db:"user_agent" json:"userAgent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ipAddress,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
