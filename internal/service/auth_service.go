package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/repository"
	"github.com/ignatzorin/zipzag-catalog/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	UpdateLastLoginAt(ctx context.Context, id uuid.UUID) error
	CreateSession(ctx context.Context, session *models.AdminSession) error
	GetSession(ctx context.Context, refreshToken string) (*models.AdminSession, error)
	DeleteSession(ctx context.Context, refreshToken string) error
}

// AuthService инкапсулирует вход, обновление токенов и выход администраторов.
type AuthService struct {
	repo         AuthRepository
	tokenManager *TokenManager
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// SessionMeta данные клиента, сохраняемые вместе с сессией.
type SessionMeta struct {
	UserAgent string
	IP        string
}

// AuthResult возвращает итог авторизации.
type AuthResult struct {
	User   *models.AdminUser `json:"user"`
	Tokens *TokenPair        `json:"tokens"`
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
	}
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta SessionMeta) (*AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Validation("email", err.Error())
	}
	if in.Password == "" {
		return nil, apperror.Validation("password", "пароль обязателен")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, mapRepoErr(err)
	}

	if !CheckPassword(user.PasswordHash, in.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	// пароль проверяем раньше, чтобы не раскрывать существование отключённых учёток
	if !user.Active {
		return nil, apperror.ErrAccountDisabled
	}

	if err := s.repo.UpdateLastLoginAt(ctx, user.ID); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"admin_id": user.ID,
			"error":    err.Error(),
		}).Warn("auth service: не удалось обновить last_login_at")
	}

	tokens, err := s.issue(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh выпускает новую пару токенов и отзывает использованный refresh токен.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, meta SessionMeta) (*AuthResult, error) {
	claims, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	adminID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	session, err := s.repo.GetSession(ctx, oldToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, apperror.New(apperror.ErrCodeUnauthorized, "сессия не найдена или истекла")
		}
		return nil, mapRepoErr(err)
	}
	if session.AdminID != adminID {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, apperror.ErrInvalidToken
		}
		return nil, mapRepoErr(err)
	}
	if !user.Active {
		return nil, apperror.ErrAccountDisabled
	}

	if err := s.repo.DeleteSession(ctx, oldToken); err != nil {
		return nil, mapRepoErr(err)
	}

	tokens, err := s.issue(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Logout удаляет сессию. Неизвестный токен не считается ошибкой.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperror.Validation("refreshToken", "refresh токен обязателен")
	}
	return mapRepoErr(s.repo.DeleteSession(ctx, refreshToken))
}

// Me возвращает текущего администратора.
func (s *AuthService) Me(ctx context.Context, adminID uuid.UUID) (*models.AdminUser, error) {
	user, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, mapRepoErr(err)
	}
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.AdminUser, meta SessionMeta) (*TokenPair, error) {
	tokens, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}

	session := &models.AdminSession{
		AdminID:      user.ID,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    refreshExp,
	}
	if meta.UserAgent != "" {
		session.UserAgent = &meta.UserAgent
	}
	if meta.IP != "" {
		session.IPAddress = &meta.IP
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, mapRepoErr(fmt.Errorf("auth service: %w", err))
	}
	return tokens, nil
}

// HashPassword хеширует пароль через bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("не удалось захешировать пароль: %w", err)
	}
	return string(hash), nil
}

// CheckPassword сравнивает пароль с bcrypt хешем.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
