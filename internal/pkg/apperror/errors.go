package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
)

// AppError ошибка уровня приложения, которая знает свой HTTP статус.
// Fields заполняется для ошибок валидации: имя поля -> сообщение.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Fields     map[string]string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал с предопределёнными ошибками.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation создаёт ошибку валидации для одного поля.
func Validation(field, message string) *AppError {
	return &AppError{
		Code:       ErrCodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Fields:     map[string]string{field: message},
	}
}

// ValidationFields создаёт ошибку валидации сразу для нескольких полей.
func ValidationFields(fields map[string]string) *AppError {
	return &AppError{
		Code:       ErrCodeValidation,
		Message:    "ошибка валидации",
		HTTPStatus: http.StatusBadRequest,
		Fields:     fields,
	}
}

// Dependency сообщает, что операция нарушает ссылочную целостность
// (например, удаление категории с подкатегориями).
func Dependency(message string) *AppError {
	return New(ErrCodeConflict, message)
}

// NotFound создаёт ошибку отсутствия сущности.
func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// As достаёт AppError из цепочки ошибок.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeValidation
}

func IsConflict(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeConflict
}

var (
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden          = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверные учетные данные")
	ErrAccountDisabled    = New(ErrCodeForbidden, "учётная запись отключена")
	ErrInvalidToken       = New(ErrCodeUnauthorized, "недействительный токен")
	ErrWrongPassword      = New(ErrCodeUnauthorized, "неверный пароль каталога")
)
