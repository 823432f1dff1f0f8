package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
)

// Константы валидации
const (
	MinNameLength             = 2
	MaxNameLength             = 200
	MaxShortDescriptionLength = 100
	MinLongDescriptionLength  = 10
	MaxLongDescriptionLength  = 5000
	MaxDescriptionLength      = 2000
	MinPhoneLength            = 10
	MaxPhoneLength            = 20
	MaxRegionLength           = 100
	MaxMessageLength          = 5000
	MaxPrice                  = 100000000.0
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	phoneRegex       = regexp.MustCompile(`^\+?[0-9\s\-()]+$`)
)

// Errors накапливает ошибки по полям и превращает их в одну ошибку валидации.
type Errors map[string]string

// Check записывает ошибку поля, если err не nil и для поля ещё нет ошибки.
func (e Errors) Check(field string, err error) {
	if err == nil {
		return
	}
	if _, exists := e[field]; !exists {
		e[field] = err.Error()
	}
}

// Err возвращает *apperror.AppError или nil, если ошибок нет.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	if len(e) == 1 {
		for field, msg := range e {
			return apperror.Validation(field, msg)
		}
	}
	return apperror.ValidationFields(map[string]string(e))
}

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должно быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должно быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateName проверяет название сущности после обрезки пробелов.
func ValidateName(fieldName, value string) error {
	return ValidateLength(fieldName, strings.TrimSpace(value), MinNameLength, MaxNameLength)
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return fmt.Errorf("некорректный формат email")
	}
	if len(local) == 0 || len(local) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domain) == 0 || len(domain) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(local) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domain) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePhone проверяет телефон: не короче 10 символов, только цифры и разделители.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if err := ValidateLength("телефон", phone, MinPhoneLength, MaxPhoneLength); err != nil {
		return err
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("телефон содержит недопустимые символы")
	}
	return nil
}

// ValidateOptional проверяет необязательное текстовое поле на максимальную длину.
func ValidateOptional(fieldName string, value *string, max int) error {
	if value == nil {
		return nil
	}
	return ValidateLength(fieldName, strings.TrimSpace(*value), 0, max)
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidatePrice проверяет базовую цену: строго больше нуля.
func ValidatePrice(price float64) error {
	if price <= 0 {
		return fmt.Errorf("цена должна быть больше нуля")
	}
	if price > MaxPrice {
		return fmt.Errorf("цена не может превышать %.0f", MaxPrice)
	}
	return nil
}

// ValidatePercentage проверяет процент скидки в диапазоне 0..100.
func ValidatePercentage(p float64) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("скидка должна быть от 0 до 100")
	}
	return nil
}

// TrimPtr обрезает пробелы и превращает пустую строку в nil.
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
