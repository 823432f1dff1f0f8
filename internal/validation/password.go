package validation

import (
	"fmt"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	// bcrypt учитывает только первые 72 байта
	MaxPasswordBytes = 72
)

// ValidatePassword проверяет пароль администратора или каталога.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("пароль слишком длинный")
	}
	return nil
}
