package common

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
)

// NullableUUID различает отсутствующее поле, null (или "") и значение.
// Set выставляется, только если поле было в JSON.
type NullableUUID struct {
	Set     bool
	Value   *uuid.UUID
	invalid bool
}

func (n *NullableUUID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		n.invalid = true
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		n.invalid = true
		return nil
	}
	n.Value = &id
	return nil
}

// Validate возвращает ошибку валидации поля, если значение не UUID.
func (n NullableUUID) Validate(field string) error {
	if n.invalid {
		return apperror.Validation(field, "неверный формат UUID")
	}
	return nil
}

// OrNil возвращает значение для полей, где отсутствие и null равнозначны.
func (n NullableUUID) OrNil() *uuid.UUID {
	return n.Value
}
