package common

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// Общие ошибки для всех репозиториев
var (
	ErrAlreadyExists = errors.New("entity already exists")
	ErrReferenced    = errors.New("entity is referenced by other rows")
	ErrBrokenRef     = errors.New("referenced entity does not exist")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// TranslatePQ переводит ошибки ограничений Postgres в общие ошибки репозитория.
// Остальные ошибки возвращаются без изменений.
func TranslatePQ(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pqUniqueViolation:
		return errors.Join(ErrAlreadyExists, err)
	case pqForeignKeyViolation:
		// при DELETE нарушение означает, что на строку ссылаются,
		// при INSERT/UPDATE что ссылка ведёт в никуда
		if strings.HasPrefix(pqErr.Message, "update or delete on table") {
			return errors.Join(ErrReferenced, err)
		}
		return errors.Join(ErrBrokenRef, err)
	}
	return err
}
