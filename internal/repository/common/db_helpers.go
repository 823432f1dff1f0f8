package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// GetByField - универсальная функция для получения сущности по любому полю.
// Запрос строится из selectQuery с добавлением условия WHERE field = $1.
func GetByField[T any](ctx context.Context, q sqlx.QueryerContext, selectQuery, field string, value interface{}, notFoundErr error) (*T, error) {
	var entity T
	query := fmt.Sprintf("%s WHERE %s = $1", selectQuery, field)

	if err := sqlx.GetContext(ctx, q, &entity, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("get by %s: %w", field, err)
	}

	return &entity, nil
}

// CheckAffected возвращает notFoundErr, если запрос не затронул ни одной строки.
func CheckAffected(res sql.Result, notFoundErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}

// Where собирает условия фильтрации и позиционные аргументы для них.
type Where struct {
	conds []string
	args  []interface{}
}

// Add добавляет условие с одним аргументом. Каждый ? в cond заменяется на один и тот же $N.
func (w *Where) Add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

// SQL возвращает " WHERE ..." или пустую строку.
func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// Args возвращает аргументы условий.
func (w *Where) Args() []interface{} {
	return w.args
}

// Next возвращает номер следующего плейсхолдера.
func (w *Where) Next() int {
	return len(w.args) + 1
}

// BatchInserter накапливает строки и вставляет их одним запросом.
type BatchInserter struct {
	tx          *sqlx.Tx
	query       string
	batchSize   int
	values      []interface{}
	rowCount    int
	fieldsCount int
}

// NewBatchInserter создает новый batch inserter
func NewBatchInserter(tx *sqlx.Tx, baseQuery string, fieldsCount int, batchSize int) *BatchInserter {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BatchInserter{
		tx:          tx,
		query:       baseQuery,
		batchSize:   batchSize,
		values:      make([]interface{}, 0, batchSize*fieldsCount),
		fieldsCount: fieldsCount,
	}
}

// Add добавляет строку для вставки
func (bi *BatchInserter) Add(ctx context.Context, rowValues ...interface{}) error {
	if len(rowValues) != bi.fieldsCount {
		return fmt.Errorf("expected %d fields, got %d", bi.fieldsCount, len(rowValues))
	}

	bi.values = append(bi.values, rowValues...)
	bi.rowCount++

	if bi.rowCount >= bi.batchSize {
		return bi.Flush(ctx)
	}

	return nil
}

// Flush выполняет вставку накопленных значений
func (bi *BatchInserter) Flush(ctx context.Context) error {
	if bi.rowCount == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(bi.query)
	sb.WriteString(" VALUES ")
	for i := 0; i < bi.rowCount; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < bi.fieldsCount; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*bi.fieldsCount+j+1)
		}
		sb.WriteString(")")
	}

	if _, err := bi.tx.ExecContext(ctx, sb.String(), bi.values...); err != nil {
		return fmt.Errorf("batch insert: %w", err)
	}

	bi.values = bi.values[:0]
	bi.rowCount = 0

	return nil
}

// WithTransaction выполняет функцию внутри транзакции с правильной обработкой ошибок
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
