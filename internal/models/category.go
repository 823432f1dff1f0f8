package models

import (
	"time"

	"github.com/google/uuid"
)

// Category узел иерархии категорий украшений.
// Level не хранится в базе и вычисляется по цепочке родителей при каждом чтении.
type Category struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Description      *string    `db:"description" json:"description"`
	ParentID         *uuid.UUID `db:"parent_id" json:"parentId"`
	Active           bool       `db:"is_active" json:"active"`
	Level            int        `db:"-" json:"level"`
	SubcategoryCount int        `db:"subcategory_count" json:"subcategoryCount"`
	ProductCount     int        `db:"product_count" json:"productCount"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// CategoryNode категория с вложенными подкатегориями для древовидного ответа.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}
