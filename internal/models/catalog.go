package models

import (
	"time"

	"github.com/google/uuid"
)

// Ref краткая ссылка на связанную сущность в ответах API.
type Ref struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

// Catalog подборка товаров для конкретного клиента.
type Catalog struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	CustomerID    uuid.UUID   `db:"customer_id" json:"customerId"`
	CustomerName  string      `db:"customer_name" json:"-"`
	CustomerEmail string      `db:"customer_email" json:"-"`
	Customer      *Ref        `db:"-" json:"customer,omitempty"`
	PasswordHash  *string     `db:"password_hash" json:"-"`
	HasPassword   bool        `db:"has_password" json:"hasPassword"`
	Active        bool        `db:"is_active" json:"active"`
	Views         int         `db:"views" json:"views"`
	ProductCount  int         `db:"product_count" json:"productCount"`
	InquiryCount  int         `db:"inquiry_count" json:"inquiryCount"`
	ProductIDs    []uuid.UUID `db:"-" json:"productIds"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`
}

// PublicCatalog то, что видит клиент после открытия каталога.
type PublicCatalog struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Customer string    `json:"customer"`
	Products []Product `json:"products"`
}

// CatalogFilter параметры выборки каталогов.
type CatalogFilter struct {
	CustomerID *uuid.UUID
	Active     *bool
	Query      string
	Limit      int
	Offset     int
}
