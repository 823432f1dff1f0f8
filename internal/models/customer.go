package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer клиент, для которого собираются каталоги.
type Customer struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Region       *string   `db:"region" json:"region,omitempty"`
	Active       bool      `db:"is_active" json:"active"`
	CatalogCount int       `db:"catalog_count" json:"catalogCount"`
	InquiryCount int       `db:"inquiry_count" json:"inquiryCount"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// CustomerFilter параметры выборки клиентов.
type CustomerFilter struct {
	Active *bool
	Query  string
	Limit  int
	Offset int
}

// Inquiry запрос клиента.
type Inquiry struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	CustomerID    uuid.UUID  `db:"customer_id" json:"customerId"`
	CustomerName  string     `db:"customer_name" json:"-"`
	CustomerEmail string     `db:"customer_email" json:"-"`
	Customer      *Ref       `db:"-" json:"customer,omitempty"`
	CatalogID     *uuid.UUID `db:"catalog_id" json:"catalogId,omitempty"`
	CatalogName   *string    `db:"catalog_name" json:"catalogName,omitempty"`
	ProductName   *string    `db:"product_name" json:"productName,omitempty"`
	Message       string     `db:"message" json:"message"`
	Priority      string     `db:"priority" json:"priority"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// InquiryFilter параметры выборки запросов.
type InquiryFilter struct {
	Status     string
	Priority   string
	CustomerID *uuid.UUID
	Limit      int
	Offset     int
}
