package models

import (
	"time"

	"github.com/google/uuid"
)

// Product товар каталога. FinalPrice считается из BasePrice и OfferPercentage.
type Product struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	ShortDescription string         `db:"short_description" json:"shortDescription"`
	LongDescription  string         `db:"long_description" json:"longDescription"`
	BasePrice        float64        `db:"base_price" json:"basePrice"`
	OfferPercentage  float64        `db:"offer_percentage" json:"offerPercentage"`
	FinalPrice       float64        `db:"-" json:"finalPrice"`
	CategoryID       uuid.UUID      `db:"category_id" json:"categoryId"`
	CategoryName     string         `db:"category_name" json:"-"`
	Category         *Ref           `db:"-" json:"category,omitempty"`
	Active           bool           `db:"is_active" json:"active"`
	Images           []ProductImage `db:"-" json:"images"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

// ProductImage загруженное изображение товара.
type ProductImage struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ProductID    uuid.UUID `db:"product_id" json:"productId"`
	FilePath     string    `db:"file_path" json:"-"`
	URL          string    `db:"-" json:"url"`
	OriginalName string    `db:"original_name" json:"originalName"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	SizeBytes    int64     `db:"size_bytes" json:"sizeBytes"`
	Position     int       `db:"position" json:"position"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// ProductFilter параметры выборки товаров.
type ProductFilter struct {
	CategoryID *uuid.UUID
	Active     *bool
	Query      string
	Limit      int
	Offset     int
}
