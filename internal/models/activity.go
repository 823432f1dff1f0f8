package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity запись ленты активности админки.
type Activity struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Type      string     `db:"type" json:"type"`
	Action    string     `db:"action" json:"action"`
	EntityID  *uuid.UUID `db:"entity_id" json:"entityId,omitempty"`
	Message   string     `db:"message" json:"message"`
	ActorID   *uuid.UUID `db:"actor_id" json:"actorId,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

// DashboardStats счётчики для главной страницы админки.
type DashboardStats struct {
	TotalCustomers     int `db:"total_customers" json:"totalCustomers"`
	ActiveCustomers    int `db:"active_customers" json:"activeCustomers"`
	TotalProducts      int `db:"total_products" json:"totalProducts"`
	ActiveProducts     int `db:"active_products" json:"activeProducts"`
	TotalCategories    int `db:"total_categories" json:"totalCategories"`
	RootCategories     int `db:"root_categories" json:"rootCategories"`
	ActiveCategories   int `db:"active_categories" json:"activeCategories"`
	TotalCatalogs      int `db:"total_catalogs" json:"totalCatalogs"`
	LiveCatalogs       int `db:"live_catalogs" json:"liveCatalogs"`
	TotalInquiries     int `db:"total_inquiries" json:"totalInquiries"`
	PendingInquiries   int `db:"pending_inquiries" json:"pendingInquiries"`
	RespondedInquiries int `db:"responded_inquiries" json:"respondedInquiries"`
	ClosedInquiries    int `db:"closed_inquiries" json:"closedInquiries"`
}
