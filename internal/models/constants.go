package models

// Роли администраторов
const (
	RoleSuperAdmin = "super-admin"
	RoleSubAdmin   = "sub-admin"
)

// Статусы запросов
const (
	InquiryStatusPending   = "pending"
	InquiryStatusResponded = "responded"
	InquiryStatusClosed    = "closed"
)

// Приоритеты запросов
const (
	InquiryPriorityLow    = "low"
	InquiryPriorityMedium = "medium"
	InquiryPriorityHigh   = "high"
)

// Типы записей в ленте активности
const (
	ActivityCatalog  = "catalog"
	ActivityInquiry  = "inquiry"
	ActivityProduct  = "product"
	ActivityCustomer = "customer"
	ActivityCategory = "category"
	ActivityAdmin    = "admin"
)

// Действия в ленте активности
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ValidRoles список допустимых ролей
var ValidRoles = map[string]struct{}{
	RoleSuperAdmin: {},
	RoleSubAdmin:   {},
}
