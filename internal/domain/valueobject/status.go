package valueobject

import (
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
)

type InquiryStatus string

const (
	InquiryStatusPending   InquiryStatus = models.InquiryStatusPending
	InquiryStatusResponded InquiryStatus = models.InquiryStatusResponded
	InquiryStatusClosed    InquiryStatus = models.InquiryStatusClosed
)

func (s InquiryStatus) IsValid() bool {
	switch s {
	case InquiryStatusPending, InquiryStatusResponded, InquiryStatusClosed:
		return true
	}
	return false
}

// CanTransitionTo всегда true для допустимого статуса: переходы между статусами не ограничены.
func (s InquiryStatus) CanTransitionTo(next InquiryStatus) bool {
	return next.IsValid()
}

// NewInquiryStatus разбирает статус; пустая строка даёт pending.
func NewInquiryStatus(status string) (InquiryStatus, error) {
	if status == "" {
		return InquiryStatusPending, nil
	}
	s := InquiryStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("status", "некорректный статус запроса")
	}
	return s, nil
}

type InquiryPriority string

const (
	InquiryPriorityLow    InquiryPriority = models.InquiryPriorityLow
	InquiryPriorityMedium InquiryPriority = models.InquiryPriorityMedium
	InquiryPriorityHigh   InquiryPriority = models.InquiryPriorityHigh
)

func (p InquiryPriority) IsValid() bool {
	switch p {
	case InquiryPriorityLow, InquiryPriorityMedium, InquiryPriorityHigh:
		return true
	}
	return false
}

// NewInquiryPriority разбирает приоритет; пустая строка даёт medium.
func NewInquiryPriority(priority string) (InquiryPriority, error) {
	if priority == "" {
		return InquiryPriorityMedium, nil
	}
	p := InquiryPriority(priority)
	if !p.IsValid() {
		return "", apperror.Validation("priority", "некорректный приоритет запроса")
	}
	return p, nil
}

type AdminRole string

const (
	RoleSuperAdmin AdminRole = models.RoleSuperAdmin
	RoleSubAdmin   AdminRole = models.RoleSubAdmin
)

func NewAdminRole(role string) (AdminRole, error) {
	r := AdminRole(role)
	if _, ok := models.ValidRoles[role]; !ok {
		return "", apperror.Validation("role", "некорректная роль администратора")
	}
	return r, nil
}
