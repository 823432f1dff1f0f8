package handlers

import (
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
)

func fieldError(field string, err error) error {
	return apperror.Validation(field, err.Error())
}

var (
	_ AuthService      = (*service.AuthService)(nil)
	_ AdminUserService = (*service.AdminUserService)(nil)
	_ CategoryService  = (*service.CategoryService)(nil)
	_ ProductService   = (*service.ProductService)(nil)
	_ CustomerService  = (*service.CustomerService)(nil)
	_ CatalogService   = (*service.CatalogService)(nil)
	_ InquiryService   = (*service.InquiryService)(nil)
	_ DashboardService = (*service.DashboardService)(nil)
)
