package service

import (
	"errors"

	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/repository"
)

// repoErrors переводит ошибки репозиториев в ошибки уровня приложения.
var repoErrors = []struct {
	err    error
	appErr *apperror.AppError
}{
	{repository.ErrAdminNotFound, apperror.NotFound("администратор не найден")},
	{repository.ErrAdminEmailTaken, apperror.New(apperror.ErrCodeConflict, "администратор с таким email уже существует")},
	{repository.ErrCategoryNotFound, apperror.NotFound("категория не найдена")},
	{repository.ErrCategoryParentMissing, apperror.Validation("parentId", "родительская категория не найдена")},
	{repository.ErrCategoryInUse, apperror.Dependency("категория используется подкатегориями или товарами")},
	{repository.ErrProductNotFound, apperror.NotFound("товар не найден")},
	{repository.ErrProductImageNotFound, apperror.NotFound("изображение не найдено")},
	{repository.ErrProductCategory, apperror.Validation("categoryId", "категория не найдена")},
	{repository.ErrCustomerNotFound, apperror.NotFound("клиент не найден")},
	{repository.ErrCustomerEmailTaken, apperror.New(apperror.ErrCodeConflict, "клиент с таким email уже существует")},
	{repository.ErrCustomerInUse, apperror.Dependency("у клиента есть каталоги или запросы")},
	{repository.ErrCatalogNotFound, apperror.NotFound("каталог не найден")},
	{repository.ErrCatalogCustomer, apperror.Validation("customerId", "клиент не найден")},
	{repository.ErrCatalogProducts, apperror.Validation("productIds", "некоторые товары не найдены")},
	{repository.ErrInquiryNotFound, apperror.NotFound("запрос не найден")},
	{repository.ErrInquiryRef, apperror.Validation("customerId", "клиент или каталог не найден")},
}

// mapRepoErr возвращает AppError для известных ошибок репозитория,
// остальные ошибки оборачиваются как внутренние.
func mapRepoErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	for _, m := range repoErrors {
		if errors.Is(err, m.err) {
			appErr := *m.appErr
			appErr.Cause = err
			return &appErr
		}
	}
	return apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
}
