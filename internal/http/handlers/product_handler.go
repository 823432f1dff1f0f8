package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/http/handlers/common"
	"github.com/ignatzorin/zipzag-catalog/internal/http/response"
	"github.com/ignatzorin/zipzag-catalog/internal/models"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
)

// запас на заголовки multipart поверх самого файла
const multipartOverhead = 1 << 20

// ProductService операции над товарами и их изображениями.
type ProductService interface {
	Create(ctx context.Context, in service.ProductInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, int, error)
	Update(ctx context.Context, id uuid.UUID, patch service.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddImage(ctx context.Context, productID uuid.UUID, originalName string, r io.Reader) (*models.ProductImage, error)
	DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error
}

type ProductHandler struct {
	products       ProductService
	maxUploadBytes int64
}

func NewProductHandler(products ProductService, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{products: products, maxUploadBytes: maxUploadBytes}
}

// List обрабатывает GET /products?categoryId=&active=&q=&limit=&offset=.
func (h *ProductHandler) List(c *gin.Context) {
	categoryID, err := common.ParseUUIDQuery(c, "categoryId")
	if err != nil {
		response.Error(c, err)
		return
	}
	active, err := common.ParseBoolQuery(c, "active")
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, offset := common.GetPagination(c)

	items, total, err := h.products.List(c.Request.Context(), models.ProductFilter{
		CategoryID: categoryID,
		Active:     active,
		Query:      c.Query("q"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, limit, offset)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, product)
}

// Create обрабатывает POST /products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req struct {
		Name             string              `json:"name"`
		ShortDescription string              `json:"shortDescription"`
		LongDescription  string              `json:"longDescription"`
		BasePrice        float64             `json:"basePrice"`
		OfferPercentage  float64             `json:"offerPercentage"`
		CategoryID       common.NullableUUID `json:"categoryId"`
		Active           *bool               `json:"active"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := req.CategoryID.Validate("categoryId"); err != nil {
		response.Error(c, err)
		return
	}

	in := service.ProductInput{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		BasePrice:        req.BasePrice,
		OfferPercentage:  req.OfferPercentage,
		Active:           req.Active,
	}
	if req.CategoryID.Value != nil {
		in.CategoryID = *req.CategoryID.Value
	}

	product, err := h.products.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, product)
}

// Update обрабатывает PUT /products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		Name             *string             `json:"name"`
		ShortDescription *string             `json:"shortDescription"`
		LongDescription  *string             `json:"longDescription"`
		BasePrice        *float64            `json:"basePrice"`
		OfferPercentage  *float64            `json:"offerPercentage"`
		CategoryID       common.NullableUUID `json:"categoryId"`
		Active           *bool               `json:"active"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := req.CategoryID.Validate("categoryId"); err != nil {
		response.Error(c, err)
		return
	}
	// товар не может остаться без категории
	if req.CategoryID.Set && req.CategoryID.Value == nil {
		response.Error(c, apperror.Validation("categoryId", "категория обязательна"))
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, service.ProductPatch{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		BasePrice:        req.BasePrice,
		OfferPercentage:  req.OfferPercentage,
		CategoryID:       req.CategoryID.Value,
		Active:           req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Товар удалён")
}

// UploadImage обрабатывает POST /products/:id/images (multipart, поле file).
// Тип файла проверяется по сигнатуре в хранилище, расширению не доверяем.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.Validation("file", "файл слишком большой"))
			return
		}
		response.Error(c, apperror.Validation("file", "файл обязателен"))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		response.Error(c, apperror.Validation("file", "файл слишком большой"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось прочитать файл"))
		return
	}
	defer file.Close()

	image, err := h.products.AddImage(c.Request.Context(), id, fileHeader.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, image)
}

// DeleteImage обрабатывает DELETE /products/:id/images/:imageId.
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	imageID, err := common.ParseUUIDParam(c, "imageId")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.products.DeleteImage(c.Request.Context(), id, imageID); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Изображение удалено")
}
