package product

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"shoplist/internal/api/respond"
	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
	"shoplist/internal/pkg/middleware"
)

// CatalogService is the slice of the catalog layer the API handlers need.
type CatalogService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.Page, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	CreateProduct(ctx context.Context, actor domain.User, product domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, actor domain.User, product domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, actor domain.User, id int64) error
}

// payload is the product write body for the JSON API.
type payload struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	ShopID      int64           `json:"shop_id"`
}

// Handler groups the product API handlers.
type Handler struct {
	Service CatalogService
	Logger  logger.Logger
}

// NewHandler creates the product API handler.
func NewHandler(svc CatalogService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// List handles GET /api/v1/products.
// @Summary List products
// @Description Paginated product listing with free-text and shop filters.
// @Tags products
// @Produce json
// @Param q query string false "case-insensitive substring matched against name and description"
// @Param shop query int false "shop identifier"
// @Param page query int false "1-indexed page number"
// @Success 200 {object} domain.Page
// @Failure 401 {object} domain.ErrorResponse
// @Router /products [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{Query: q.Get("q")}
	if shopID, err := strconv.ParseInt(q.Get("shop"), 10, 64); err == nil {
		filter.ShopID = shopID
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}

	page, err := h.Service.ListProducts(r.Context(), filter)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

// Get handles GET /api/v1/products/{id}.
// @Summary Get one product
// @Tags products
// @Produce json
// @Param id path int true "product identifier"
// @Success 200 {object} domain.Product
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, h.Logger, apperror.NewNotFoundError("invalid product identifier"))
		return
	}

	product, err := h.Service.GetProduct(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, product)
}

// Create handles POST /api/v1/products.
// @Summary Create a product
// @Description Requires a manager role. Price must be greater than zero.
// @Tags products
// @Accept json
// @Produce json
// @Param product body payload true "product fields"
// @Success 201 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Router /products [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond.Error(w, h.Logger, apperror.NewUnauthorizedError("authentication required"))
		return
	}

	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respond.Error(w, h.Logger, apperror.NewValidationError("invalid JSON payload"))
		return
	}

	created, err := h.Service.CreateProduct(r.Context(), actor, domain.Product{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		ShopID:      p.ShopID,
	})
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/v1/products/{id}.
// @Summary Update a product
// @Description Requires a manager role. Unknown identifiers yield 404.
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "product identifier"
// @Param product body payload true "product fields"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond.Error(w, h.Logger, apperror.NewUnauthorizedError("authentication required"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, h.Logger, apperror.NewNotFoundError("invalid product identifier"))
		return
	}

	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respond.Error(w, h.Logger, apperror.NewValidationError("invalid JSON payload"))
		return
	}

	updated, err := h.Service.UpdateProduct(r.Context(), actor, domain.Product{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		ShopID:      p.ShopID,
	})
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/products/{id}.
// @Summary Delete a product
// @Description Requires a manager role.
// @Tags products
// @Produce json
// @Param id path int true "product identifier"
// @Success 204 "deleted"
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond.Error(w, h.Logger, apperror.NewUnauthorizedError("authentication required"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, h.Logger, apperror.NewNotFoundError("invalid product identifier"))
		return
	}

	if err := h.Service.DeleteProduct(r.Context(), actor, id); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusNoContent, nil)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
