package shop

import (
	"context"
	"encoding/json"
	"net/http"

	"shoplist/internal/api/respond"
	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
	"shoplist/internal/pkg/middleware"
)

// CatalogService is the slice of the catalog layer the shop handlers need.
type CatalogService interface {
	ListShops(ctx context.Context) ([]domain.Shop, error)
	CreateShop(ctx context.Context, actor domain.User, shop domain.Shop) (domain.Shop, error)
}

// payload is the shop write body.
type payload struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Handler groups the shop API handlers.
type Handler struct {
	Service CatalogService
	Logger  logger.Logger
}

// NewHandler creates the shop API handler.
func NewHandler(svc CatalogService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// List handles GET /api/v1/shops.
// @Summary List shops
// @Tags shops
// @Produce json
// @Success 200 {array} domain.Shop
// @Failure 401 {object} domain.ErrorResponse
// @Router /shops [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	shops, err := h.Service.ListShops(r.Context())
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, shops)
}

// Create handles POST /api/v1/shops.
// @Summary Create a shop
// @Description Staff-only administrative operation.
// @Tags shops
// @Accept json
// @Produce json
// @Param shop body payload true "shop fields"
// @Success 201 {object} domain.Shop
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Router /shops [post]
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

	created, err := h.Service.CreateShop(r.Context(), actor, domain.Shop{Name: p.Name, Address: p.Address})
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}
