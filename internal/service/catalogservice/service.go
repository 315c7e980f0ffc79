package catalogservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
)

// Service implements the catalog business logic: the authorization
// predicate for product mutations, the field validations, and the filtered,
// paginated listing.
type Service struct {
	products domain.ProductRepository
	shops    domain.ShopRepository
	managers domain.RoleSet
	pageSize int
	logger   logger.Logger
}

// NewService creates the catalog service. managers is the single role set
// consulted for every product mutation; pageSize bounds the listing pages.
func NewService(products domain.ProductRepository, shops domain.ShopRepository, managers domain.RoleSet, pageSize int, log logger.Logger) *Service {
	if pageSize < 1 {
		pageSize = 6
	}
	return &Service{
		products: products,
		shops:    shops,
		managers: managers,
		pageSize: pageSize,
		logger:   log,
	}
}

// ListProducts returns the filtered, paginated product collection. An
// out-of-range page number clamps to the nearest valid page; an empty
// result set is page 1 of 1, never an error.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.Page, error) {
	filter.Query = strings.TrimSpace(filter.Query)

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		s.logger.Error("failed to count products", err)
		return domain.Page{}, err
	}

	totalPages := domain.TotalPages(total, s.pageSize)
	page := domain.ClampPage(filter.Page, totalPages)

	items, err := s.products.FindAll(ctx, filter, (page-1)*s.pageSize, s.pageSize)
	if err != nil {
		s.logger.Error("failed to list products", err)
		return domain.Page{}, err
	}

	return domain.Page{
		Items:      items,
		Number:     page,
		PageSize:   s.pageSize,
		TotalPages: totalPages,
		TotalItems: total,
		Query:      filter.Query,
		ShopID:     filter.ShopID,
	}, nil
}

// GetProduct fetches one product by identifier.
func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

// ListShops returns all shops, for the listing page's filter control.
func (s *Service) ListShops(ctx context.Context) ([]domain.Shop, error) {
	return s.shops.FindAll(ctx)
}

// CreateProduct validates and persists a new product on behalf of actor.
// Callers outside the manager role set are rejected before any write.
func (s *Service) CreateProduct(ctx context.Context, actor domain.User, product domain.Product) (domain.Product, error) {
	if !s.managers.CanManage(actor) {
		return domain.Product{}, apperror.NewForbiddenError("only managers may create products")
	}

	if err := s.validateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	product.Price = product.Price.Round(2)

	created, err := s.products.Save(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("product created", map[string]interface{}{
		"product_id": created.ID,
		"shop_id":    created.ShopID,
		"user_id":    actor.ID,
	})
	return created, nil
}

// UpdateProduct validates and persists changes to an existing product.
// A missing identifier is a not-found error; a submitted empty image keeps
// the stored one.
func (s *Service) UpdateProduct(ctx context.Context, actor domain.User, product domain.Product) (domain.Product, error) {
	if !s.managers.CanManage(actor) {
		return domain.Product{}, apperror.NewForbiddenError("only managers may edit products")
	}

	existing, err := s.products.FindByID(ctx, product.ID)
	if err != nil {
		return domain.Product{}, err
	}

	if err := s.validateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	if product.Image == "" {
		product.Image = existing.Image
	}
	product.Price = product.Price.Round(2)
	product.CreatedAt = existing.CreatedAt

	updated, err := s.products.Update(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("product updated", map[string]interface{}{
		"product_id": updated.ID,
		"user_id":    actor.ID,
	})
	return updated, nil
}

// DeleteProduct removes an existing product.
func (s *Service) DeleteProduct(ctx context.Context, actor domain.User, id int64) error {
	if !s.managers.CanManage(actor) {
		return apperror.NewForbiddenError("only managers may delete products")
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted", map[string]interface{}{
		"product_id": id,
		"user_id":    actor.ID,
	})
	return nil
}

// CreateShop persists a new shop. Shops are administrative data, so this
// requires a staff account rather than a manager role.
func (s *Service) CreateShop(ctx context.Context, actor domain.User, shop domain.Shop) (domain.Shop, error) {
	if !actor.IsStaff {
		return domain.Shop{}, apperror.NewForbiddenError("only staff may create shops")
	}

	fields := apperror.FieldErrors{}
	if strings.TrimSpace(shop.Name) == "" {
		fields["name"] = "name is required"
	}
	if strings.TrimSpace(shop.Address) == "" {
		fields["address"] = "address is required"
	}
	if len(fields) > 0 {
		return domain.Shop{}, apperror.NewFieldErrors(fields)
	}

	return s.shops.Save(ctx, shop)
}

// validateProduct applies the field-level rules. Every create and update
// passes through here before any write reaches the repository.
func (s *Service) validateProduct(ctx context.Context, product domain.Product) error {
	fields := apperror.FieldErrors{}

	if strings.TrimSpace(product.Name) == "" {
		fields["name"] = "name is required"
	}
	if product.Price.Sign() <= 0 {
		fields["price"] = "price must be greater than zero"
	}
	if product.ShopID == 0 {
		fields["shop"] = "shop is required"
	} else if _, err := s.shops.FindByID(ctx, product.ShopID); err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			fields["shop"] = fmt.Sprintf("shop %d does not exist", product.ShopID)
		} else {
			return err
		}
	}

	if len(fields) > 0 {
		return apperror.NewFieldErrors(fields)
	}
	return nil
}
