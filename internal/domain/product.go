package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the main catalog entity. Every product belongs to exactly one shop.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"` // media path, relative to the media root
	ShopID      int64           `json:"shop_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductSearchFields lists the columns matched by the free-text filter.
// Kept as a named set so the search scope is a single declared decision
// instead of inline SQL scattered across queries.
var ProductSearchFields = []string{"name", "description"}

// ProductFilter carries the untrusted listing parameters after parsing.
// Query matches any of ProductSearchFields as a case-insensitive substring.
// A zero ShopID means "all shops"; a zero Page is normalized to 1.
type ProductFilter struct {
	Query  string
	ShopID int64
	Page   int
}

// ProductRepository defines the persistence contract for the Product entity.
// FindAll returns one ordered page of the filtered collection; Count returns
// the filtered total so the service can compute page metadata.
type ProductRepository interface {
	Save(ctx context.Context, product Product) (Product, error)
	FindByID(ctx context.Context, id int64) (Product, error)
	FindAll(ctx context.Context, filter ProductFilter, offset, limit int) ([]Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id int64) error
}
