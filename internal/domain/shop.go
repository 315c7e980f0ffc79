package domain

import (
	"context"
	"time"
)

// Shop represents a store that owns catalog products.
type Shop struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShopRepository defines the persistence contract for the Shop entity.
type ShopRepository interface {
	Save(ctx context.Context, shop Shop) (Shop, error)
	FindByID(ctx context.Context, id int64) (Shop, error)
	FindAll(ctx context.Context) ([]Shop, error)
}
