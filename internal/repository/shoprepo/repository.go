package shoprepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
)

// ShopRepository implements domain.ShopRepository over PostgreSQL.
type ShopRepository struct {
	db        *sql.DB
	dbTimeout time.Duration
	logger    logger.Logger
}

// NewShopRepository creates the repository with its database handle injected.
func NewShopRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *ShopRepository {
	return &ShopRepository{
		db:        db,
		dbTimeout: dbTimeout,
		logger:    log,
	}
}

var _ domain.ShopRepository = (*ShopRepository)(nil)

// Save inserts a new shop and returns it with its assigned identifier.
func (r *ShopRepository) Save(ctx context.Context, shop domain.Shop) (domain.Shop, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	const insertSQL = `INSERT INTO shops (name, address, created_at, updated_at)
	                   VALUES ($1, $2, $3, $4)
	                   RETURNING id`

	now := time.Now().UTC()
	shop.CreatedAt = now
	shop.UpdatedAt = now

	err := r.db.QueryRowContext(ctxTimeout, insertSQL,
		shop.Name, shop.Address, shop.CreatedAt, shop.UpdatedAt,
	).Scan(&shop.ID)
	if err != nil {
		r.logger.Error("failed to insert shop", err)
		return domain.Shop{}, apperror.NewDBError("failed to insert shop", err)
	}

	return shop, nil
}

// FindByID fetches one shop by identifier.
func (r *ShopRepository) FindByID(ctx context.Context, id int64) (domain.Shop, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	var shop domain.Shop
	err := r.db.QueryRowContext(ctxTimeout,
		`SELECT id, name, address, created_at, updated_at FROM shops WHERE id = $1`, id,
	).Scan(&shop.ID, &shop.Name, &shop.Address, &shop.CreatedAt, &shop.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Shop{}, apperror.NewNotFoundError(fmt.Sprintf("shop %d does not exist", id))
		}
		return domain.Shop{}, apperror.NewDBError("failed to find shop", err)
	}
	return shop, nil
}

// FindAll returns every shop, ordered by identifier. The collection is
// small by design: it backs the shop filter control on the listing page.
func (r *ShopRepository) FindAll(ctx context.Context) ([]domain.Shop, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctxTimeout,
		`SELECT id, name, address, created_at, updated_at FROM shops ORDER BY id ASC`)
	if err != nil {
		return nil, apperror.NewDBError("failed to query shops", err)
	}
	defer rows.Close()

	shops := make([]domain.Shop, 0)
	for rows.Next() {
		var s domain.Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, apperror.NewDBError("failed to scan shop row", err)
		}
		shops = append(shops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate shop rows", err)
	}
	return shops, nil
}
