package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/cache"
	"shoplist/internal/pkg/logger"
)

const productCacheKey = "product:%d"
const productCacheTTL = 5 * time.Minute

const productColumns = "id, name, description, price, image, shop_id, created_at, updated_at"

// ProductRepository implements domain.ProductRepository over PostgreSQL,
// with a cache-aside layer for single-product reads.
type ProductRepository struct {
	db        *sql.DB
	cache     cache.Client
	dbTimeout time.Duration
	logger    logger.Logger
}

// NewProductRepository creates the repository with its infrastructure
// dependencies injected.
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, log logger.Logger) *ProductRepository {
	return &ProductRepository{
		db:        db,
		cache:     cacheClient,
		dbTimeout: dbTimeout,
		logger:    log,
	}
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

// Save inserts a new product and returns it with its assigned identifier.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	const insertSQL = `INSERT INTO products (name, description, price, image, shop_id, created_at, updated_at)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7)
	                   RETURNING id`

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	err := r.db.QueryRowContext(ctxTimeout, insertSQL,
		product.Name,
		product.Description,
		product.Price,
		product.Image,
		product.ShopID,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		r.logger.Error("failed to insert product", err)
		return domain.Product{}, apperror.NewDBError("failed to insert product", err)
	}

	return product, nil
}

// FindByID fetches one product, trying the cache before the database.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	cached, err := r.cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cached), &product) == nil {
			return product, nil
		}
		// Unreadable cache entry: fall through to the database.
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("cache read failed, falling back to database", map[string]interface{}{"key": key, "error": err.Error()})
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	row := r.db.QueryRowContext(ctxTimeout, query, id)
	if err := scanProduct(row, &product); err != nil {
		if err == sql.ErrNoRows {
			return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("product %d does not exist", id))
		}
		return domain.Product{}, apperror.NewDBError("failed to find product", err)
	}

	if data, err := json.Marshal(product); err == nil {
		r.cache.Set(ctxTimeout, key, data, productCacheTTL)
	}

	return product, nil
}

// FindAll returns one page of the filtered collection, ordered by id
// ascending so pagination stays deterministic across requests.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter, offset, limit int) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	where, args := buildFilter(filter)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, apperror.NewDBError("failed to query products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, apperror.NewDBError("failed to scan product row", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate product rows", err)
	}

	return products, nil
}

// Count returns the size of the filtered collection.
func (r *ProductRepository) Count(ctx context.Context, filter domain.ProductFilter) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	where, args := buildFilter(filter)
	var total int64
	if err := r.db.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return 0, apperror.NewDBError("failed to count products", err)
	}
	return total, nil
}

// Update persists changes to an existing product and drops its cache entry.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	const updateSQL = `UPDATE products
	                   SET name = $1, description = $2, price = $3, image = $4, shop_id = $5, updated_at = $6
	                   WHERE id = $7`

	product.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctxTimeout, updateSQL,
		product.Name,
		product.Description,
		product.Price,
		product.Image,
		product.ShopID,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return domain.Product{}, apperror.NewDBError("failed to update product", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("product %d does not exist", product.ID))
	}

	r.cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, product.ID))
	return product, nil
}

// Delete removes a product and drops its cache entry.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctxTimeout, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDBError("failed to delete product", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("product %d does not exist", id))
	}

	r.cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, id))
	return nil
}

// buildFilter translates a ProductFilter into a WHERE clause. The free-text
// query matches each of domain.ProductSearchFields as a case-insensitive
// substring.
func buildFilter(filter domain.ProductFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		fields := make([]string, 0, len(domain.ProductSearchFields))
		for _, f := range domain.ProductSearchFields {
			fields = append(fields, fmt.Sprintf("%s ILIKE $%d", f, len(args)))
		}
		conditions = append(conditions, "("+strings.Join(fields, " OR ")+")")
	}
	if filter.ShopID != 0 {
		args = append(args, filter.ShopID)
		conditions = append(conditions, fmt.Sprintf("shop_id = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner, p *domain.Product) error {
	var description sql.NullString
	var image sql.NullString
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&description,
		&p.Price,
		&image,
		&p.ShopID,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return err
	}
	p.Description = description.String
	p.Image = image.String
	return nil
}
