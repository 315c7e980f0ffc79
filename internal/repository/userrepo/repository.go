package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
)

const userColumns = "id, username, email, password_hash, role, is_staff, is_active, created_at, updated_at"

// UserRepository implements domain.UserRepository over PostgreSQL.
type UserRepository struct {
	db        *sql.DB
	dbTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository creates the repository with its database handle injected.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *UserRepository {
	return &UserRepository{
		db:        db,
		dbTimeout: dbTimeout,
		logger:    log,
	}
}

var _ domain.UserRepository = (*UserRepository)(nil)

// Save inserts a new user. Unique-constraint violations on email or
// username surface as field-scoped conflicts so the registration form can
// report them inline.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	const insertSQL = `INSERT INTO users (id, username, email, password_hash, role, is_staff, is_active, created_at, updated_at)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	_, err := r.db.ExecContext(ctxTimeout, insertSQL,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsStaff,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			field := "email"
			if strings.Contains(pqErr.Constraint, "username") {
				field = "username"
			}
			return domain.User{}, apperror.NewFieldConflictError(field, fmt.Sprintf("this %s is already registered", field))
		}
		r.logger.Error("failed to insert user", err)
		return domain.User{}, apperror.NewDBError("failed to insert user", err)
	}

	r.logger.Info("user saved", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// FindByEmail looks up a user by the login identifier.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.scanOne(r.db.QueryRowContext(ctxTimeout, query, email),
		fmt.Sprintf("user with email %q not found", email))
}

// FindByID looks up a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanOne(r.db.QueryRowContext(ctxTimeout, query, id),
		fmt.Sprintf("user %s not found", id))
}

// UpdateRole sets a user's role. Used only by the admin-guarded elevation
// operation.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctxTimeout,
		`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`,
		role, time.Now().UTC(), id)
	if err != nil {
		return apperror.NewDBError("failed to update user role", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("user %s not found", id))
	}
	return nil
}

func (r *UserRepository) scanOne(row *sql.Row, notFoundMsg string) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsStaff,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError(notFoundMsg)
		}
		r.logger.Error("failed to scan user row", err)
		return domain.User{}, apperror.NewDBError("failed to find user", err)
	}
	return user, nil
}
