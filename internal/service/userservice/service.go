package userservice

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
	"shoplist/internal/pkg/token"
)

const minPasswordLength = 8

// TokenService is the contract of the token layer consumed here.
type TokenService interface {
	GenerateToken(userID string, userRole string) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// Service implements registration, authentication and role administration.
type Service struct {
	users  domain.UserRepository
	tokens TokenService
	logger logger.Logger
}

// NewService creates the user service.
func NewService(users domain.UserRepository, tokens TokenService, log logger.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: log,
	}
}

// Register creates a new account. The role is always pinned to RoleUser no
// matter what the caller submitted; elevation is a separate admin-only
// operation, so a registration form can never mint a manager.
func (s *Service) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	fields := apperror.FieldErrors{}

	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)

	if reg.Username == "" {
		fields["username"] = "username is required"
	}
	if reg.Email == "" {
		fields["email"] = "email is required"
	} else if _, err := mail.ParseAddress(reg.Email); err != nil {
		fields["email"] = "enter a valid email address"
	}
	if len(reg.Password) < minPasswordLength {
		fields["password"] = "password must be at least 8 characters"
	} else if reg.Password != reg.PasswordConfirm {
		fields["password_confirm"] = "passwords do not match"
	}
	if len(fields) > 0 {
		return domain.User{}, apperror.NewFieldErrors(fields)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("failed to hash password", err)
	}

	newUser := domain.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hashed),
		Role:         domain.RoleUser,
		IsActive:     true,
	}

	user, err := s.users.Save(ctx, newUser)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("user registered", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// Login verifies credentials keyed by email and returns the account.
// A missing account and a wrong password produce the same error so the
// response does not reveal which part failed.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	if email == "" || password == "" {
		return domain.User{}, apperror.NewUnauthorizedError("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.User{}, apperror.NewUnauthorizedError("invalid credentials")
		}
		return domain.User{}, err
	}

	if !user.IsActive {
		return domain.User{}, apperror.NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, apperror.NewUnauthorizedError("invalid credentials")
	}

	return user, nil
}

// LoginToken authenticates like Login and issues a bearer token for the
// JSON API surface.
func (s *Service) LoginToken(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.Login(ctx, email, password)
	if err != nil {
		return "", domain.User{}, err
	}

	tokenString, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return "", domain.User{}, apperror.NewInternalError("failed to generate token", err)
	}
	return tokenString, user, nil
}

// ElevateRole changes another account's role. Only admins may do this;
// it is the sole path by which sales_executive or admin is ever assigned.
func (s *Service) ElevateRole(ctx context.Context, actor domain.User, userID string, role domain.Role) error {
	if actor.Role != domain.RoleAdmin {
		return apperror.NewForbiddenError("only admins may change user roles")
	}
	if !domain.ValidRole(role) {
		return apperror.NewFieldErrors(apperror.FieldErrors{"role": "unknown role"})
	}

	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}

	s.logger.Info("user role changed", map[string]interface{}{
		"user_id":  userID,
		"role":     role,
		"actor_id": actor.ID,
	})
	return nil
}
