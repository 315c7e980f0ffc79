package userservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
	"shoplist/internal/pkg/token"
	"shoplist/internal/service/userservice"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID string, userRole string) (string, error) {
	args := m.Called(userID, userRole)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*token.CustomClaims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*token.CustomClaims)
	return claims, args.Error(1)
}

func newService(users *MockUserRepository, tokens *MockTokenService) *userservice.Service {
	return userservice.NewService(users, tokens, logger.NewLogger("error"))
}

func validRegistration() domain.Registration {
	return domain.Registration{
		Username:        "ana",
		Email:           "ana@example.com",
		Password:        "secret-password",
		PasswordConfirm: "secret-password",
	}
}

func TestRegister_PinsRoleToUser(t *testing.T) {
	mockUsers := new(MockUserRepository)
	svc := newService(mockUsers, new(MockTokenService))

	mockUsers.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleUser && u.IsActive && !u.IsStaff
	})).Return(domain.User{ID: "u-1", Username: "ana", Email: "ana@example.com", Role: domain.RoleUser}, nil)

	user, err := svc.Register(context.Background(), validRegistration())

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	mockUsers.AssertExpectations(t)
}

func TestRegister_HashesPassword(t *testing.T) {
	mockUsers := new(MockUserRepository)
	svc := newService(mockUsers, new(MockTokenService))

	var saved domain.User
	mockUsers.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.User) }).
		Return(domain.User{ID: "u-1"}, nil)

	_, err := svc.Register(context.Background(), validRegistration())

	assert.NoError(t, err)
	assert.NotEqual(t, "secret-password", saved.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("secret-password")))
}

func TestRegister_FieldValidation(t *testing.T) {
	mockUsers := new(MockUserRepository)
	svc := newService(mockUsers, new(MockTokenService))

	reg := domain.Registration{
		Username:        "",
		Email:           "not-an-email",
		Password:        "short",
		PasswordConfirm: "short",
	}

	_, err := svc.Register(context.Background(), reg)

	assert.Error(t, err)
	fields := apperror.FieldsOf(err)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	mockUsers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	mockUsers := new(MockUserRepository)
	svc := newService(mockUsers, new(MockTokenService))

	reg := validRegistration()
	reg.PasswordConfirm = "something-else"

	_, err := svc.Register(context.Background(), reg)

	assert.Error(t, err)
	fields := apperror.FieldsOf(err)
	assert.Equal(t, "passwords do not match", fields["password_confirm"])
	mockUsers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mockUsers := new(MockUserRepository)
	svc := newService(mockUsers, new(MockTokenService))

	mockUsers.On("Save", mock.Anything, mock.Anything).
		Return(domain.User{}, apperror.NewFieldConflictError("email", "this email is already registered"))

	_, err := svc.Register(context.Background(), validRegistration())

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.Contains(t, apperror.FieldsOf(err), "email")
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

func TestLogin_Success(t *testing.T) {
	mockUsers := new(MockUserRepository)
	svc := newService(mockUsers, new(MockTokenService))

	stored := domain.User{
		ID:           "u-1",
		Email:        "ana@example.com",
		PasswordHash: hashOf(t, "secret-password"),
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	mockUsers.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)

	user, err := svc.Login(context.Background(), "ana@example.com", "secret-password")

	assert.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	mockUsers := new(MockUserRepository)
	svc := newService(mockUsers, new(MockTokenService))

	mockUsers.On("FindByEmail", mock.Anything, "ghost@example.com").
		Return(domain.User{}, apperror.NewNotFoundError("no such user"))
	mockUsers.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(domain.User{PasswordHash: hashOf(t, "secret-password"), IsActive: true}, nil)
	mockUsers.On("FindByEmail", mock.Anything, "inactive@example.com").
		Return(domain.User{PasswordHash: hashOf(t, "secret-password"), IsActive: false}, nil)

	_, errUnknown := svc.Login(context.Background(), "ghost@example.com", "whatever")
	_, errWrongPass := svc.Login(context.Background(), "ana@example.com", "wrong-password")
	_, errInactive := svc.Login(context.Background(), "inactive@example.com", "secret-password")

	for _, err := range []error{errUnknown, errWrongPass, errInactive} {
		assert.IsType(t, &apperror.UnauthorizedError{}, err)
		assert.Contains(t, err.Error(), "invalid credentials")
	}
}

func TestLoginToken_IssuesToken(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockTokens := new(MockTokenService)
	svc := newService(mockUsers, mockTokens)

	stored := domain.User{
		ID:           "u-1",
		Email:        "ana@example.com",
		PasswordHash: hashOf(t, "secret-password"),
		Role:         domain.RoleSalesExecutive,
		IsActive:     true,
	}
	mockUsers.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
	mockTokens.On("GenerateToken", "u-1", "sales_executive").Return("signed-token", nil)

	tokenString, user, err := svc.LoginToken(context.Background(), "ana@example.com", "secret-password")

	assert.NoError(t, err)
	assert.Equal(t, "signed-token", tokenString)
	assert.Equal(t, "u-1", user.ID)
	mockTokens.AssertExpectations(t)
}

func TestElevateRole_AdminOnly(t *testing.T) {
	mockUsers := new(MockUserRepository)
	svc := newService(mockUsers, new(MockTokenService))

	notAdmin := domain.User{ID: "u-2", Role: domain.RoleSalesExecutive, IsActive: true}
	err := svc.ElevateRole(context.Background(), notAdmin, "u-3", domain.RoleSalesExecutive)

	assert.IsType(t, &apperror.ForbiddenError{}, err)
	mockUsers.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestElevateRole_RejectsUnknownRole(t *testing.T) {
	mockUsers := new(MockUserRepository)
	svc := newService(mockUsers, new(MockTokenService))

	adminUser := domain.User{ID: "u-1", Role: domain.RoleAdmin, IsActive: true}
	err := svc.ElevateRole(context.Background(), adminUser, "u-3", domain.Role("superuser"))

	assert.Error(t, err)
	assert.Contains(t, apperror.FieldsOf(err), "role")
	mockUsers.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestElevateRole_Success(t *testing.T) {
	mockUsers := new(MockUserRepository)
	svc := newService(mockUsers, new(MockTokenService))

	adminUser := domain.User{ID: "u-1", Role: domain.RoleAdmin, IsActive: true}
	mockUsers.On("UpdateRole", mock.Anything, "u-3", domain.RoleSalesExecutive).Return(nil)

	err := svc.ElevateRole(context.Background(), adminUser, "u-3", domain.RoleSalesExecutive)

	assert.NoError(t, err)
	mockUsers.AssertExpectations(t)
}
