package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
	"shoplist/internal/pkg/middleware"
	"shoplist/internal/pkg/session"
	"shoplist/internal/pkg/token"
)

type MockUserLoader struct {
	mock.Mock
}

func (m *MockUserLoader) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(tokenString string) (*token.CustomClaims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*token.CustomClaims)
	return claims, args.Error(1)
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuth_RedirectsAnonymousWithNext(t *testing.T) {
	sessions := session.NewManager("test-secret")
	users := new(MockUserLoader)
	var called bool
	guard := middleware.SessionAuth(sessions, users, logger.NewLogger("error"))(okHandler(&called))

	r := httptest.NewRequest(http.MethodGet, "/products/?page=2", nil)
	w := httptest.NewRecorder()
	guard.ServeHTTP(w, r)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/?next=%2Fproducts%2F%3Fpage%3D2", w.Header().Get("Location"))
	assert.False(t, called)
}

func TestSessionAuth_SignsOutStaleSession(t *testing.T) {
	sessions := session.NewManager("test-secret")
	users := new(MockUserLoader)
	var called bool
	guard := middleware.SessionAuth(sessions, users, logger.NewLogger("error"))(okHandler(&called))

	// Establish a session for an account that no longer exists.
	signin := httptest.NewRecorder()
	assert.NoError(t, sessions.SignIn(signin, httptest.NewRequest(http.MethodGet, "/", nil), "gone"))
	users.On("FindByID", mock.Anything, "gone").
		Return(domain.User{}, apperror.NewNotFoundError("user gone not found"))

	r := httptest.NewRequest(http.MethodGet, "/products/", nil)
	r.Header.Set("Cookie", signin.Header().Get("Set-Cookie"))
	w := httptest.NewRecorder()
	guard.ServeHTTP(w, r)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login/")
	assert.False(t, called)
}

func TestSessionAuth_AttachesUser(t *testing.T) {
	sessions := session.NewManager("test-secret")
	users := new(MockUserLoader)
	account := domain.User{ID: "u-1", Role: domain.RoleUser, IsActive: true}
	users.On("FindByID", mock.Anything, "u-1").Return(account, nil)

	var got domain.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = middleware.CurrentUser(r.Context())
	})
	guard := middleware.SessionAuth(sessions, users, logger.NewLogger("error"))(next)

	signin := httptest.NewRecorder()
	assert.NoError(t, sessions.SignIn(signin, httptest.NewRequest(http.MethodGet, "/", nil), "u-1"))

	r := httptest.NewRequest(http.MethodGet, "/products/", nil)
	r.Header.Set("Cookie", signin.Header().Get("Set-Cookie"))
	guard.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "u-1", got.ID)
}

func TestTokenAuth_RejectsMissingAndBadTokens(t *testing.T) {
	tokens := new(MockTokenValidator)
	users := new(MockUserLoader)
	var called bool
	guard := middleware.TokenAuth(tokens, users, logger.NewLogger("error"))(okHandler(&called))

	// No Authorization header.
	w := httptest.NewRecorder()
	guard.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Invalid token.
	tokens.On("ValidateToken", "bad").Return(nil, apperror.NewUnauthorizedError("invalid"))
	r := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	r.Header.Set("Authorization", "Bearer bad")
	w = httptest.NewRecorder()
	guard.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.False(t, called)
}

func TestTokenAuth_ReloadsUser(t *testing.T) {
	tokens := new(MockTokenValidator)
	users := new(MockUserLoader)
	var called bool
	guard := middleware.TokenAuth(tokens, users, logger.NewLogger("error"))(okHandler(&called))

	tokens.On("ValidateToken", "good").Return(&token.CustomClaims{UserID: "u-1", Role: "user"}, nil)
	users.On("FindByID", mock.Anything, "u-1").
		Return(domain.User{ID: "u-1", Role: domain.RoleUser, IsActive: true}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	r.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	guard.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestTokenAuth_RejectsDeactivatedAccount(t *testing.T) {
	tokens := new(MockTokenValidator)
	users := new(MockUserLoader)
	var called bool
	guard := middleware.TokenAuth(tokens, users, logger.NewLogger("error"))(okHandler(&called))

	tokens.On("ValidateToken", "good").Return(&token.CustomClaims{UserID: "u-1", Role: "user"}, nil)
	users.On("FindByID", mock.Anything, "u-1").
		Return(domain.User{ID: "u-1", Role: domain.RoleUser, IsActive: false}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	r.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	guard.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestRequireManager(t *testing.T) {
	managers := domain.ManagerRoles(true)
	var called bool
	guard := middleware.RequireManager(managers, middleware.DenyPlain)(okHandler(&called))

	// Plain user: hard 403, never a redirect.
	r := httptest.NewRequest(http.MethodPost, "/products/add/", nil)
	r = r.WithContext(middleware.WithUser(r.Context(), domain.User{ID: "u-3", Role: domain.RoleUser, IsActive: true}))
	w := httptest.NewRecorder()
	guard.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)

	// Manager passes through.
	r = httptest.NewRequest(http.MethodPost, "/products/add/", nil)
	r = r.WithContext(middleware.WithUser(r.Context(), domain.User{ID: "u-1", Role: domain.RoleSalesExecutive, IsActive: true}))
	w = httptest.NewRecorder()
	guard.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}
