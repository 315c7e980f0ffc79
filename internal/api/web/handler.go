// Package web implements the browser-facing surface: server-rendered pages,
// form submissions, session authentication and redirect flows.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
	"shoplist/internal/pkg/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// CatalogService is the slice of the catalog layer the web handlers need.
type CatalogService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.Page, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	ListShops(ctx context.Context) ([]domain.Shop, error)
	CreateProduct(ctx context.Context, actor domain.User, product domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, actor domain.User, product domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, actor domain.User, id int64) error
}

// UserService is the slice of the user layer the web handlers need.
type UserService interface {
	Register(ctx context.Context, reg domain.Registration) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
}

// Handler groups the browser-surface handlers.
type Handler struct {
	Catalog  CatalogService
	Users    UserService
	Sessions *session.Manager
	Logger   logger.Logger
	MediaDir string

	tmpl *template.Template
}

// NewHandler creates the web handler with its collaborators injected.
func NewHandler(catalog CatalogService, users UserService, sessions *session.Manager, mediaDir string, log logger.Logger) *Handler {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
	tmpl := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	return &Handler{
		Catalog:  catalog,
		Users:    users,
		Sessions: sessions,
		Logger:   log,
		MediaDir: mediaDir,
		tmpl:     tmpl,
	}
}

// viewData is the payload handed to every template.
type viewData struct {
	User    *domain.User
	Flashes []string

	// Form redisplay
	Errors apperror.FieldErrors
	Values map[string]string

	// Page-specific
	Page    domain.Page
	Product domain.Product
	Shops   []domain.Shop
	Next    string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, status int, data viewData) {
	if data.User == nil {
		if u, ok := currentUser(r); ok {
			data.User = &u
		}
	}
	if data.Values == nil {
		data.Values = map[string]string{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.Logger.Error("failed to render template "+name, err)
	}
}

// renderError maps a service error onto the browser surface. Validation
// errors never reach here: the form handlers re-render inline instead.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *apperror.NotFoundError
	var forbidden *apperror.ForbiddenError
	switch {
	case errors.As(err, &notFound):
		http.NotFound(w, r)
	case errors.As(err, &forbidden):
		http.Error(w, "403 Forbidden", http.StatusForbidden)
	default:
		h.Logger.Error("request failed", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
