package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "shoplist/docs"
	"shoplist/internal/api/product"
	"shoplist/internal/api/shop"
	"shoplist/internal/api/user"
	"shoplist/internal/api/web"
	"shoplist/internal/domain"
	"shoplist/internal/pkg/cache"
	"shoplist/internal/pkg/logger"
	"shoplist/internal/pkg/middleware"
	"shoplist/internal/pkg/session"
)

// Deps carries the initialized handlers and the collaborators the
// middleware stack needs.
type Deps struct {
	Web      *web.Handler
	Products *product.Handler
	Users    *user.Handler
	Shops    *shop.Handler

	Sessions   *session.Manager
	Tokens     middleware.TokenValidator
	UserLoader middleware.UserLoader
	Cache      cache.Client
	Managers   domain.RoleSet
	MediaDir   string

	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	Logger logger.Logger
}

// NewRouter assembles the HTTP surface: the browser pages, the JSON API
// under /api/v1, swagger, media files and the health check.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	sessionAuth := middleware.SessionAuth(d.Sessions, d.UserLoader, d.Logger)
	tokenAuth := middleware.TokenAuth(d.Tokens, d.UserLoader, d.Logger)
	webManager := middleware.RequireManager(d.Managers, middleware.DenyPlain)
	apiManager := middleware.RequireManager(d.Managers, middleware.DenyJSON)
	rateLimit := middleware.RateLimiter(d.Cache, d.RateLimitMaxRequests, d.RateLimitPeriod)

	// Health check
	mux.HandleFunc("GET /ping", PingHandler)

	// Browser surface
	mux.Handle("GET /{$}", http.RedirectHandler("/products/", http.StatusFound))

	mux.Handle("GET /register/{$}", chain(http.HandlerFunc(d.Web.RegisterForm), rateLimit))
	mux.Handle("POST /register/{$}", chain(http.HandlerFunc(d.Web.Register), rateLimit))
	mux.Handle("GET /login/{$}", http.HandlerFunc(d.Web.LoginForm))
	mux.Handle("POST /login/{$}", chain(http.HandlerFunc(d.Web.Login), rateLimit))
	mux.Handle("POST /logout/{$}", chain(http.HandlerFunc(d.Web.Logout), sessionAuth))

	mux.Handle("GET /products/{$}", chain(http.HandlerFunc(d.Web.ListProducts), sessionAuth))
	mux.Handle("GET /products/{id}/{$}", chain(http.HandlerFunc(d.Web.ProductDetail), sessionAuth))

	mux.Handle("GET /products/add/{$}", chain(http.HandlerFunc(d.Web.CreateProductForm), sessionAuth, webManager))
	mux.Handle("POST /products/add/{$}", chain(http.HandlerFunc(d.Web.CreateProduct), sessionAuth, webManager))
	mux.Handle("GET /products/{id}/edit/{$}", chain(http.HandlerFunc(d.Web.EditProductForm), sessionAuth, webManager))
	mux.Handle("POST /products/{id}/edit/{$}", chain(http.HandlerFunc(d.Web.EditProduct), sessionAuth, webManager))
	mux.Handle("GET /products/{id}/delete/{$}", chain(http.HandlerFunc(d.Web.DeleteProductConfirm), sessionAuth, webManager))
	mux.Handle("POST /products/{id}/delete/{$}", chain(http.HandlerFunc(d.Web.DeleteProduct), sessionAuth, webManager))

	// JSON API
	mux.Handle("POST /api/v1/login", chain(http.HandlerFunc(d.Users.Login), rateLimit))

	mux.Handle("GET /api/v1/products", chain(http.HandlerFunc(d.Products.List), tokenAuth))
	mux.Handle("GET /api/v1/products/{id}", chain(http.HandlerFunc(d.Products.Get), tokenAuth))
	mux.Handle("POST /api/v1/products", chain(http.HandlerFunc(d.Products.Create), tokenAuth, apiManager))
	mux.Handle("PUT /api/v1/products/{id}", chain(http.HandlerFunc(d.Products.Update), tokenAuth, apiManager))
	mux.Handle("DELETE /api/v1/products/{id}", chain(http.HandlerFunc(d.Products.Delete), tokenAuth, apiManager))

	mux.Handle("GET /api/v1/shops", chain(http.HandlerFunc(d.Shops.List), tokenAuth))
	mux.Handle("POST /api/v1/shops", chain(http.HandlerFunc(d.Shops.Create), tokenAuth))

	mux.Handle("PUT /api/v1/users/{id}/role", chain(http.HandlerFunc(d.Users.ElevateRole), tokenAuth))

	// Swagger and media
	mux.Handle("/swagger/", httpSwagger.WrapHandler)
	mux.Handle("/media/", http.StripPrefix("/media/", http.FileServer(http.Dir(d.MediaDir))))

	return mux
}

// PingHandler is the health check endpoint.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// chain wraps h with the given middlewares; the first listed runs first.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
