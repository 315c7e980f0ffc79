package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shoplist/config"
	"shoplist/internal/domain"
	"shoplist/internal/pkg/cache"
	"shoplist/internal/pkg/database"
	"shoplist/internal/pkg/logger"
	"shoplist/internal/pkg/session"
	"shoplist/internal/pkg/token"

	"shoplist/internal/api/product"
	"shoplist/internal/api/router"
	"shoplist/internal/api/shop"
	"shoplist/internal/api/user"
	"shoplist/internal/api/web"
	"shoplist/internal/repository/productrepo"
	"shoplist/internal/repository/shoprepo"
	"shoplist/internal/repository/userrepo"
	"shoplist/internal/service/catalogservice"
	"shoplist/internal/service/userservice"
)

// @title shoplist API
// @version 1.0
// @description JSON API for the shoplist product catalog.
// @BasePath /api/v1
func main() {
	// Variables may come from a .env file or from the process environment
	// (e.g. in a container), so a missing file is not fatal.
	if err := godotenv.Load(); err != nil {
		stdlog.Println("no .env file found, reading configuration from the environment")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("configuration loaded", map[string]interface{}{"env": cfg.Environment})

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", err)
	}
	defer db.Close()
	log.Info("postgres connection established", nil)

	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("redis client initialized", map[string]interface{}{"addr": cfg.RedisAddr})

	sessions := session.NewManager(cfg.SessionKey)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// Repository -> service -> handler, one direction only.
	shopRepo := shoprepo.NewShopRepository(db, cfg.DBTimeout, log)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)

	managers := domain.ManagerRoles(cfg.AdminManagesProducts)

	catalogSvc := catalogservice.NewService(productRepo, shopRepo, managers, cfg.PageSize, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, log)

	webHandler := web.NewHandler(catalogSvc, userSvc, sessions, cfg.MediaDir, log)
	productHandler := product.NewHandler(catalogSvc, log)
	shopHandler := shop.NewHandler(catalogSvc, log)
	userHandler := user.NewHandler(userSvc, log)

	r := router.NewRouter(router.Deps{
		Web:      webHandler,
		Products: productHandler,
		Users:    userHandler,
		Shops:    shopHandler,

		Sessions:   sessions,
		Tokens:     tokenSvc,
		UserLoader: userRepo,
		Cache:      cacheClient,
		Managers:   managers,
		MediaDir:   cfg.MediaDir,

		RateLimitMaxRequests: cfg.RateLimitMaxRequests,
		RateLimitPeriod:      cfg.RateLimitPeriod,

		Logger: log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("shoplist listening", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced server shutdown", err)
	}
	log.Info("server stopped", nil)
}
