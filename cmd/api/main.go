package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qrobotics/qrobotics-backend/api/controllers"
	"github.com/qrobotics/qrobotics-backend/api/routes"
	authsvc "github.com/qrobotics/qrobotics-backend/internal/auth"
	cartsvc "github.com/qrobotics/qrobotics-backend/internal/cart"
	"github.com/qrobotics/qrobotics-backend/internal/catalog"
	categorysvc "github.com/qrobotics/qrobotics-backend/internal/categories"
	checkoutsvc "github.com/qrobotics/qrobotics-backend/internal/checkout"
	mediasvc "github.com/qrobotics/qrobotics-backend/internal/media"
	ordersvc "github.com/qrobotics/qrobotics-backend/internal/orders"
	productsvc "github.com/qrobotics/qrobotics-backend/internal/products"
	usersvc "github.com/qrobotics/qrobotics-backend/internal/users"
	"github.com/qrobotics/qrobotics-backend/pkg/auth/session"
	"github.com/qrobotics/qrobotics-backend/pkg/config"
	"github.com/qrobotics/qrobotics-backend/pkg/db"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
	"github.com/qrobotics/qrobotics-backend/pkg/metrics"
	"github.com/qrobotics/qrobotics-backend/pkg/migrate"
	"github.com/qrobotics/qrobotics-backend/pkg/redis"
	"github.com/qrobotics/qrobotics-backend/pkg/storage/cloudinary"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	mediaStore, err := cloudinary.NewClient(cfg.Cloudinary, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create media store client", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	usersRepo := usersvc.NewRepository(conn)
	mediaRepo := mediasvc.NewRepository(conn)

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	exitOn(logg, "auth service", err)

	catalogService, err := catalog.NewService(catalog.NewRepository(conn), cfg.Catalog, logg)
	exitOn(logg, "catalog service", err)

	categoryService, err := categorysvc.NewService(categorysvc.NewRepository(conn), mediaStore, logg)
	exitOn(logg, "category service", err)

	productService, err := productsvc.NewService(productsvc.NewRepository(conn), mediaStore, logg)
	exitOn(logg, "product service", err)

	mediaService, err := mediasvc.NewService(mediaRepo, mediaRepo, mediaStore, logg, cfg.Cloudinary.MaxUploadMB)
	exitOn(logg, "media service", err)

	cartService, err := cartsvc.NewService(cartsvc.NewRepository(conn), logg)
	exitOn(logg, "cart service", err)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.NewRepository(conn), dbClient, logg)
	exitOn(logg, "checkout service", err)

	orderService, err := ordersvc.NewService(ordersvc.NewRepository(conn), logg)
	exitOn(logg, "order service", err)

	userService, err := usersvc.NewService(usersRepo, logg)
	exitOn(logg, "user service", err)

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	router := routes.NewRouter(routes.Params{
		Config:         cfg,
		Logger:         logg,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: promhttp.Handler(),
		HealthChecks: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		Sessions:   sessionManager,
		Auth:       authService,
		Catalog:    catalogService,
		Categories: categoryService,
		Products:   productService,
		Media:      mediaService,
		Cart:       cartService,
		Checkout:   checkoutService,
		Orders:     orderService,
		Users:      userService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}

func exitOn(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
