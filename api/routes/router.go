package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qrobotics/qrobotics-backend/api/controllers"
	"github.com/qrobotics/qrobotics-backend/api/middleware"
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
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
	"github.com/qrobotics/qrobotics-backend/pkg/metrics"
)

// Params collects everything the router wires together.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	HTTPMetrics *metrics.HTTPMetrics
	// MetricsHandler serves /metrics; usually promhttp.Handler().
	MetricsHandler http.Handler
	// HealthChecks are pinged by /health/ready.
	HealthChecks map[string]controllers.Pinger

	Sessions session.AccessSessionChecker

	Auth       authsvc.Service
	Catalog    catalog.Service
	Categories categorysvc.Service
	Products   productsvc.Service
	Media      mediasvc.Service
	Cart       cartsvc.Service
	Checkout   checkoutsvc.Service
	Orders     ordersvc.Service
	Users      usersvc.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.HealthChecks))
	})

	if p.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", p.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(p.Auth, logg))
		r.Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, logg))
	})

	r.Route("/store", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(p.Catalog, catalog.ViewStore, logg))
		r.Get("/categories", controllers.ListCategories(p.Categories, logg))
		r.Get("/categories/{categoryId}", controllers.GetCategory(p.Categories, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(p.Cart, logg))
				r.Delete("/", controllers.ClearCart(p.Cart, logg))
				r.Post("/items", controllers.AddCartItem(p.Cart, logg))
				r.Put("/items/{productId}", controllers.UpdateCartItem(p.Cart, logg))
				r.Delete("/items/{productId}", controllers.RemoveCartItem(p.Cart, logg))
			})

			r.Post("/checkout", controllers.Checkout(p.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListMyOrders(p.Orders, logg))
				r.Get("/{orderId}", controllers.GetMyOrder(p.Orders, logg))
			})

			r.Route("/me", func(r chi.Router) {
				r.Get("/", controllers.GetProfile(p.Users, logg))
				r.Put("/", controllers.UpdateProfile(p.Users, logg))
				r.Route("/addresses", func(r chi.Router) {
					r.Get("/", controllers.ListAddresses(p.Users, logg))
					r.Post("/", controllers.CreateAddress(p.Users, logg))
					r.Put("/{addressId}", controllers.UpdateAddress(p.Users, logg))
					r.Delete("/{addressId}", controllers.DeleteAddress(p.Users, logg))
				})
			})
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(p.Catalog, catalog.ViewAdmin, logg))
			r.Post("/", controllers.CreateProduct(p.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(p.Products, logg))
			r.Put("/{productId}", controllers.UpdateProduct(p.Products, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(p.Products, logg))
			r.Put("/{productId}/quantity", controllers.SetProductQuantity(p.Products, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(p.Categories, logg))
			r.Post("/", controllers.CreateCategory(p.Categories, logg))
			r.Get("/{categoryId}", controllers.GetCategory(p.Categories, logg))
			r.Put("/{categoryId}", controllers.UpdateCategory(p.Categories, logg))
			r.Delete("/{categoryId}", controllers.DeleteCategory(p.Categories, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(p.Orders, logg))
			r.Get("/{orderId}", controllers.AdminGetOrder(p.Orders, logg))
			r.Put("/{orderId}/status", controllers.AdminUpdateOrderStatus(p.Orders, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Post("/{owner}/{ownerId}/images", controllers.UploadImage(p.Media, cfg.Cloudinary.MaxUploadMB, logg))
			r.Delete("/{owner}/images/{imageId}", controllers.DeleteImage(p.Media, logg))
		})
	})

	return r
}
