package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/epartnic/epartnic-backend/api/controllers"
	"github.com/epartnic/epartnic-backend/api/middleware"
	addresssvc "github.com/epartnic/epartnic-backend/internal/addresses"
	cartsvc "github.com/epartnic/epartnic-backend/internal/cart"
	checkoutsvc "github.com/epartnic/epartnic-backend/internal/checkout"
	ordersvc "github.com/epartnic/epartnic-backend/internal/orders"
	productsvc "github.com/epartnic/epartnic-backend/internal/products"
	"github.com/epartnic/epartnic-backend/pkg/config"
	"github.com/epartnic/epartnic-backend/pkg/db"
	"github.com/epartnic/epartnic-backend/pkg/enums"
	"github.com/epartnic/epartnic-backend/pkg/logger"
	"github.com/epartnic/epartnic-backend/pkg/metrics"
	pkgredis "github.com/epartnic/epartnic-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Products  productsvc.Service
	Cart      cartsvc.Service
	Addresses addresssvc.Service
	Checkout  checkoutsvc.Service
	Orders    ordersvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(svcs.Products, logg))
		r.Get("/featured", controllers.ProductsFeatured(svcs.Products, logg))
		r.Get("/{productId}", controllers.ProductDetail(svcs.Products, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, svcs.Products, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(svcs.Cart, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(svcs.Addresses, logg))
			r.Post("/", controllers.AddressCreate(svcs.Addresses, logg))
			r.Put("/{addressId}", controllers.AddressUpdate(svcs.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(svcs.Addresses, logg))
			r.Post("/{addressId}/default", controllers.AddressSetDefault(svcs.Addresses, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutCurrent(svcs.Checkout, logg))
			r.Post("/start", controllers.CheckoutStart(svcs.Checkout, logg))
			r.Post("/address", controllers.CheckoutSelectAddress(svcs.Checkout, logg))
			r.Post("/payment-method", controllers.CheckoutSelectPaymentMethod(svcs.Checkout, logg))
			r.Post("/next", controllers.CheckoutNext(svcs.Checkout, logg))
			r.Post("/back", controllers.CheckoutBack(svcs.Checkout, logg))
			r.Post("/place", controllers.CheckoutPlace(svcs.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.Post("/{orderId}/retry", controllers.OrderRetry(svcs.Checkout, logg))
		})

		r.Route("/partner/products", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRolePartner.String(), logg))
			r.Get("/", controllers.PartnerProductList(svcs.Products, logg))
			r.Post("/", controllers.PartnerProductCreate(svcs.Products, logg))
			r.Patch("/{productId}", controllers.PartnerProductUpdate(svcs.Products, logg))
			r.Delete("/{productId}", controllers.PartnerProductDelete(svcs.Products, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(svcs.Orders, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderStatus(svcs.Orders, logg))
		})
	})

	return r
}
