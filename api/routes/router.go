package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/basecampsupply/storefront-backend/api/controllers"
	"github.com/basecampsupply/storefront-backend/api/middleware"
	"github.com/basecampsupply/storefront-backend/internal/auth"
	"github.com/basecampsupply/storefront-backend/internal/cart"
	"github.com/basecampsupply/storefront-backend/internal/catalog"
	checkoutsvc "github.com/basecampsupply/storefront-backend/internal/checkout"
	"github.com/basecampsupply/storefront-backend/internal/orders"
	"github.com/basecampsupply/storefront-backend/pkg/auth/session"
	"github.com/basecampsupply/storefront-backend/pkg/config"
	"github.com/basecampsupply/storefront-backend/pkg/logger"
	"github.com/basecampsupply/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	authService auth.Service,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	catalogClient *catalog.Client,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(catalogClient, logg))
		r.Get("/{handle}", controllers.ProductGet(catalogClient, logg))
	})

	r.Get("/api/v1/collections/{handle}", controllers.CollectionProducts(catalogClient, logg))

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.CartToken(logg))
		r.Get("/", controllers.CartGet(cartService, logg))
		r.Delete("/", controllers.CartClear(cartService, logg))
		r.Post("/lines", controllers.CartAddLine(cartService, logg))
		r.Patch("/lines/{productID}", controllers.CartSetQuantity(cartService, logg))
		r.Delete("/lines/{productID}", controllers.CartRemoveLine(cartService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartToken(logg))
			r.Post("/checkout", controllers.CheckoutBegin(checkoutService, logg))
			r.Post("/checkout/confirm", controllers.CheckoutConfirm(checkoutService, logg))
		})

		r.Get("/orders", controllers.OrdersList(ordersService, logg))
	})

	return r
}
