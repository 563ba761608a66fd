package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"example.com/storefront/internal/cache"
	"example.com/storefront/internal/events"
	"example.com/storefront/internal/handlers"
	"example.com/storefront/internal/service"
)

type Services struct {
	Auth      service.AuthService
	Catalog   service.CatalogService
	Carts     service.CartService
	Checkout  service.CheckoutService
	Comments  service.CommentService
	Customers service.CustomerService
	Seed      service.SeedService

	// Invalidator is set when the catalog is cached.
	Invalidator handlers.Invalidator
}

// NewServices builds the service graph. rdb may be nil, which disables the
// catalog cache.
func NewServices(db *gorm.DB, jwtSecret string, pub events.Publisher, rdb redis.UniversalClient, cacheTTL time.Duration) Services {
	s := Services{
		Auth:      service.NewAuthService(db, jwtSecret),
		Catalog:   service.NewCatalogService(db),
		Carts:     service.NewCartService(db, pub),
		Checkout:  service.NewCheckoutService(db, pub),
		Comments:  service.NewCommentService(db, pub),
		Customers: service.NewCustomerService(db),
		Seed:      service.NewSeedService(db),
	}
	if rdb != nil {
		cached := cache.NewCatalogCache(s.Catalog, rdb, cacheTTL)
		s.Catalog = cached
		s.Invalidator = cached
	}
	return s
}

func NewRouter(prod bool, s Services) *gin.Engine {
	if prod {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(handlers.RequestID(), handlers.AccessLog(), handlers.Recover(), handlers.Principal(s.Auth))

	r.GET("/health", handlers.Health)

	authH := handlers.NewAuthHTTP(s.Auth, prod)
	catalogH := handlers.NewCatalogHTTP(s.Catalog)
	cartH := handlers.NewCartHTTP(s.Carts, s.Checkout)
	orderH := handlers.NewOrderHTTP(s.Checkout)
	commentH := handlers.NewCommentHTTP(s.Comments)
	customerH := handlers.NewCustomerHTTP(s.Customers)
	adminH := handlers.NewAdminHTTP(s.Seed, s.Invalidator)

	api := r.Group("/api")

	api.POST("/auth/login", authH.Login)
	api.POST("/auth/logout", authH.Logout)

	api.GET("/categories", catalogH.ListCategories)
	api.GET("/categories/:id", catalogH.GetCategory)
	api.POST("/categories", catalogH.CreateCategory)

	api.GET("/products", catalogH.ListProducts)
	api.GET("/products/:id", catalogH.GetProduct)
	api.POST("/products", catalogH.CreateProduct)
	api.PATCH("/products/:id", catalogH.UpdateProduct)

	api.GET("/discounts", catalogH.ListDiscounts)
	api.POST("/discounts", catalogH.CreateDiscount)

	api.GET("/comments", commentH.List)
	api.GET("/comments/:id", commentH.Get)
	api.POST("/comments", commentH.Create)
	api.POST("/comments/:id/approve", commentH.Approve)
	api.POST("/comments/:id/reject", commentH.Reject)

	api.POST("/carts", cartH.Create)
	api.GET("/carts/:id", cartH.Get)
	api.DELETE("/carts/:id", cartH.Delete)
	api.POST("/carts/:id/add_item", cartH.AddItem)
	api.POST("/carts/:id/checkout", cartH.CheckoutCart)

	api.GET("/orders/:id", orderH.Get)
	api.POST("/orders/:id/pay", orderH.Pay)

	api.POST("/customers", customerH.CreateCustomer)
	api.GET("/customers/:id", customerH.GetCustomer)
	api.POST("/addresses", customerH.CreateAddress)
	api.PUT("/addresses/:id", customerH.UpdateAddress)

	api.POST("/admin/seed", adminH.SeedDemo)

	r.NoRoute(handlers.NotFound)
	return r
}
