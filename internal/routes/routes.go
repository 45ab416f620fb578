package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kissariya_back_end/internal/config"
	"kissariya_back_end/internal/handlers/buyer"
	"kissariya_back_end/internal/handlers/product"
	"kissariya_back_end/internal/handlers/shop"
	"kissariya_back_end/internal/middleware"
)

// Deps regroupe les handlers et services branchés sur le routeur.
type Deps struct {
	Config      config.Config
	Redis       *redis.Client
	CartCookies sessions.Store
	Cart        *buyer.Handler
	Shops       *shop.Handler
	Products    *product.Handler
	Log         *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.CartSessionHeader},
		ExposeHeaders:    []string{middleware.CartSessionHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	secret := []byte(d.Config.JWTSecret)
	api := r.Group("/api", middleware.RateLimit(d.Redis, "api_requests", d.Config.RateLimitPerMinute, middleware.APICooldown, d.Log))

	// 🛒 Panier (visiteurs anonymes, identifiés par cookie)
	cart := api.Group("/cart", middleware.CartSession(d.CartCookies, d.Log))
	{
		writes := middleware.RateLimit(d.Redis, "cart_writes", middleware.CartMaxWrites, middleware.APICooldown, d.Log)

		cart.GET("", d.Cart.Get)
		cart.POST("/items", writes, d.Cart.Add)
		cart.PUT("/items/:id", writes, d.Cart.UpdateQuantity)
		cart.DELETE("/items/:id", d.Cart.Remove)
		cart.DELETE("", d.Cart.Clear)
		cart.GET("/checkout", d.Cart.Checkout)
		cart.GET("/ws", d.Cart.Stream)
	}

	// 🌍 Catalogue public
	searchLimit := middleware.RateLimit(d.Redis, "search_requests", middleware.SearchMaxRequests, middleware.APICooldown, d.Log)
	api.GET("/explore", d.Shops.Explore)
	api.GET("/search", searchLimit, d.Shops.Search)
	api.GET("/shops", d.Shops.ListShops)
	api.GET("/shops/:slug", middleware.OptionalAuth(secret), d.Shops.PublicShop)
	api.GET("/shops/:slug/qrcode", d.Shops.QRCode)
	api.GET("/products/:id/inquiry", middleware.OptionalAuth(secret), d.Shops.Inquiry)

	// 🏪 Espace marchand
	me := api.Group("/me", middleware.AuthRequired(secret, d.Log))
	{
		me.GET("/shop", d.Shops.GetMyShop)
		me.POST("/shop", d.Shops.CreateShop)
		me.PUT("/shop", d.Shops.UpdateShop)
		me.GET("/stats", d.Shops.Stats)

		me.GET("/categories", d.Products.ListCategories)
		me.POST("/categories", d.Products.CreateCategory)
		me.PUT("/categories/:id", d.Products.RenameCategory)
		me.DELETE("/categories/:id", d.Products.DeleteCategory)
		me.GET("/categories/:id/subcategories", d.Products.ListSubcategories)
		me.POST("/categories/:id/subcategories", d.Products.CreateSubcategory)
		me.PUT("/categories/:id/subcategories/:subID", d.Products.RenameSubcategory)
		me.DELETE("/categories/:id/subcategories/:subID", d.Products.DeleteSubcategory)

		me.GET("/products", d.Products.ListProducts)
		me.POST("/products", d.Products.CreateProduct)
		me.PUT("/products/:id", d.Products.UpdateProduct)
		me.DELETE("/products/:id", d.Products.DeleteProduct)

		me.POST("/images", d.Products.UploadImage)
	}

	return r
}
