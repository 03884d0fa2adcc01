package http

import (
	"github.com/gin-gonic/gin"
	"github.com/lguillozl/ecommerce-api/internal/adapter/http/middleware"
	"github.com/lguillozl/ecommerce-api/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(ch *CartHandler, ph *ProductHandler, uh *UserHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.Logging(logging.New("http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")

	users := v1.Group("/users")
	{
		users.POST("", uh.Signup)
		users.POST("/login", uh.Login)
		users.GET("/orders", authz.Protect(), uh.ListOrders)
		users.GET("/orders/:id", authz.Protect(), uh.GetOrderByID)
	}

	products := v1.Group("/products")
	{
		products.GET("", ph.List)
		products.GET("/categories", ph.ListCategories)
		products.GET("/:id", ph.Get)

		products.POST("", authz.Protect(), ph.Create)
		products.POST("/categories", authz.Protect(), ph.CreateCategory)
		products.PATCH("/:id", authz.Protect(), ph.Update)
		products.DELETE("/:id", authz.Protect(), ph.Delete)
	}

	cart := v1.Group("/cart", authz.Protect())
	{
		cart.GET("", ch.GetCart)
		cart.POST("/add-product", ch.AddProduct)
		cart.PATCH("/update-cart", ch.UpdateProduct)
		cart.POST("/purchase", ch.Purchase)
		cart.DELETE("/:productId", ch.DeleteProduct)
	}

	return r
}
