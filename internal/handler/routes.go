package handler

import (
	"strings"

	mid "catalog-service/internal/middleware"
	"catalog-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register mounts every route on e. admin may be nil to serve the
// storefront alone.
func Register(e *echo.Echo, front *Storefront, admin *Admin, db Pinger, media config.MediaConfig, version string) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", Health(db))
	e.GET("/version", Version(version))

	if media.Backend == config.StorageLocal {
		e.Static("/"+strings.Trim(media.URL, "/"), media.Root)
	}

	api := e.Group("/api")
	api.GET("/home", front.Home)
	api.GET("/products", front.ListProducts)
	api.GET("/products/:slug", front.ProductDetail)
	api.GET("/search", front.QuickSearch)
	api.GET("/about", front.About)
	api.POST("/contact", front.Contact)
	api.POST("/newsletter", front.Newsletter)

	if admin == nil {
		return
	}

	// Admin API routes - every route requires a valid bearer token
	adm := e.Group("/admin/api", mid.AuthMiddleware)

	adm.GET("/categories", admin.ListCategories)
	adm.GET("/categories/:id", admin.GetCategory)
	adm.POST("/categories", admin.CreateCategory)
	adm.PUT("/categories/:id", admin.UpdateCategory)
	adm.DELETE("/categories/:id", admin.DeleteCategory)

	adm.GET("/brands", admin.ListBrands)
	adm.POST("/brands", admin.CreateBrand)
	adm.PUT("/brands/:id", admin.UpdateBrand)
	adm.DELETE("/brands/:id", admin.DeleteBrand)

	adm.GET("/products", admin.ListProducts)
	adm.GET("/products/:id", admin.GetProduct)
	adm.POST("/products", admin.CreateProduct)
	adm.PUT("/products/:id", admin.UpdateProduct)
	adm.DELETE("/products/:id", admin.DeleteProduct)
	adm.POST("/products/:id/images/:slot", admin.UploadImage)

	adm.POST("/images/optimize", admin.OptimizeImages)

	adm.GET("/testimonials", admin.ListTestimonials)
	adm.POST("/testimonials", admin.CreateTestimonial)
	adm.PUT("/testimonials/:id", admin.UpdateTestimonial)
	adm.DELETE("/testimonials/:id", admin.DeleteTestimonial)

	adm.GET("/contacts", admin.ListContacts)
	adm.POST("/contacts/:id/resolve", admin.ResolveContact)
	adm.DELETE("/contacts/:id", admin.DeleteContact)

	adm.GET("/newsletter", admin.ListSubscribers)
	adm.POST("/newsletter/active", admin.SetSubscribersActive)
}
