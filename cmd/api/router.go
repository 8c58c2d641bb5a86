package main

import (
	"context"
	"net/http"
	"time"

	"bookstore-proxy/internal/shared/middleware"
	"bookstore-proxy/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
	)

	// Static uploads: chỉ khi ảnh nằm trên local disk
	if root, ok := c.LocalRoot(); ok && c.Config.Storage.ServeStatic {
		router.Static(c.Config.Storage.PublicPrefix, root)
	}

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))
		middleware.AllowOnly(api, "/health", http.MethodGet)

		setupBookRoutes(api, c)
	}

	return router
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(api *gin.RouterGroup, c *container.Container) {
	books := api.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.POST("", c.BookHandler.CreateBook)
		middleware.AllowOnly(books, "", http.MethodGet, http.MethodPost)

		books.GET("/:id", c.BookHandler.GetBook)
		books.PUT("/:id", c.BookHandler.UpdateBook)
		books.DELETE("/:id", c.BookHandler.DeleteBook)
		middleware.AllowOnly(books, "/:id", http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// healthCheckHandler reports storage and cache status. Storage is required;
// the cache is optional and never fails the check.
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		storageStatus := "ok"
		if err := appCtx.Assets.Ping(ctx); err != nil {
			storageStatus = "error: " + err.Error()
			health["status"] = "degraded"
		}

		cacheStatus := "disabled"
		if appCtx.Cache != nil {
			cacheStatus = "ok"
			if err := appCtx.Cache.Ping(ctx); err != nil {
				cacheStatus = "error: " + err.Error()
			}
		}

		health["services"] = gin.H{
			"storage":  storageStatus,
			"cache":    cacheStatus,
			"upstream": appCtx.Upstream.BaseURL(),
		}

		statusCode := http.StatusOK
		if storageStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
