package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"gympay_backend/internal/config"
	"gympay_backend/internal/handlers"
	appMiddleware "gympay_backend/internal/middleware"
	"gympay_backend/internal/services"
	"gympay_backend/web/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = services.InitDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		// Run auto-migration
		if err := services.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
	} else {
		log.Println("Warning: DATABASE_URL not set, checkout sessions will not be persisted")
	}

	// Initialize Redis (optional status cache)
	var cache services.Cache
	if cfg.RedisURL != "" {
		rc, err := services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	gateway := services.NewArifPayService(cfg)
	checkoutService := services.NewCheckoutService(cfg, gateway, db, cache)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS()) // the mobile app calls this API cross-origin

	e.HTTPErrorHandler = appMiddleware.JSONErrorHandler
	e.Renderer = templates.NewRenderer()

	// Initialize handlers
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	callbackHandler := handlers.NewCallbackHandler(db, cache)

	// Checkout API
	e.POST("/api/create-subscription-checkout", checkoutHandler.CreateSubscriptionCheckout)
	e.POST("/api/payment/status", checkoutHandler.CheckPaymentStatus)

	// Gateway callbacks
	e.GET("/payment/success", callbackHandler.PaymentSuccess)
	e.GET("/payment/cancel", callbackHandler.PaymentCancel)
	e.GET("/payment/error", callbackHandler.PaymentError)
	e.POST("/payment/notify", callbackHandler.PaymentNotify)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
