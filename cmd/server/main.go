package main

import (
	"net/http"

	"storefront-api/internal/cart"
	"storefront-api/internal/category"
	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/httpapi"
	"storefront-api/internal/logger"
	"storefront-api/internal/middleware"
	"storefront-api/internal/order"
	"storefront-api/internal/product"
	"storefront-api/internal/user"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	categoryRepo := category.NewRepository(database)
	categorySvc := category.NewService(categoryRepo)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo)

	h := &httpapi.Handler{
		UserSvc:     userSvc,
		ProductSvc:  productSvc,
		CategorySvc: categorySvc,
		CartSvc:     cartSvc,
		OrderSvc:    orderSvc,
	}

	mux := httpapi.NewRouter(h)

	handler := logger.RequestIDMiddleware(
		logger.LoggingMiddleware(
			middleware.RateLimitMiddleware(
				middleware.AuthMiddleware(mux),
			),
		),
	)

	logger.L().Info("🚀 server listening", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, handler); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
