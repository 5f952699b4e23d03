package main

import (
	"log"
	"net/http"

	"hoalan-be/internal/cart"
	"hoalan-be/internal/config"
	"hoalan-be/internal/db"
	"hoalan-be/internal/delivery"
	"hoalan-be/internal/httpapi"
	"hoalan-be/internal/logger"
	"hoalan-be/internal/mail"
	"hoalan-be/internal/middleware"
	"hoalan-be/internal/order"
	"hoalan-be/internal/payment"
	"hoalan-be/internal/payment/callback"
	"hoalan-be/internal/user"

	"github.com/go-chi/chi/v5"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	orderRepo := order.NewRepository(database)
	cartRepo := cart.NewRepository()
	userRepo := user.NewRepository(database)

	gateway := payment.NewVNPayGateway(cfg.VNPay)
	quoter := delivery.NewGHNClient(cfg.Delivery)

	mailer, err := mail.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		log.Fatalf("Failed to init mailer: %v", err)
	}

	orderSvc := order.NewService(orderRepo, cartRepo, userRepo, gateway, quoter, mailer, cfg.ClientBaseURL)

	apiHandler := httpapi.NewHandler(orderSvc)
	callbackHandler := callback.NewHandler(orderSvc, gateway, cfg.ClientBaseURL)

	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	r.Use(middleware.RateLimitMiddleware)

	r.Group(apiHandler.Routes)
	r.Get("/payment/vnpay/callback", callbackHandler.HandleReturn)

	log.Printf("🚀 Server running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, r))
}
