// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/config"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/database"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/events"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/gateway"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/handler"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/repository"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// ── 1. Configuration ─────────────────────────────────────────────────
	_ = godotenv.Load() // optional .env for local development
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 2. Connect to PostgreSQL and migrate ─────────────────────────────
	pool, err := database.NewPool(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	// ── 3. External collaborators ────────────────────────────────────────
	var publisher service.EventPublisher = events.Nop{}
	if cfg.AMQPURL != "" {
		pub, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer pub.Close()
		publisher = pub
		log.Println("✓ Connected to RabbitMQ")
	}
	payGateway := gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	// ── 4. Wire up layers ────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, time.Duration(cfg.JWTExpireMin)*time.Minute)
	vehicleSvc := service.NewVehicleService(vehicleRepo)
	bookingSvc := service.NewBookingService(vehicleRepo, bookingRepo, publisher)
	settlementSvc := service.NewSettlementService(bookingRepo, payGateway, publisher, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	authHandler := handler.NewAuthHandler(authSvc)
	vehicleHandler := handler.NewVehicleHandler(vehicleSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, settlementSvc)

	// ── 5. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // permissive CORS for the SPA client

	// Health
	r.Get("/health", handler.HealthCheck)

	// API routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/vehicles", func(r chi.Router) {
		r.Get("/", vehicleHandler.List)
		r.Get("/{id}", vehicleHandler.Get)
		r.Get("/{id}/availability", vehicleHandler.Availability)
		r.With(handler.RequireAuth(cfg.JWTSecret)).Post("/", vehicleHandler.Create)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Use(handler.RequireAuth(cfg.JWTSecret))
		r.Post("/", bookingHandler.Request)
		r.Get("/", bookingHandler.List)
		r.Get("/{id}", bookingHandler.Get)
		r.Post("/{id}/order", bookingHandler.CreateOrder)
		r.Post("/{id}/confirm", bookingHandler.ConfirmPayment)
		r.Post("/{id}/cancel", bookingHandler.Cancel)
	})

	// ── 6. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
