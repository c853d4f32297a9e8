// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-storefront/config"
	"go-storefront/controllers"
	"go-storefront/logger"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/routes"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.Development())
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		zlog.Fatalf("mongo connect: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		zlog.Fatalf("mongo ping: %v", err)
	}

	st := store.NewMongo(client.Database(cfg.Mongo.Database))
	if err := st.EnsureUniqueIndex(ctx, models.UserCollection, "email"); err != nil {
		zlog.Fatalf("user email index: %v", err)
	}

	// Initialize EmailService
	emailService := utils.NewEmailService(cfg.Email.APIKey, cfg.Email.Sender)
	if cfg.Email.APIKey == "" {
		zlog.Warn("SENDGRID_API_KEY is not set; order emails will fail")
	}

	auth := middleware.NewAuthMiddleware([]byte(cfg.JWT.Secret), st, zlog)

	// Initialize controllers
	userController := controllers.NewUserController(st, cfg, zlog)
	categoryController := controllers.NewCategoryController(st, zlog)
	productController := controllers.NewProductController(st, zlog)
	cartController := controllers.NewCartController(st, zlog)
	orderController := controllers.NewOrderController(st, emailService, zlog)

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(zlog))
	routes.RegisterRoutes(router, auth, userController, categoryController, productController, cartController, orderController)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start the server
	go func() {
		zlog.Infof("Server is running on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatalf("listen failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zlog.Info("shutdown requested")

	timeoutCtx, cancel2 := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel2()

	_ = srv.Shutdown(timeoutCtx)
	_ = client.Disconnect(timeoutCtx)
	zlog.Info("shutdown completed")
}
