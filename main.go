package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"goldlegacy/internal/handlers"
	"goldlegacy/internal/middleware"
	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"
	"goldlegacy/internal/services"
	"goldlegacy/pkg/events"
	"goldlegacy/pkg/mailer"
	"goldlegacy/pkg/mercadopago"
)

func main() {
	// --- Configuration ---
	// Viper reads from environment variables; the defaults are enough for a
	// local run against a local Postgres.
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("APP_BASE_URL", "http://localhost:3000")
	viper.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=goldlegacy port=5432 sslmode=disable")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("SMTP_PORT", 2525)
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	baseURL := viper.GetString("APP_BASE_URL")

	// --- Database ---
	db, err := gorm.Open(postgres.Open(viper.GetString("DATABASE_URL")), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.UserAddress{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// --- Event publisher ---
	// The broker is optional: without RABBITMQ_URL (or when the connection
	// fails) the shop runs with events disabled.
	var publisher *events.Publisher
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		publisher, err = events.NewPublisher(events.Config{URL: mqURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, continuing without events: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// --- Outbound integrations ---
	gateway := mercadopago.NewClient(mercadopago.Config{
		AccessToken: viper.GetString("MP_ACCESS_TOKEN"),
	})
	mail := mailer.NewMailer(mailer.Config{
		Host:     viper.GetString("SMTP_HOST"),
		Port:     viper.GetInt("SMTP_PORT"),
		User:     viper.GetString("SMTP_USER"),
		Password: viper.GetString("SMTP_PASSWORD"),
		From:     viper.GetString("SMTP_FROM"),
	})

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	addressRepo := repositories.NewGORMAddressRepository(db)
	auditRepo := repositories.NewGORMAuditLogRepository(db)

	// --- Services ---
	auditService := services.NewAuditService(auditRepo)
	authService := services.NewAuthService(userRepo, auditService, viper.GetString("JWT_SECRET"))
	if clientID := viper.GetString("GOOGLE_CLIENT_ID"); clientID != "" {
		authService.ConfigureGoogle(clientID, viper.GetString("GOOGLE_CLIENT_SECRET"))
	}
	catalogService := services.NewCatalogService(productRepo, categoryRepo, auditService)
	orderService := services.NewOrderService(db, orderRepo, auditService, publisher)
	paymentService := services.NewPaymentService(db, orderRepo, gateway, mail, publisher, baseURL)
	addressService := services.NewAddressService(addressRepo)
	importService := services.NewImportService(productRepo, categoryRepo, auditService)
	exportService := services.NewExportService(orderRepo, categoryRepo)
	summaryService := services.NewSummaryService(db, orderRepo)

	// --- Admin bootstrap ---
	if adminEmail := viper.GetString("ADMIN_EMAIL"); adminEmail != "" {
		if err := authService.EnsureAdmin(adminEmail, viper.GetString("ADMIN_PASSWORD")); err != nil {
			log.Fatalf("Failed to ensure admin account: %v", err)
		}
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(catalogService)
	categoryHandler := handlers.NewCategoryHandler(catalogService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	addressHandler := handlers.NewAddressHandler(addressService)
	adminHandler := handlers.NewAdminHandler(authService, auditService, summaryService, importService, exportService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New())
	app.Use(middleware.CurrentUser(authService))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Storefront routes; orders and payment preferences accept guests, the
	// rest guard themselves per route.
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	categoryHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	paymentHandler.RegisterRoutes(apiV1)
	addressHandler.RegisterRoutes(apiV1)

	// Back-office routes.
	admin := apiV1.Group("/admin", middleware.AuthRequired(), middleware.AdminRequired())
	productHandler.RegisterAdminRoutes(admin)
	categoryHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	adminHandler.RegisterRoutes(admin)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start Event Consumer in a Goroutine ---
	// Logs order lifecycle events; downstream consumers (inventory sync,
	// notifications) would hang off the same queue.
	if publisher != nil {
		go func() {
			log.Println("Starting order event consumer...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received order event (tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := publisher.ConsumeOrderEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start event consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
