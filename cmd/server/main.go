package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/cache"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/config"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/crypt"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/handler"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/middleware"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/repository"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLog, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLog.Sync()

	repo, err := repository.New(cfg.Database.DSN())
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()

	// Redis is optional: catalog caching and rate limiting degrade without it.
	redisCache, err := cache.NewRedis(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		zapLog.Warn("redis unavailable, caching and rate limiting disabled", zap.Error(err))
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	cipher, err := crypt.New(cfg.Crypto.Key, cfg.Crypto.Passphrase, zapLog)
	if err != nil {
		zapLog.Fatal("failed to initialize reference cipher", zap.Error(err))
	}

	locks := service.NewUserLocks()
	offerSvc := service.NewOfferService(repo, zapLog)
	userSvc := service.NewUserService(repo, cfg.Referral.SignupBonusCredits, zapLog)
	catalogSvc := service.NewCatalogService(repo, redisCache, zapLog)
	checkoutSvc := service.NewCheckoutService(repo, offerSvc, locks, zapLog)
	paymentSvc := service.NewPaymentService(repo, offerSvc, cipher, locks, zapLog)

	h := handler.New(cfg, userSvc, catalogSvc, offerSvc, checkoutSvc, paymentSvc)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", h.Health)
	app.Post("/api/signup", middleware.RateLimit(redisCache), h.Signup)

	api := app.Group("/api", middleware.Auth(cfg))

	api.Get("/me", h.GetMe)
	api.Get("/referral", h.GetReferral)

	api.Get("/solutions", h.ListSolutions)
	api.Get("/solutions/:problem_id", h.GetSolution)

	api.Post("/checkout", middleware.RateLimit(redisCache), h.Checkout)
	api.Post("/offers/preview", h.PreviewOffer)

	api.Post("/orders", middleware.RateLimit(redisCache), h.CreateOrder)
	api.Get("/orders", h.ListMyOrders)

	admin := app.Group("/api/admin", middleware.Auth(cfg), middleware.RequireAdmin())
	admin.Get("/orders", h.ListOrders)
	admin.Post("/orders/:order_id/approve", h.ApproveOrder)
	admin.Post("/orders/:order_id/reject", h.RejectOrder)
	admin.Get("/offers", h.ListOffers)
	admin.Post("/offers", h.CreateOffer)
	admin.Post("/offers/deactivate", h.DeactivateOffer)
	admin.Post("/solutions", h.CreateSolution)

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zapLog.Fatal("server stopped", zap.Error(err))
		}
	}()
	zapLog.Info("server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
