package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/mystore/internal/config"
	"github.com/example/mystore/internal/database"
	"github.com/example/mystore/internal/handlers"
	"github.com/example/mystore/internal/logger"
	"github.com/example/mystore/internal/ratelimit"
	"github.com/example/mystore/internal/repository"
	"github.com/example/mystore/internal/routes"
	"github.com/example/mystore/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.AppEnv == "development")
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zlog.Sync()

	db, client, err := database.ConnectMongo(cfg.MongoURI, cfg.MongoDatabase, zlog)
	if err != nil {
		zlog.Fatalf("mongo connect failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	var limiter ratelimit.Store
	if cfg.RateLimitBackend == "redis" {
		rdb, err := database.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, zlog)
		if err != nil {
			zlog.Fatalf("redis connect failed: %v", err)
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisStore(rdb, "ratelimit")
	} else {
		limiter = ratelimit.NewMemoryStore()
	}

	users := repository.NewMongoUserRepo(db)
	carts := repository.NewMongoCartRepo(db)
	orders := repository.NewMongoOrderRepo(db)
	otps := repository.NewMongoOTPRepo(db)

	sms := services.NewFast2SMSClient(cfg.SMSAPIKey, zlog)
	mailer := services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, zlog)

	authHandler := handlers.NewAuthHandler(users, mailer, cfg)
	otpHandler := handlers.NewOTPHandler(users, otps, limiter, sms, cfg, zlog)
	cartHandler := handlers.NewCartHandler(carts)
	orderHandler := handlers.NewOrderHandler(carts, orders, zlog)

	app := fiber.New(fiber.Config{
		AppName:      "MY STORE Backend",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	routes.Register(app, cfg, authHandler, otpHandler, cartHandler, orderHandler)

	zlog.Infof("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		zlog.Fatalf("fiber.Listen error: %v", err)
	}
}
