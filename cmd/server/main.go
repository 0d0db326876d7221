package main

import (
	"context"
	"log"
	"net/http"
	"time"

	_ "usermgmt/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"usermgmt/internal/auth"
	"usermgmt/internal/cache"
	"usermgmt/internal/config"
	"usermgmt/internal/db"
	"usermgmt/internal/handler"
	"usermgmt/internal/mailer"
	"usermgmt/internal/model"
	"usermgmt/internal/repository"
	"usermgmt/internal/router"
	"usermgmt/internal/service"
)

// @title User Management API
// @version 1.0
// @description User account service with registration, email verification codes, and JWT login.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Printf("redis unavailable, user lookups will skip the cache: %v", err)
	}
	cancel()

	smtpSender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Initialize services
	verificationService := service.NewVerificationService(userRepo, smtpSender, cacheClient)
	authService := service.NewAuthService(userRepo, jwtService, verificationService)
	userService := service.NewUserService(userRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	verificationHandler := handler.NewVerificationHandler(verificationService)
	userHandler := handler.NewUserHandler(userService)

	// Register routes
	router.Register(e, cfg, authHandler, verificationHandler, userHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
