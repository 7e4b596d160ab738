package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"carma/internal/caching"
	"carma/internal/config"
	"carma/internal/handlers"
	"carma/internal/jobs/background"
	"carma/internal/middleware"
	"carma/internal/repositories"
	"carma/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	companyRepo := repositories.NewCompanyRepo(pool)
	projectRepo := repositories.NewProjectRepo(pool)
	membershipRepo := repositories.NewMembershipRepo(pool)
	consumptionRepo := repositories.NewConsumptionRepo(pool)
	inviteRepo := repositories.NewInviteRepo(pool)
	activityTypeRepo := repositories.NewActivityTypeRepo(pool)
	fuelTypeRepo := repositories.NewFuelTypeRepo(pool)
	unitRepo := repositories.NewUnitRepo(pool)

	// Cache and outbound mail
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	mailer := services.NewSMTPMailer(cfg)

	// Services
	tokenSvc := services.NewTokenService(cfg)
	inviteSvc := services.NewInviteService(pool, inviteRepo, userRepo, mailer, cfg.InviteLinkBase, cfg.InviteExpiry)
	consumptionSvc := services.NewConsumptionService(consumptionRepo, projectRepo)

	// Handlers
	resolver := handlers.NewCallerResolver(membershipRepo)
	authHandler := handlers.NewAuthHandler(userRepo, tokenSvc)
	userHandler := handlers.NewUserHandler(userRepo, membershipRepo, inviteSvc, resolver)
	inviteHandler := handlers.NewInviteHandler(inviteSvc, resolver)
	projectHandler := handlers.NewProjectHandler(projectRepo, resolver)
	consumptionHandler := handlers.NewConsumptionHandler(consumptionSvc, resolver)
	optionsHandler := handlers.NewOptionsHandler(companyRepo, activityTypeRepo, fuelTypeRepo, unitRepo, cacheSvc, resolver)
	healthHandler := handlers.NewHealthHandler(pool, cacheSvc)

	// Background jobs
	scheduler, err := background.NewJobScheduler(inviteSvc)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	auth := middleware.Auth(tokenSvc)

	// Health endpoints (no auth required)
	e.GET("/health", healthHandler.Live)
	e.GET("/health/ready", healthHandler.Ready)

	// Authentication
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/refresh", authHandler.Refresh)

	// Consumption records
	consumption := e.Group("/consumption", auth)
	consumption.GET("", consumptionHandler.List)
	consumption.POST("", consumptionHandler.Create)
	consumption.PUT("/:id", consumptionHandler.Update)
	consumption.DELETE("/:id", consumptionHandler.Delete)

	// Projects
	projects := e.Group("/projects", auth)
	projects.GET("", projectHandler.List)
	projects.POST("", projectHandler.Create)
	projects.GET("/:id", projectHandler.Get)
	projects.PUT("/:id", projectHandler.Update)
	projects.DELETE("/:id", projectHandler.Delete)

	// Users. POST /users stays public: it redeems an invite token and is the
	// only way an account gets created.
	e.POST("/users", userHandler.Redeem)
	users := e.Group("/users", auth)
	users.GET("", userHandler.List)
	users.GET("/me", userHandler.GetMe)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)
	users.GET("/:id/projects", userHandler.ListProjects)

	// Invites. The token lookup is public so the registration page can
	// prefill the invitee's identity.
	e.GET("/invites/token/:token", inviteHandler.GetByToken)
	invites := e.Group("/invites", auth)
	invites.GET("", inviteHandler.List)
	invites.POST("", inviteHandler.Create)
	invites.DELETE("/:id", inviteHandler.Cancel)
	invites.POST("/:id/resend", inviteHandler.Resend)

	// Reference data
	options := e.Group("/options", auth)
	options.GET("/companies", optionsHandler.ListCompanies)
	options.POST("/companies", optionsHandler.CreateCompany)
	options.PUT("/companies/:id", optionsHandler.UpdateCompany)
	options.DELETE("/companies/:id", optionsHandler.DeleteCompany)
	options.GET("/activity-types", optionsHandler.ListActivityTypes)
	options.POST("/activity-types", optionsHandler.CreateActivityType)
	options.PUT("/activity-types/:id", optionsHandler.UpdateActivityType)
	options.DELETE("/activity-types/:id", optionsHandler.DeleteActivityType)
	options.GET("/fuel-types", optionsHandler.ListFuelTypes)
	options.POST("/fuel-types", optionsHandler.CreateFuelType)
	options.PUT("/fuel-types/:id", optionsHandler.UpdateFuelType)
	options.DELETE("/fuel-types/:id", optionsHandler.DeleteFuelType)
	options.GET("/units", optionsHandler.ListUnits)
	options.POST("/units", optionsHandler.CreateUnit)
	options.PUT("/units/:id", optionsHandler.UpdateUnit)
	options.DELETE("/units/:id", optionsHandler.DeleteUnit)

	log.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
