package main

import (
	"os"
	"os/signal"
	"syscall"

	configs "github.com/dashmed/dashmed/config"
	"github.com/dashmed/dashmed/internal/constants"
	"github.com/dashmed/dashmed/internal/handler"
	"github.com/dashmed/dashmed/internal/mailer"
	"github.com/dashmed/dashmed/internal/repository"
	"github.com/dashmed/dashmed/internal/router"
	"github.com/dashmed/dashmed/internal/service"
	"github.com/dashmed/dashmed/internal/session"
	"github.com/dashmed/dashmed/internal/view"
	"github.com/dashmed/dashmed/pkg/database"
	"github.com/dashmed/dashmed/pkg/logger"
	"github.com/dashmed/dashmed/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if err := database.Seed(db); err != nil {
		// Seed data may already exist; the app still serves.
		logger.GetLogger().Error("Failed to seed database", zap.Error(err))
	}

	redisClient := redis.NewClient(redis.Config{
		Host:         config.Redis.Host,
		Port:         config.Redis.Port,
		Password:     config.Redis.Password,
		DB:           config.Redis.Database,
		Enabled:      config.Redis.Enabled,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
	}, logger.GetLogger())
	defer redisClient.Close()

	// Sessions live in Redis when it is reachable, otherwise in memory.
	var sessionStore session.Store
	if redisClient.IsEnabled() {
		sessionStore = session.NewRedisStore(redisClient.Raw(), config.Security.SessionTTL)
	} else {
		logger.GetLogger().Warn("Redis disabled, sessions will not survive restarts")
		sessionStore = session.NewMemoryStore(config.Security.SessionTTL)
	}
	cookieSecure := config.App.Environment == "production"
	sessions := session.NewManager(sessionStore, config.Security.SessionCookieName, cookieSecure)

	mail, err := mailer.NewSMTPMailer(config.Mail, config.App.BaseURL)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize mailer", zap.Error(err))
	}

	doctorRepo := repository.NewDoctorRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	patientRepo := repository.NewPatientRepository(db)

	authService := service.NewAuthService(doctorRepo, mail, constants.VerificationTokenTTL)
	resetService := service.NewPasswordResetService(doctorRepo, resetRepo, mail, constants.PasswordResetTTL)
	profileService := service.NewProfileService(doctorRepo, mail, constants.VerificationTokenTTL)
	dashboardService := service.NewDashboardService(patientRepo)

	views, err := view.NewRenderer(config.App.Name)
	if err != nil {
		logger.GetLogger().Fatal("Failed to parse templates", zap.Error(err))
	}
	pages := handler.NewPageWriter(views, config.Security.CSRFTTL)

	r := router.NewRouter(
		handler.NewHomeHandler(),
		handler.NewAuthHandler(pages, authService, sessions),
		handler.NewVerifyEmailHandler(pages, authService),
		handler.NewPasswordResetHandler(pages, resetService,
			config.Security.ForgotPasswordMaxAttempts, config.Security.ForgotPasswordWindow),
		handler.NewProfileHandler(pages, profileService, sessions,
			config.Security.ForceReauthOnPasswordChange),
		handler.NewDashboardHandler(pages, dashboardService),
		handler.NewHealthHandler(db, config.App.Debug, config.Security.HealthDBKey),
		pages,
		sessions,
		config,
		"./web/static",
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("base_url", config.App.BaseURL),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
