package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chore-quest-system/config"
	"chore-quest-system/handlers"
	"chore-quest-system/models"
	"chore-quest-system/services"
	"chore-quest-system/utils"
	"chore-quest-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // proof photos
	})

	allowedOriginsList := strings.Split(cfg.AllowedOrigins, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Account{},
		&models.Quest{},
		&models.Reward{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if cfg.R2Bucket != "" {
		if err := utils.InitR2(utils.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		}); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
	} else {
		log.Println("⚠️  R2_BUCKET_NAME not set — proof photo uploads disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := workers.NewPushNotifier(cfg.PushServiceURL, cfg.PushServiceToken)
	go notifier.Run(ctx)

	progressionService := services.NewProgressionService(notifier)
	accountService := services.NewAccountService(db, notifier)
	authService := services.NewAuthService(db, cfg.TokenSecret, cfg.TokenTTL)
	questService := services.NewQuestService(db, progressionService, notifier)
	rewardService := services.NewRewardService(db, notifier)

	sched, err := questService.StartSettlementScheduler(cfg.SettlementInterval)
	if err != nil {
		log.Fatal("failed to start settlement scheduler:", err)
	}
	defer func() { _ = sched.Shutdown() }()

	handlers.SetupAccountRoutes(app, accountService, authService)
	handlers.SetupQuestRoutes(app, questService, authService)
	handlers.SetupRewardRoutes(app, rewardService, authService)

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on %s", cfg.ListenAddr)
	log.Println("✅ Push notification dispatcher running")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
