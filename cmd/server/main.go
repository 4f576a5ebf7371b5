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
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Noor-Islam16/Coupon-Backend/internal/cache"
	"github.com/Noor-Islam16/Coupon-Backend/internal/config"
	"github.com/Noor-Islam16/Coupon-Backend/internal/database"
	"github.com/Noor-Islam16/Coupon-Backend/internal/events"
	"github.com/Noor-Islam16/Coupon-Backend/internal/handlers"
	"github.com/Noor-Islam16/Coupon-Backend/internal/logger"
	"github.com/Noor-Islam16/Coupon-Backend/internal/mailer"
	"github.com/Noor-Islam16/Coupon-Backend/internal/middleware"
	"github.com/Noor-Islam16/Coupon-Backend/internal/repository"
	"github.com/Noor-Islam16/Coupon-Backend/internal/routes"
	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
	"github.com/Noor-Islam16/Coupon-Backend/internal/storage"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Development)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatalw("database unavailable", "error", err)
	}

	mail, err := mailer.New(cfg.Mail, zlog)
	if err != nil {
		zlog.Fatalw("mailer init failed", "error", err)
	}

	assets, err := storage.New(ctx, cfg.Assets)
	if err != nil {
		zlog.Fatalw("asset store init failed", "error", err)
	}
	if assets == nil {
		zlog.Warn("no asset driver configured, coupon images disabled")
	} else {
		assets = storage.WithBreaker(assets, cfg.Assets.Driver, 30*time.Second, zlog)
	}

	publisher := events.NewKafkaPublisher(cfg.Kafka, zlog)
	defer publisher.Close()

	authOpts := []services.AuthOption{services.WithAuthEvents(publisher)}
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		zlog.Warnw("redis unavailable, otp rate limiting disabled", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		authOpts = append(authOpts, services.WithOTPLimiter(cache.NewOTPLimiter(redisClient, cfg.OTP.MaxPerHour, time.Hour)))
	}

	users := repository.NewUserRepository(db)
	authService := services.NewAuthService(
		users,
		repository.NewOTPRepository(db),
		mail,
		services.AuthConfig{
			JWTSecret:     cfg.JWTSecret,
			TokenTTL:      cfg.TokenExpires,
			RememberMeTTL: cfg.RememberMeExpires,
			OTPExpiry:     cfg.OTP.Expiry,
			OTPSubject:    cfg.OTP.EmailSubject,
		},
		zlog,
		authOpts...,
	)
	profileService := services.NewProfileService(users, repository.NewProfileRepository(db), zlog)

	images := services.DefaultImageConstraints
	images.MaxSizeBytes = cfg.Assets.MaxSizeBytes
	couponManager := services.NewCouponManager(
		repository.NewCouponRepository(db),
		assets,
		services.CouponManagerConfig{Retention: cfg.Coupons.Retention, Images: images},
		zlog,
		services.WithCouponEvents(publisher),
	)

	scheduler := services.NewCouponScheduler(couponManager, cfg.Coupons.SweepInterval, cfg.Coupons.CleanupInterval, zlog)
	go scheduler.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "Coupon Backend",
		ErrorHandler: handlers.ErrorHandler(zlog),
		BodyLimit:    int(cfg.Assets.MaxSizeBytes) + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	routes.Register(app, routes.Services{
		Auth:     authService,
		Guard:    services.NewSessionGuard(authService),
		Profiles: profileService,
		Coupons:  couponManager,

		AuthLimiter: middleware.NewIPRateLimiter(ctx, cfg.AuthRatePerMinute, 5, zlog),
	})

	go func() {
		<-ctx.Done()
		zlog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Errorw("fiber shutdown", "error", err)
		}
	}()

	zlog.Infow("starting server", "port", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		zlog.Fatalw("fiber.Listen error", "error", err)
	}
}
