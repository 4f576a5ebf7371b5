package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/Noor-Islam16/Coupon-Backend/internal/handlers"
	"github.com/Noor-Islam16/Coupon-Backend/internal/metrics"
	"github.com/Noor-Islam16/Coupon-Backend/internal/middleware"
	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
)

// Services groups everything the HTTP layer depends on.
type Services struct {
	Auth     *services.AuthService
	Guard    *services.SessionGuard
	Profiles *services.ProfileService
	Coupons  *services.CouponManager

	// AuthLimiter throttles the unauthenticated auth endpoints. Optional.
	AuthLimiter *middleware.IPRateLimiter
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, svc Services) {
	authHandler := handlers.NewAuthHandler(svc.Auth)
	passwordHandler := handlers.NewPasswordResetHandler(svc.Auth)
	profileHandler := handlers.NewProfileHandler(svc.Profiles)
	couponHandler := handlers.NewCouponHandler(svc.Coupons)
	adminHandler := handlers.NewAdminHandler(svc.Coupons)

	requireAuth := middleware.Auth(svc.Guard)
	requireVerified := middleware.RequireVerified(svc.Guard)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	if svc.AuthLimiter != nil {
		auth.Use(svc.AuthLimiter.Handler())
	}
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/select-verification", authHandler.SelectVerification)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/resend-otp", requireAuth, authHandler.ResendOTP)
	auth.Get("/me", requireAuth, authHandler.Me)
	auth.Post("/forgot-password", passwordHandler.ForgotPassword)
	auth.Post("/reset-password", passwordHandler.ResetPassword)

	// Profile routes
	profile := api.Group("/profile", requireAuth)
	profile.Get("/", profileHandler.GetProfile)
	profile.Post("/", profileHandler.SaveProfile)
	profile.Put("/", profileHandler.SaveProfile)
	profile.Delete("/", profileHandler.DeleteProfile)
	profile.Put("/picture", profileHandler.UpdatePicture)

	// Coupons: reads are public, writes need a verified account
	coupons := api.Group("/coupons")
	coupons.Get("/", couponHandler.ListActive)
	coupons.Get("/all", couponHandler.ListAll)
	coupons.Get("/stats", adminHandler.DashboardStats)
	coupons.Get("/:couponId", couponHandler.GetCoupon)
	coupons.Post("/", requireAuth, requireVerified, couponHandler.CreateCoupon)
	coupons.Put("/:couponId", requireAuth, requireVerified, couponHandler.UpdateCoupon)
	coupons.Delete("/:couponId", requireAuth, requireVerified, couponHandler.DeleteCoupon)
}
