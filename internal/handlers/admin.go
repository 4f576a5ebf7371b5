package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
)

// AdminHandler serves dashboard endpoints.
type AdminHandler struct {
	coupons *services.CouponManager
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(coupons *services.CouponManager) *AdminHandler {
	return &AdminHandler{coupons: coupons}
}

// DashboardStats returns coupon counts after flagging anything due.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.coupons.Stats(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total":   stats.Total,
			"active":  stats.Active,
			"expired": stats.Expired,
		},
	})
}
